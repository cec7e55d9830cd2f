package mqtt

import (
	"sync"

	"github.com/nergy-se/heatprice/pkg/state"
)

// Fake records published snapshots.
type Fake struct {
	Snapshots []state.Snapshot
	Payloads  [][]byte

	// PublishError, if set, is returned by PublishState.
	PublishError error
	Closed       bool

	sync.Mutex
}

func (f *Fake) PublishState(s state.Snapshot) error {
	f.Lock()
	defer f.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(s)
	if err != nil {
		return err
	}
	f.Snapshots = append(f.Snapshots, s)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *Fake) Published() []state.Snapshot {
	f.Lock()
	defer f.Unlock()
	return append([]state.Snapshot(nil), f.Snapshots...)
}

func (f *Fake) Close() error {
	f.Lock()
	f.Closed = true
	f.Unlock()
	return nil
}
