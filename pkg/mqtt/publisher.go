package mqtt

import (
	"encoding/json"
	"strings"

	"github.com/nergy-se/heatprice/pkg/state"
)

type Publisher interface {
	PublishState(state.Snapshot) error
	Close() error
}

// StateTopic is the retained topic snapshots are published on.
func StateTopic(base string) string {
	return strings.TrimSuffix(base, "/") + "/state"
}

func FormatPayload(s state.Snapshot) ([]byte, error) {
	return json.Marshal(s)
}
