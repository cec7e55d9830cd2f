package price

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

// newTable returns 24 hourly prices starting at from, base, base+0.01, ...
func newTable(from time.Time, base float64) *HourlyPriceTable {
	t := &HourlyPriceTable{
		ValidFrom:   from,
		ValidUntil:  from.Add(24 * time.Hour),
		HourlyPrice: make(map[time.Time]control.ElectricityPrice),
	}
	for i := 0; i < 24; i++ {
		t.HourlyPrice[from.Add(time.Duration(i)*time.Hour)] = control.NewElectricityPrice(base) + control.ElectricityPrice(i*100)
	}
	return t
}

func document(t *testing.T, today, tomorrow *HourlyPriceTable) []byte {
	b, err := json.Marshal(MultiDayPriceCache{Today: today, Tomorrow: tomorrow})
	require.NoError(t, err)
	return b
}

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
	urls  []string
	sync.Mutex
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.Lock()
	defer f.Unlock()
	f.calls++
	f.urls = append(f.urls, url)
	return f.body, f.err
}

func (f *fakeFetcher) Calls() int {
	f.Lock()
	defer f.Unlock()
	return f.calls
}

func (f *fakeFetcher) Set(body []byte, err error) {
	f.Lock()
	f.body = body
	f.err = err
	f.Unlock()
}
