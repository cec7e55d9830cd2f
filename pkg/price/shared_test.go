package price

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/nergy-se/heatprice/pkg/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShared(fetcher Fetcher, data MultiDayPriceCache) *SharedPriceCache {
	c := NewSharedPriceCache(fetcher, "http://prices")
	c.prices = data
	return c
}

func TestFetchSharedPriceCache(t *testing.T) {
	today := newTable(day, 0.1)
	fetcher := &fakeFetcher{body: document(t, today, nil)}
	c, err := FetchSharedPriceCache(context.TODO(), fetcher, "http://prices", day.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, c.Snapshot().Equal(MultiDayPriceCache{Today: today}))

	_, err = FetchSharedPriceCache(context.TODO(), &fakeFetcher{err: errors.New("timeout")}, "http://prices", day)
	assert.ErrorIs(t, err, ErrFetch)
}

func TestMaybeUpdateIdempotent(t *testing.T) {
	data := MultiDayPriceCache{Today: newTable(day, 0.1), Tomorrow: newTable(day.Add(24*time.Hour), 0.2)}
	fetcher := &fakeFetcher{}
	c := newShared(fetcher, data)

	for _, now := range []time.Time{day, day.Add(time.Hour), day.Add(21 * time.Hour), day.Add(24*time.Hour - time.Second)} {
		action, err := c.MaybeUpdate(context.TODO(), now)
		assert.NoError(t, err)
		assert.Equal(t, UpdateNone, action)
	}
	assert.Equal(t, 0, fetcher.Calls())
	assert.Equal(t, data, c.Snapshot())
}

func TestMaybeUpdatePromotes(t *testing.T) {
	tomorrow := newTable(day.Add(24*time.Hour), 0.2)
	fetcher := &fakeFetcher{}
	c := newShared(fetcher, MultiDayPriceCache{Today: newTable(day, 0.1), Tomorrow: tomorrow})

	action, err := c.MaybeUpdate(context.TODO(), day.Add(24*time.Hour+time.Second))
	assert.NoError(t, err)
	assert.Equal(t, UpdatePromote, action)
	assert.Equal(t, 0, fetcher.Calls())

	snap := c.Snapshot()
	assert.Same(t, tomorrow, snap.Today)
	assert.Nil(t, snap.Tomorrow)

	p, ok := c.CurrentPrice(day.Add(24*time.Hour + time.Second))
	assert.True(t, ok)
	assert.Equal(t, control.NewElectricityPrice(0.2), p)
}

func TestMaybeUpdateBootstrap(t *testing.T) {
	today := newTable(day, 0.1)
	fetcher := &fakeFetcher{body: document(t, today, nil)}
	c := NewSharedPriceCache(fetcher, "http://prices")

	s, ok := c.Status()
	assert.True(t, ok)
	assert.Equal(t, status.MissingData, s)

	action, err := c.MaybeUpdate(context.TODO(), day.Add(time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, UpdateFetch, action)
	assert.Equal(t, 1, fetcher.Calls())
	assert.Equal(t, []string{"http://prices"}, fetcher.urls)

	_, ok = c.Status()
	assert.False(t, ok)
}

func TestMaybeUpdatePrefetch(t *testing.T) {
	today := newTable(day, 0.1)
	tomorrow := newTable(day.Add(24*time.Hour), 0.2)
	fetcher := &fakeFetcher{body: document(t, today, tomorrow)}
	c := newShared(fetcher, MultiDayPriceCache{Today: today})

	action, err := c.MaybeUpdate(context.TODO(), day.Add(21*time.Hour-time.Second))
	assert.NoError(t, err)
	assert.Equal(t, UpdateNone, action, "too early to fetch tomorrow")
	assert.Equal(t, 0, fetcher.Calls())

	action, err = c.MaybeUpdate(context.TODO(), day.Add(21*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, UpdateFetch, action)
	assert.Equal(t, 1, fetcher.Calls())
	assert.True(t, c.Snapshot().Equal(MultiDayPriceCache{Today: today, Tomorrow: tomorrow}))

	// fully provisioned now.
	action, err = c.MaybeUpdate(context.TODO(), day.Add(22*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, UpdateNone, action)
	assert.Equal(t, 1, fetcher.Calls())
}

func TestMaybeUpdatePrefetchNotPublishedYet(t *testing.T) {
	today := newTable(day, 0.1)
	fetcher := &fakeFetcher{body: document(t, today, nil)}
	c := newShared(fetcher, MultiDayPriceCache{Today: today})

	for i := 1; i <= 3; i++ {
		action, err := c.MaybeUpdate(context.TODO(), day.Add(22*time.Hour))
		assert.NoError(t, err)
		assert.Equal(t, UpdateFetch, action)
		assert.Equal(t, i, fetcher.Calls())
	}
}

func TestMaybeUpdateFetchErrorKeepsCache(t *testing.T) {
	today := newTable(day, 0.1)
	tomorrow := newTable(day.Add(24*time.Hour), 0.2)
	fetcher := &fakeFetcher{err: errors.New("connection reset")}
	c := newShared(fetcher, MultiDayPriceCache{Today: today})

	_, err := c.MaybeUpdate(context.TODO(), day.Add(23*time.Hour))
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, MultiDayPriceCache{Today: today}, c.Snapshot())

	fetcher.Set([]byte(`not json`), nil)
	_, err = c.MaybeUpdate(context.TODO(), day.Add(23*time.Hour))
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, MultiDayPriceCache{Today: today}, c.Snapshot())

	// the condition still holds so the next call recovers.
	fetcher.Set(document(t, today, tomorrow), nil)
	action, err := c.MaybeUpdate(context.TODO(), day.Add(23*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, UpdateFetch, action)
	assert.Equal(t, 3, fetcher.Calls())
	assert.True(t, c.Snapshot().Equal(MultiDayPriceCache{Today: today, Tomorrow: tomorrow}))
}

func TestMaybeUpdateStaleResetsCache(t *testing.T) {
	today := newTable(day, 0.1)
	old := document(t, newTable(day.Add(-48*time.Hour), 0.3), newTable(day.Add(-24*time.Hour), 0.4))
	fetcher := &fakeFetcher{body: old}
	c := newShared(fetcher, MultiDayPriceCache{Today: today})

	action, err := c.MaybeUpdate(context.TODO(), day.Add(22*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, UpdateFetch, action)
	assert.Equal(t, MultiDayPriceCache{}, c.Snapshot())

	s, ok := c.Status()
	assert.True(t, ok)
	assert.Equal(t, status.MissingData, s)

	// bootstrap rule retries on the next cycle.
	fetcher.Set(document(t, newTable(day, 0.1), newTable(day.Add(24*time.Hour), 0.2)), nil)
	action, err = c.MaybeUpdate(context.TODO(), day.Add(22*time.Hour))
	assert.NoError(t, err)
	assert.Equal(t, UpdateFetch, action)
	_, ok = c.Status()
	assert.False(t, ok)
}

func TestMaybeUpdateDoesNotHoldLockWhileFetching(t *testing.T) {
	body := document(t, newTable(day, 0.1), nil)
	started := make(chan struct{})
	release := make(chan struct{})
	fetcher := FetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
		close(started)
		<-release
		return body, nil
	})
	c := NewSharedPriceCache(fetcher, "http://prices")

	done := make(chan error)
	go func() {
		_, err := c.MaybeUpdate(context.TODO(), day.Add(time.Hour))
		done <- err
	}()

	<-started
	// readers are not blocked by the fetch in flight.
	_, ok := c.CurrentPrice(day.Add(time.Hour))
	assert.False(t, ok)
	s, ok := c.Status()
	assert.True(t, ok)
	assert.Equal(t, status.MissingData, s)

	close(release)
	assert.NoError(t, <-done)

	p, ok := c.CurrentPrice(day.Add(time.Hour))
	assert.True(t, ok)
	assert.Equal(t, control.NewElectricityPrice(0.11), p)
}

func TestSharedPriceCacheConcurrentAccess(t *testing.T) {
	today := newTable(day, 0.1)
	tomorrow := newTable(day.Add(24*time.Hour), 0.2)
	fetcher := &fakeFetcher{body: document(t, today, tomorrow)}
	c := NewSharedPriceCache(fetcher, "http://prices")

	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := c.MaybeUpdate(context.TODO(), day.Add(23*time.Hour))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			c.CurrentPrice(day.Add(23 * time.Hour))
			c.Status()
		}()
	}
	wg.Wait()

	assert.True(t, c.Snapshot().Equal(MultiDayPriceCache{Today: today, Tomorrow: tomorrow}))
	assert.GreaterOrEqual(t, fetcher.Calls(), 1)
}
