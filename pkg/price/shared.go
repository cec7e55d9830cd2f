package price

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/nergy-se/heatprice/pkg/status"
	"github.com/sirupsen/logrus"
)

// PrefetchLeadTime is how long before today's table ends we start asking for
// tomorrow's.
const PrefetchLeadTime = 3 * time.Hour

type UpdateAction int

const (
	UpdateNone UpdateAction = iota
	UpdatePromote
	UpdateFetch
)

func (a UpdateAction) String() string {
	switch a {
	case UpdateNone:
		return "none"
	case UpdatePromote:
		return "promote"
	case UpdateFetch:
		return "fetch"
	default:
		return "unknown"
	}
}

// SharedPriceCache is a MultiDayPriceCache safe for concurrent readers and
// updaters.
type SharedPriceCache struct {
	fetcher Fetcher
	url     string

	prices MultiDayPriceCache
	mutex  sync.Mutex
}

func NewSharedPriceCache(fetcher Fetcher, url string) *SharedPriceCache {
	return &SharedPriceCache{
		fetcher: fetcher,
		url:     url,
	}
}

// FetchSharedPriceCache creates the cache from an initial fetch.
func FetchSharedPriceCache(ctx context.Context, fetcher Fetcher, url string, now time.Time) (*SharedPriceCache, error) {
	data, err := Fetch(ctx, fetcher, url, now)
	if err != nil {
		return nil, err
	}
	c := NewSharedPriceCache(fetcher, url)
	c.prices = data
	return c, nil
}

func (c *SharedPriceCache) CurrentPrice(now time.Time) (control.ElectricityPrice, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.prices.CurrentPrice(now)
}

func (c *SharedPriceCache) Status() (status.Status, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.prices.Status()
}

// Snapshot returns a copy of the cache. The tables are shared and must not be
// modified.
func (c *SharedPriceCache) Snapshot() MultiDayPriceCache {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.prices
}

// MaybeUpdate promotes tomorrow's table at the day boundary and fetches when
// today's table is missing or tomorrow's should have been published.
//
// The fetch runs without holding the lock. Fetch and decode errors leave the
// cache as it was; they will be retried on the next call since the condition
// that triggered the fetch still holds.
func (c *SharedPriceCache) MaybeUpdate(ctx context.Context, now time.Time) (UpdateAction, error) {
	c.mutex.Lock()
	action := c.decide(now)
	if action == UpdatePromote {
		logrus.WithField("today", c.prices.Tomorrow.String()).Info("price: promoting tomorrow's data to being in use")
		c.prices = MultiDayPriceCache{Today: c.prices.Tomorrow}
	}
	c.mutex.Unlock()

	if action != UpdateFetch {
		return action, nil
	}

	logrus.Info("price: updating electricity price data")
	data, err := Fetch(ctx, c.fetcher, c.url, now)
	if err != nil {
		return action, fmt.Errorf("price update: %w", err)
	}

	c.mutex.Lock()
	c.prices = data
	c.mutex.Unlock()
	return action, nil
}

func (c *SharedPriceCache) decide(now time.Time) UpdateAction {
	today := c.prices.Today
	tomorrow := c.prices.Tomorrow

	if today == nil {
		return UpdateFetch
	}

	if today.Contains(now) && tomorrow != nil {
		logrus.Debug("price: electricity price data is current")
		return UpdateNone
	}

	if tomorrow != nil {
		if tomorrow.Contains(now) {
			return UpdatePromote
		}
		return UpdateNone
	}

	if !now.Before(today.ValidUntil.Add(-PrefetchLeadTime)) {
		return UpdateFetch
	}

	logrus.Debug("price: current prices are valid and it's too early to fetch tomorrow")
	return UpdateNone
}
