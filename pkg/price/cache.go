// Package price keeps a today/tomorrow schedule of hourly electricity prices
// fetched from a day-ahead price API.
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/nergy-se/heatprice/pkg/status"
	"github.com/sirupsen/logrus"
)

// MultiDayPriceCache holds the table for the current day and, once it has
// been published, the one for the next day. When both are set
// Tomorrow.ValidFrom normally equals Today.ValidUntil, a gap is only logged.
type MultiDayPriceCache struct {
	Today    *HourlyPriceTable `json:"today,omitempty"`
	Tomorrow *HourlyPriceTable `json:"tomorrow,omitempty"`
}

// Fetch downloads and validates a price document.
//
// A document where even tomorrow has already expired is not trusted at all
// and an empty cache is returned. A tomorrow table covering now is treated
// as today's table.
func Fetch(ctx context.Context, fetcher Fetcher, url string, now time.Time) (MultiDayPriceCache, error) {
	b, err := fetcher.Fetch(ctx, url)
	if err != nil {
		if !errors.Is(err, ErrFetch) {
			err = fmt.Errorf("%w: %w", ErrFetch, err)
		}
		return MultiDayPriceCache{}, err
	}

	data, err := decode(b)
	if err != nil {
		return MultiDayPriceCache{}, err
	}

	data, err = validate(data, now)
	if errors.Is(err, ErrStaleData) {
		logrus.WithField("now", now).Error(err)
		return MultiDayPriceCache{}, nil
	}
	return data, err
}

func decode(b []byte) (MultiDayPriceCache, error) {
	data := MultiDayPriceCache{}
	err := json.Unmarshal(b, &data)
	if err != nil {
		return MultiDayPriceCache{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return data, nil
}

func validate(data MultiDayPriceCache, now time.Time) (MultiDayPriceCache, error) {
	if data.Tomorrow == nil {
		return data, nil
	}

	if !now.Before(data.Tomorrow.ValidUntil) {
		return MultiDayPriceCache{}, fmt.Errorf("%w: tomorrow ended %s", ErrStaleData, data.Tomorrow.ValidUntil.Format(time.RFC3339))
	}

	if data.Tomorrow.Contains(now) {
		logrus.WithField("tomorrow", data.Tomorrow.String()).Warn("price: tomorrow appears to be today's data")
		return MultiDayPriceCache{Today: data.Tomorrow}, nil
	}

	if data.Today != nil && !data.Tomorrow.ValidFrom.Equal(data.Today.ValidUntil) {
		logrus.WithFields(logrus.Fields{
			"today":    data.Today.String(),
			"tomorrow": data.Tomorrow.String(),
		}).Warn("price: today and tomorrow are not contiguous")
	}

	return data, nil
}

// CurrentPrice looks in today's table first and then tomorrow's.
func (c MultiDayPriceCache) CurrentPrice(now time.Time) (control.ElectricityPrice, bool) {
	if c.Today != nil {
		if p, ok := c.Today.PriceAt(now); ok {
			return p, true
		}
	}
	if c.Tomorrow != nil {
		if p, ok := c.Tomorrow.PriceAt(now); ok {
			return p, true
		}
	}
	return 0, false
}

// Status reports MissingData when there is no table for today.
func (c MultiDayPriceCache) Status() (status.Status, bool) {
	if c.Today == nil {
		return status.MissingData, true
	}
	return 0, false
}

func (c MultiDayPriceCache) Equal(o MultiDayPriceCache) bool {
	return c.Today.Equal(o.Today) && c.Tomorrow.Equal(o.Tomorrow)
}
