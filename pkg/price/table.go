package price

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/sirupsen/logrus"
)

// HourlyPriceTable is one calendar day of hourly prices, valid in the half
// open interval [ValidFrom, ValidUntil). All times are UTC.
//
// For the day YYYY-MM-DD in CET the first key is YYYY-MM-(DD-1)T23:00:00Z
// and the last YYYY-MM-DDT22:00:00Z, so keys are not midnight aligned.
//
// A table is never modified after decoding, several caches may share it.
type HourlyPriceTable struct {
	ValidFrom   time.Time
	ValidUntil  time.Time
	HourlyPrice map[time.Time]control.ElectricityPrice
}

// Contains reports whether ts is inside the validity window.
func (t *HourlyPriceTable) Contains(ts time.Time) bool {
	return !ts.Before(t.ValidFrom) && ts.Before(t.ValidUntil)
}

// PriceAt returns the price for the hour ts falls in.
func (t *HourlyPriceTable) PriceAt(ts time.Time) (control.ElectricityPrice, bool) {
	if !t.Contains(ts) {
		return 0, false
	}
	p, ok := t.HourlyPrice[hourKey(ts)]
	return p, ok
}

func (t *HourlyPriceTable) Equal(o *HourlyPriceTable) bool {
	if t == nil || o == nil {
		return t == o
	}
	if !t.ValidFrom.Equal(o.ValidFrom) || !t.ValidUntil.Equal(o.ValidUntil) || len(t.HourlyPrice) != len(o.HourlyPrice) {
		return false
	}
	for k, v := range t.HourlyPrice {
		if ov, ok := o.HourlyPrice[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (t *HourlyPriceTable) String() string {
	return fmt.Sprintf("[%s, %s) %d prices", t.ValidFrom.Format(time.RFC3339), t.ValidUntil.Format(time.RFC3339), len(t.HourlyPrice))
}

func hourKey(ts time.Time) time.Time {
	return ts.UTC().Truncate(time.Hour)
}

type tableJSON struct {
	ValidFrom   time.Time                           `json:"valid_from"`
	ValidUntil  time.Time                           `json:"valid_until"`
	HourlyPrice map[string]control.ElectricityPrice `json:"hourly_price"`
}

func (t HourlyPriceTable) MarshalJSON() ([]byte, error) {
	doc := tableJSON{
		ValidFrom:   t.ValidFrom.UTC(),
		ValidUntil:  t.ValidUntil.UTC(),
		HourlyPrice: make(map[string]control.ElectricityPrice, len(t.HourlyPrice)),
	}
	for k, v := range t.HourlyPrice {
		doc.HourlyPrice[k.UTC().Format(time.RFC3339)] = v
	}
	return json.Marshal(doc)
}

func (t *HourlyPriceTable) UnmarshalJSON(b []byte) error {
	doc := tableJSON{}
	err := json.Unmarshal(b, &doc)
	if err != nil {
		return err
	}

	from := doc.ValidFrom.UTC()
	until := doc.ValidUntil.UTC()
	if !until.After(from) {
		return fmt.Errorf("valid_until %s is not after valid_from %s", doc.ValidUntil, doc.ValidFrom)
	}

	prices := make(map[time.Time]control.ElectricityPrice, len(doc.HourlyPrice))
	for k, v := range doc.HourlyPrice {
		ts, err := time.Parse(time.RFC3339, k)
		if err != nil {
			return fmt.Errorf("invalid hour %q: %w", k, err)
		}
		key := hourKey(ts)
		if !key.Equal(ts) {
			logrus.WithField("hour", k).Warn("dropping electricity price not at the start of an hour")
			continue
		}
		if key.Before(from) || !key.Before(until) {
			logrus.WithFields(logrus.Fields{
				"hour":        k,
				"valid_from":  from.Format(time.RFC3339),
				"valid_until": until.Format(time.RFC3339),
			}).Warn("dropping electricity price outside of validity window")
			continue
		}
		prices[key] = v
	}

	*t = HourlyPriceTable{
		ValidFrom:   from,
		ValidUntil:  until,
		HourlyPrice: prices,
	}
	return nil
}
