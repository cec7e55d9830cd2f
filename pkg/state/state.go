package state

import (
	"sync"
	"time"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/nergy-se/heatprice/pkg/status"
)

// Snapshot is the outcome of one measurement cycle.
type Snapshot struct {
	Time           time.Time                `json:"time"`
	Temperature    control.Temperature      `json:"temperature"`
	Price          control.ElectricityPrice `json:"price"`
	PriceFromCache bool                     `json:"priceFromCache"`
	SetPoint       control.SetPoint         `json:"setPoint"`
	Status         status.Status            `json:"status"`
}

func (s Snapshot) Map() map[string]interface{} {
	return map[string]interface{}{
		"temperature":         s.Temperature.Float64(),
		"price":               s.Price.Float64(),
		"priceFromCache":      boolToInt(s.PriceFromCache),
		"power":               boolToInt(s.SetPoint.Power == control.PowerOn),
		"setPointTemperature": s.SetPoint.Temperature.Float64(),
		"status":              int64(s.Status),
	}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

type Cache struct {
	snapshot *Snapshot
	sync.RWMutex
}

func (c *Cache) Get() (Snapshot, bool) {
	c.RLock()
	defer c.RUnlock()
	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return *c.snapshot, true
}

func (c *Cache) Set(s Snapshot) {
	c.Lock()
	c.snapshot = &s
	c.Unlock()
}
