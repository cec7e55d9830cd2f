package relay

import (
	"fmt"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/sirupsen/logrus"
)

type line interface {
	SetValue(int) error
	Close() error
}

// Relay drives a GPIO output line high while the heater should be on. The
// set point temperature is only logged since a relay has no notion of it.
type Relay struct {
	line  line
	power *control.PowerState
}

func (r *Relay) Apply(sp control.SetPoint) error {
	if r.power != nil && *r.power == sp.Power {
		return nil
	}

	value := 0
	if sp.Power == control.PowerOn {
		value = 1
	}
	err := r.line.SetValue(value)
	if err != nil {
		return fmt.Errorf("relay: set %s: %w", sp.Power, err)
	}

	logrus.WithFields(logrus.Fields{
		"power":       sp.Power,
		"temperature": sp.Temperature,
	}).Info("relay: switched")
	r.power = &sp.Power
	return nil
}

func (r *Relay) Close() error {
	err := r.line.SetValue(0)
	if err != nil {
		logrus.Errorf("relay: error switching off on close: %s", err)
	}
	return r.line.Close()
}
