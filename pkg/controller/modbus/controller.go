package modbus

import (
	"fmt"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/nergy-se/heatprice/pkg/modbusclient"
	"github.com/sirupsen/logrus"
)

// Heater switches power with a coil and writes the target temperature in
// centi-degrees to a holding register.
type Heater struct {
	client   modbusclient.Client
	coil     uint16
	register uint16
	readonly bool

	last *control.SetPoint
}

func New(client modbusclient.Client, coil, register uint16, readonly bool) *Heater {
	return &Heater{
		client:   client,
		coil:     coil,
		register: register,
		readonly: readonly,
	}
}

func (h *Heater) Apply(sp control.SetPoint) error {
	if h.last != nil && *h.last == sp {
		logrus.Debugf("modbus: set point %s unchanged", sp)
		return nil
	}

	if h.readonly {
		logrus.WithFields(logrus.Fields{
			"power":       sp.Power,
			"temperature": sp.Temperature,
		}).Info("modbus: readonly, skipping write")
		h.last = &sp
		return nil
	}

	value, err := modbusclient.EncodeInt16(int64(sp.Temperature))
	if err != nil {
		return fmt.Errorf("modbus: set point %s: %w", sp, err)
	}

	err = h.client.WriteSingleRegister(h.register, value)
	if err != nil {
		return fmt.Errorf("modbus: %w", err)
	}

	err = h.client.WriteSingleCoil(h.coil, sp.Power == control.PowerOn)
	if err != nil {
		return fmt.Errorf("modbus: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"power":       sp.Power,
		"temperature": sp.Temperature,
	}).Info("modbus: applied set point")
	h.last = &sp
	return nil
}

func (h *Heater) Close() error {
	return h.client.Close()
}
