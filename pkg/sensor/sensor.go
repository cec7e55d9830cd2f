package sensor

import (
	"fmt"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/nergy-se/heatprice/pkg/modbusclient"
	"github.com/nergy-se/heatprice/pkg/thermistor"
)

type Sensor interface {
	Temperature() (control.Temperature, error)
}

// Fixed always reports the same temperature.
type Fixed control.Temperature

func (f Fixed) Temperature() (control.Temperature, error) {
	return control.Temperature(f), nil
}

// Modbus reads an input register holding centi-degrees.
type Modbus struct {
	client   modbusclient.Client
	register uint16
}

func NewModbus(client modbusclient.Client, register uint16) *Modbus {
	return &Modbus{
		client:   client,
		register: register,
	}
}

func (m *Modbus) Temperature() (control.Temperature, error) {
	v, err := m.client.ReadInputRegister(m.register)
	if err != nil {
		return 0, fmt.Errorf("sensor: %w", err)
	}
	return control.Temperature(v), nil
}

// NTC reads an ADC sample in millivolts taken over a thermistor in a voltage
// divider fed by supplyMillivolts.
type NTC struct {
	client           modbusclient.Client
	register         uint16
	supplyMillivolts float64
	properties       thermistor.Properties
}

func NewNTC(client modbusclient.Client, register uint16, supplyMillivolts float64) *NTC {
	return &NTC{
		client:           client,
		register:         register,
		supplyMillivolts: supplyMillivolts,
		properties:       thermistor.Default,
	}
}

func (n *NTC) Temperature() (control.Temperature, error) {
	v, err := n.client.ReadInputRegister(n.register)
	if err != nil {
		return 0, fmt.Errorf("sensor: %w", err)
	}
	t, err := n.properties.TemperatureFromVoltage(n.supplyMillivolts, float64(v))
	if err != nil {
		return 0, fmt.Errorf("sensor: %w", err)
	}
	return control.NewTemperature(t), nil
}
