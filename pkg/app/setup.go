package app

import (
	"fmt"
	"time"

	"github.com/nergy-se/heatprice/pkg/config"
	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/nergy-se/heatprice/pkg/controller"
	"github.com/nergy-se/heatprice/pkg/controller/dummy"
	"github.com/nergy-se/heatprice/pkg/controller/modbus"
	"github.com/nergy-se/heatprice/pkg/controller/relay"
	"github.com/nergy-se/heatprice/pkg/modbusclient"
	"github.com/nergy-se/heatprice/pkg/mqtt"
	"github.com/nergy-se/heatprice/pkg/sensor"
)

const modbusTimeout = 5 * time.Second

func newSensor(c *config.CliConfig) (sensor.Sensor, error) {
	switch c.SensorType {
	case "modbus":
		client := modbusclient.Dial(c.SensorAddress, byte(c.SensorSlaveID), modbusTimeout)
		return sensor.NewModbus(client, uint16(c.SensorRegister)), nil
	case "ntc":
		client := modbusclient.Dial(c.SensorAddress, byte(c.SensorSlaveID), modbusTimeout)
		return sensor.NewNTC(client, uint16(c.SensorRegister), c.SupplyMillivolts), nil
	case "mbus":
		return sensor.NewMbus(c.MbusDevice, c.MbusPrimaryID, c.MbusRecord), nil
	case "fixed":
		return sensor.Fixed(control.NewTemperature(c.SensorFixed)), nil
	}
	return nil, fmt.Errorf("%w: unknown sensor type %q", control.ErrConfiguration, c.SensorType)
}

func newController(c *config.CliConfig) (controller.Controller, error) {
	switch c.HeaterType {
	case "modbus":
		client := modbusclient.Dial(c.HeaterAddress, byte(c.HeaterSlaveID), modbusTimeout)
		return modbus.New(client, uint16(c.HeaterCoil), uint16(c.HeaterRegister), c.ReadOnly), nil
	case "relay":
		return relay.New(c.RelayChip, c.RelayLine)
	case "dummy":
		return dummy.New(), nil
	}
	return nil, fmt.Errorf("%w: unknown heater type %q", control.ErrConfiguration, c.HeaterType)
}

// newPublisher returns nil when publishing is disabled.
func newPublisher(c *config.CliConfig) (mqtt.Publisher, error) {
	switch c.MQTTMode {
	case "none":
		return nil, nil
	case "embedded":
		return mqtt.StartBroker(c.MQTTListen, c.MQTTTopic)
	case "remote":
		return mqtt.Connect(c.MQTTBroker, "heatprice", c.MQTTTopic)
	}
	return nil, fmt.Errorf("%w: unknown mqtt mode %q", control.ErrConfiguration, c.MQTTMode)
}
