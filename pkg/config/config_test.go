package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/koding/multiconfig"
	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults(t *testing.T) *CliConfig {
	c := &CliConfig{}
	err := (&multiconfig.TagLoader{}).Load(c)
	require.NoError(t, err)
	c.PriceURL = "http://localhost/prices"
	return c
}

func TestDefaults(t *testing.T) {
	c := defaults(t)
	assert.Equal(t, time.Minute, c.MeasurementInterval)
	assert.Equal(t, 15*time.Minute, c.PriceUpdateInterval)
	assert.Equal(t, control.NewElectricityPrice(0.2), c.Fallback())
	assert.NoError(t, c.Validate())

	core, err := c.CoreConfig()
	assert.NoError(t, err)
	assert.Equal(t, control.CoreConfig{
		MinimumTemperature: control.NewTemperature(15),
		MaximumTemperature: control.NewTemperature(22),
		TurboTemperature:   control.NewTemperature(30),
		MaximumPrice:       control.NewElectricityPrice(0.3),
	}, core)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *CliConfig)
	}{
		{name: "missing price url", modify: func(c *CliConfig) { c.PriceURL = "" }},
		{name: "zero interval", modify: func(c *CliConfig) { c.MeasurementInterval = 0 }},
		{name: "unknown sensor", modify: func(c *CliConfig) { c.SensorType = "onewire" }},
		{name: "unknown heater", modify: func(c *CliConfig) { c.HeaterType = "zigbee" }},
		{name: "unknown mqtt mode", modify: func(c *CliConfig) { c.MQTTMode = "bridge" }},
		{name: "min above max", modify: func(c *CliConfig) { c.MinimumTemperature = 23 }},
		{name: "max above turbo", modify: func(c *CliConfig) { c.TurboTemperature = 21 }},
		{name: "zero max price", modify: func(c *CliConfig) { c.MaximumPrice = 0 }},
		{name: "max price overflows", modify: func(c *CliConfig) { c.MaximumPrice = 1e15 }},
		{name: "turbo overflows", modify: func(c *CliConfig) { c.TurboTemperature = 1e17 }},
		{name: "nan min temperature", modify: func(c *CliConfig) { c.MinimumTemperature = math.NaN() }},
		{name: "infinite fallback", modify: func(c *CliConfig) { c.FallbackPrice = math.Inf(1) }},
		{name: "fallback overflows", modify: func(c *CliConfig) { c.FallbackPrice = 1e15 }},
		{name: "sensor slave id", modify: func(c *CliConfig) { c.SensorSlaveID = 256 }},
		{name: "negative heater slave id", modify: func(c *CliConfig) { c.HeaterSlaveID = -1 }},
		{name: "heater slave id above 247", modify: func(c *CliConfig) { c.HeaterSlaveID = 248 }},
		{name: "sensor register", modify: func(c *CliConfig) { c.SensorRegister = 65536 }},
		{name: "heater coil", modify: func(c *CliConfig) { c.HeaterCoil = 70000 }},
		{name: "negative heater register", modify: func(c *CliConfig) { c.HeaterRegister = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults(t)
			tt.modify(c)
			err := c.Validate()
			assert.True(t, errors.Is(err, control.ErrConfiguration), "got %v", err)
		})
	}
}

func TestValidateLimits(t *testing.T) {
	c := defaults(t)
	c.SensorSlaveID = 247
	c.HeaterSlaveID = 0
	c.SensorRegister = 65535
	c.HeaterCoil = 65535
	c.HeaterRegister = 0
	assert.NoError(t, c.Validate())
}

func TestCoreConfigOutOfRange(t *testing.T) {
	c := defaults(t)
	c.MaximumPrice = 1e15
	_, err := c.CoreConfig()
	assert.ErrorIs(t, err, control.ErrConfiguration)
	assert.ErrorIs(t, err, control.ErrOutOfRange)
}

func TestLoadToken(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "token")
	require.NoError(t, os.WriteFile(file, []byte("secret\n"), 0600))

	c := &CliConfig{TokenFile: file}
	assert.NoError(t, c.LoadToken())
	assert.Equal(t, "secret", c.Token())

	c = &CliConfig{TokenFile: file, APIToken: "fromflag"}
	assert.NoError(t, c.LoadToken())
	assert.Equal(t, "fromflag", c.Token())

	c = &CliConfig{TokenFile: filepath.Join(dir, "missing")}
	assert.NoError(t, c.LoadToken())
	assert.Equal(t, "", c.Token())
}
