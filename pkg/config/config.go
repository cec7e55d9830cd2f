package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/shopspring/decimal"
)

const (
	maxSlaveID  = 247
	maxRegister = math.MaxUint16
)

type CliConfig struct {
	PriceURL  string
	APIToken  string
	TokenFile string `default:"/etc/heatprice/token"`

	LogLevel string `default:"info"`

	MeasurementInterval time.Duration `default:"1m"`
	PriceUpdateInterval time.Duration `default:"15m"`
	FallbackPrice       float64       `default:"0.20"`

	MinimumTemperature float64 `default:"15"`
	MaximumTemperature float64 `default:"22"`
	TurboTemperature   float64 `default:"30"`
	MaximumPrice       float64 `default:"0.30"`

	// modbus|ntc|mbus|fixed
	SensorType       string  `default:"modbus"`
	SensorAddress    string  `default:"127.0.0.1:502"`
	SensorRegister   int     `default:"1"`
	SensorSlaveID    int     `default:"1"`
	SupplyMillivolts float64 `default:"3300"`
	SensorFixed      float64 `default:"20"`

	MbusDevice    string `default:"/dev/ttyAMA0"`
	MbusPrimaryID int    `default:"1"`
	MbusRecord    int

	// modbus|relay|dummy
	HeaterType     string `default:"dummy"`
	HeaterAddress  string `default:"127.0.0.1:502"`
	HeaterSlaveID  int    `default:"1"`
	HeaterCoil     int
	HeaterRegister int
	RelayChip      string `default:"gpiochip0"`
	RelayLine      int    `default:"11"`
	ReadOnly       bool

	// none|embedded|remote
	MQTTMode   string `default:"none"`
	MQTTListen string `default:":1883"`
	MQTTBroker string `default:"tcp://127.0.0.1:1883"`
	MQTTTopic  string `default:"heatprice"`

	MetricsListen string

	mutex sync.RWMutex
}

func (c *CliConfig) Token() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.APIToken
}

func (c *CliConfig) SetToken(t string) {
	c.mutex.Lock()
	c.APIToken = strings.TrimSpace(t)
	c.mutex.Unlock()
}

// LoadToken reads the api token from TokenFile unless one is already set.
func (c *CliConfig) LoadToken() error {
	if c.TokenFile == "" || c.Token() != "" {
		return nil
	}
	if _, err := os.Stat(c.TokenFile); err == nil {
		b, err := os.ReadFile(c.TokenFile)
		if err != nil {
			return err
		}
		if len(b) == 0 {
			return nil // dont load empty token
		}

		c.SetToken(string(b))
	}
	return nil
}

func (c *CliConfig) Validate() error {
	if c.PriceURL == "" {
		return fmt.Errorf("%w: missing electricity price api url", control.ErrConfiguration)
	}
	if c.MeasurementInterval <= 0 || c.PriceUpdateInterval <= 0 {
		return fmt.Errorf("%w: intervals must be positive", control.ErrConfiguration)
	}
	switch c.SensorType {
	case "modbus", "ntc", "mbus", "fixed":
	default:
		return fmt.Errorf("%w: unknown sensor type %q", control.ErrConfiguration, c.SensorType)
	}
	switch c.HeaterType {
	case "modbus", "relay", "dummy":
	default:
		return fmt.Errorf("%w: unknown heater type %q", control.ErrConfiguration, c.HeaterType)
	}
	switch c.MQTTMode {
	case "none", "embedded", "remote":
	default:
		return fmt.Errorf("%w: unknown mqtt mode %q", control.ErrConfiguration, c.MQTTMode)
	}
	for name, v := range map[string]int{"SensorSlaveID": c.SensorSlaveID, "HeaterSlaveID": c.HeaterSlaveID} {
		if v < 0 || v > maxSlaveID {
			return fmt.Errorf("%w: %s %d outside 0-%d", control.ErrConfiguration, name, v, maxSlaveID)
		}
	}
	for name, v := range map[string]int{"SensorRegister": c.SensorRegister, "HeaterCoil": c.HeaterCoil, "HeaterRegister": c.HeaterRegister} {
		if v < 0 || v > maxRegister {
			return fmt.Errorf("%w: %s %d outside 0-%d", control.ErrConfiguration, name, v, maxRegister)
		}
	}
	if _, err := price(c.FallbackPrice); err != nil {
		return fmt.Errorf("%w: FallbackPrice: %w", control.ErrConfiguration, err)
	}
	_, err := c.CoreConfig()
	return err
}

func (c *CliConfig) CoreConfig() (control.CoreConfig, error) {
	lo, err := temperature(c.MinimumTemperature)
	if err != nil {
		return control.CoreConfig{}, fmt.Errorf("%w: MinimumTemperature: %w", control.ErrConfiguration, err)
	}
	hi, err := temperature(c.MaximumTemperature)
	if err != nil {
		return control.CoreConfig{}, fmt.Errorf("%w: MaximumTemperature: %w", control.ErrConfiguration, err)
	}
	turbo, err := temperature(c.TurboTemperature)
	if err != nil {
		return control.CoreConfig{}, fmt.Errorf("%w: TurboTemperature: %w", control.ErrConfiguration, err)
	}
	maxPrice, err := price(c.MaximumPrice)
	if err != nil {
		return control.CoreConfig{}, fmt.Errorf("%w: MaximumPrice: %w", control.ErrConfiguration, err)
	}
	return control.NewCoreConfig(lo, hi, turbo, maxPrice)
}

func finite(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", control.ErrOutOfRange, f)
	}
	return decimal.NewFromFloat(f), nil
}

func temperature(f float64) (control.Temperature, error) {
	d, err := finite(f)
	if err != nil {
		return 0, err
	}
	return control.TemperatureFromDecimalChecked(d)
}

func price(f float64) (control.ElectricityPrice, error) {
	d, err := finite(f)
	if err != nil {
		return 0, err
	}
	return control.ElectricityPriceFromDecimalChecked(d)
}

func (c *CliConfig) Fallback() control.ElectricityPrice {
	return control.NewElectricityPrice(c.FallbackPrice)
}
