package control

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// fixed-point resolution, as a power of ten.
const (
	temperatureExp = 2 // 0.01 C
	priceExp       = 4 // 0.0001 per kWh
)

var (
	minFixed = decimal.NewFromInt(math.MinInt64)
	maxFixed = decimal.NewFromInt(math.MaxInt64)
)

// fixedPoint rounds d half away from zero to exp decimals and returns it as a
// scaled integer.
func fixedPoint(d decimal.Decimal, exp int32) (int64, error) {
	scaled := d.Shift(exp).Round(0)
	if scaled.LessThan(minFixed) || scaled.GreaterThan(maxFixed) {
		return 0, fmt.Errorf("%w: %s", ErrOutOfRange, d)
	}
	return scaled.IntPart(), nil
}

// Temperature in hundredths of a degree celsius.
type Temperature int64

func NewTemperature(c float64) Temperature {
	return TemperatureFromDecimal(decimal.NewFromFloat(c))
}

// TemperatureFromDecimal rounds half away from zero to 0.01 C. d must be
// within range, use TemperatureFromDecimalChecked for external input.
func TemperatureFromDecimal(d decimal.Decimal) Temperature {
	return Temperature(d.Shift(temperatureExp).Round(0).IntPart())
}

func TemperatureFromDecimalChecked(d decimal.Decimal) (Temperature, error) {
	v, err := fixedPoint(d, temperatureExp)
	if err != nil {
		return 0, fmt.Errorf("invalid temperature: %w", err)
	}
	return Temperature(v), nil
}

func ParseTemperature(s string) (Temperature, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid temperature %q: %w", s, err)
	}
	return TemperatureFromDecimalChecked(d)
}

func (t Temperature) Decimal() decimal.Decimal {
	return decimal.New(int64(t), -temperatureExp)
}

func (t Temperature) Float64() float64 {
	f, _ := t.Decimal().Float64()
	return f
}

func (t Temperature) String() string {
	return t.Decimal().StringFixed(temperatureExp)
}

func (t Temperature) MarshalJSON() ([]byte, error) {
	return []byte(t.Decimal().String()), nil
}

func (t *Temperature) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := TemperatureFromDecimalChecked(d)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// ElectricityPrice in ten-thousandths of a currency unit per kWh. It can be
// negative, that happens sometimes.
type ElectricityPrice int64

func NewElectricityPrice(p float64) ElectricityPrice {
	return ElectricityPriceFromDecimal(decimal.NewFromFloat(p))
}

// ElectricityPriceFromDecimal rounds half away from zero to 0.0001. d must be
// within range, use ElectricityPriceFromDecimalChecked for external input.
func ElectricityPriceFromDecimal(d decimal.Decimal) ElectricityPrice {
	return ElectricityPrice(d.Shift(priceExp).Round(0).IntPart())
}

func ElectricityPriceFromDecimalChecked(d decimal.Decimal) (ElectricityPrice, error) {
	v, err := fixedPoint(d, priceExp)
	if err != nil {
		return 0, fmt.Errorf("invalid electricity price: %w", err)
	}
	return ElectricityPrice(v), nil
}

func ParseElectricityPrice(s string) (ElectricityPrice, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid electricity price %q: %w", s, err)
	}
	return ElectricityPriceFromDecimalChecked(d)
}

func (p ElectricityPrice) Decimal() decimal.Decimal {
	return decimal.New(int64(p), -priceExp)
}

func (p ElectricityPrice) Float64() float64 {
	f, _ := p.Decimal().Float64()
	return f
}

func (p ElectricityPrice) String() string {
	return p.Decimal().StringFixed(priceExp)
}

func (p ElectricityPrice) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal().String()), nil
}

func (p *ElectricityPrice) UnmarshalJSON(b []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return err
	}
	v, err := ElectricityPriceFromDecimalChecked(d)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

type PowerState int

const (
	PowerOff PowerState = iota
	PowerOn
)

func (p PowerState) String() string {
	switch p {
	case PowerOn:
		return "on"
	case PowerOff:
		return "off"
	default:
		return "unknown"
	}
}

func ParsePowerState(s string) (PowerState, error) {
	switch s {
	case "on":
		return PowerOn, nil
	case "off":
		return PowerOff, nil
	default:
		return PowerOff, fmt.Errorf("invalid power state: %q", s)
	}
}

func (p PowerState) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *PowerState) UnmarshalText(b []byte) error {
	v, err := ParsePowerState(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// SetPoint is the commanded state for the heater.
type SetPoint struct {
	Power       PowerState  `json:"power"`
	Temperature Temperature `json:"temperature"`
}

func (s SetPoint) String() string {
	return fmt.Sprintf("%s@%s", s.Power, s.Temperature)
}
