package control

import "fmt"

type CoreConfig struct {
	// Minimum allowed set point if heating is on.
	MinimumTemperature Temperature `json:"minimumTemperature"`

	// Maximum allowed set point under normal conditions.
	MaximumTemperature Temperature `json:"maximumTemperature"`

	// Emergency heating set point if temperature has dropped too far.
	TurboTemperature Temperature `json:"turboTemperature"`

	// Electricity price at which to turn heating off.
	MaximumPrice ElectricityPrice `json:"maximumPrice"`
}

func NewCoreConfig(min, max, turbo Temperature, maxPrice ElectricityPrice) (CoreConfig, error) {
	c := CoreConfig{
		MinimumTemperature: min,
		MaximumTemperature: max,
		TurboTemperature:   turbo,
		MaximumPrice:       maxPrice,
	}
	return c, c.Validate()
}

// Validate returns an error wrapping ErrConfiguration if the limits are not
// ordered min <= max <= turbo or if the maximum price is not positive.
func (c CoreConfig) Validate() error {
	if c.MinimumTemperature > c.MaximumTemperature {
		return fmt.Errorf("%w: minimum temperature %s above maximum %s", ErrConfiguration, c.MinimumTemperature, c.MaximumTemperature)
	}
	if c.MaximumTemperature > c.TurboTemperature {
		return fmt.Errorf("%w: maximum temperature %s above turbo %s", ErrConfiguration, c.MaximumTemperature, c.TurboTemperature)
	}
	return c.validatePrice()
}

func (c CoreConfig) validatePrice() error {
	if c.MaximumPrice <= 0 {
		return fmt.Errorf("%w: maximum price must be positive, got %s", ErrConfiguration, c.MaximumPrice)
	}
	return nil
}
