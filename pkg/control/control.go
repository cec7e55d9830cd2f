// Package control maps a measured temperature and the current electricity
// price to a heater set point.
package control

// SelectTemperature scales the set point linearly from MaximumTemperature at
// zero price down to MinimumTemperature at MaximumPrice. The result is not
// clamped and is rounded half away from zero to 0.01 C.
//
// MaximumPrice must be non zero. If it is zero MinimumTemperature is returned.
func SelectTemperature(config CoreConfig, currentPrice ElectricityPrice) Temperature {
	if config.MaximumPrice == 0 {
		return config.MinimumTemperature
	}
	maxPrice := config.MaximumPrice.Decimal()
	min := config.MinimumTemperature.Decimal()
	temperatureRange := config.MaximumTemperature.Decimal().Sub(min)

	// multiply before dividing to keep the division as the only inexact step.
	delta := temperatureRange.Mul(maxPrice.Sub(currentPrice.Decimal())).Div(maxPrice)

	return TemperatureFromDecimal(min.Add(delta))
}

// DesiredState evaluates, in order: overheat cutoff, under temperature
// recovery, price cutoff and finally price scaled heating.
func DesiredState(currentTemperature Temperature, config CoreConfig, currentPrice ElectricityPrice) (SetPoint, error) {
	if currentTemperature > config.TurboTemperature {
		return SetPoint{Power: PowerOff, Temperature: config.MinimumTemperature}, nil
	}

	// recovering the low point wins over the price.
	if currentTemperature < config.MinimumTemperature {
		return SetPoint{Power: PowerOn, Temperature: config.TurboTemperature}, nil
	}

	if currentPrice > config.MaximumPrice {
		return SetPoint{Power: PowerOff, Temperature: config.MinimumTemperature}, nil
	}

	if err := config.validatePrice(); err != nil {
		return SetPoint{}, err
	}

	return SetPoint{Power: PowerOn, Temperature: SelectTemperature(config, currentPrice)}, nil
}
