// Package thermistor converts NTC thermistor readings to degrees celsius
// using the beta equation.
package thermistor

import (
	"fmt"
	"math"
)

const kelvinOffset = 273.15

type Properties struct {
	Beta float64
	R1   float64 // resistance in ohm at T1
	T1   float64 // celsius
}

var Default = Properties{
	Beta: 3750.0,
	R1:   12000.0,
	T1:   25.0,
}

// TemperatureFromResistance
//
//	t2 = 1 / (ln(r2 / r1) / beta + 1 / t1)
func (p Properties) TemperatureFromResistance(r2 float64) float64 {
	if r2 == p.R1 {
		return p.T1
	}
	t1 := p.T1 + kelvinOffset
	t2 := 1.0 / ((math.Log(r2/p.R1) / p.Beta) + (1.0 / t1))
	return t2 - kelvinOffset
}

// TemperatureFromVoltage takes the voltage over the thermistor in a divider
// where the fixed resistor equals R1. Same unit for both arguments.
func (p Properties) TemperatureFromVoltage(vSupply, sample float64) (float64, error) {
	if sample <= 0 || sample >= vSupply {
		return 0, fmt.Errorf("thermistor sample %f outside (0, %f)", sample, vSupply)
	}
	a := sample / (vSupply - sample)
	c := math.Log(a)/p.Beta + 1.0/(p.T1+kelvinOffset)
	return 1.0/c - kelvinOffset, nil
}

// VoltageToResistance of R2 in the divider Vcc - R1 - Vout - R2 - GND.
//
//	R2 = (Vr2 * R1) / (Vcc - Vr2)
func VoltageToResistance(vSupply, sample, referenceResistance float64) float64 {
	return (sample * referenceResistance) / (vSupply - sample)
}
