package controller

import (
	"github.com/nergy-se/heatprice/pkg/control"
)

// Controller drives a heater towards a set point.
type Controller interface {
	Apply(control.SetPoint) error
	Close() error
}
