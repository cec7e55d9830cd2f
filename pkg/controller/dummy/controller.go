package dummy

import (
	"sync"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/sirupsen/logrus"
)

type Dummy struct {
	last    *control.SetPoint
	applied int
	sync.Mutex
}

func New() *Dummy {
	return &Dummy{}
}

func (d *Dummy) Apply(sp control.SetPoint) error {
	logrus.Info("dummy: Apply: ", sp)
	d.Lock()
	d.last = &sp
	d.applied++
	d.Unlock()
	return nil
}

// Last returns the most recently applied set point.
func (d *Dummy) Last() (control.SetPoint, bool) {
	d.Lock()
	defer d.Unlock()
	if d.last == nil {
		return control.SetPoint{}, false
	}
	return *d.last, true
}

func (d *Dummy) Applied() int {
	d.Lock()
	defer d.Unlock()
	return d.applied
}

func (d *Dummy) Close() error {
	return nil
}
