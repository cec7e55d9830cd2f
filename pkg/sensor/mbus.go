package sensor

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonaz/gombus"
	"github.com/nergy-se/heatprice/pkg/control"
)

// Mbus reads a temperature data record from an M-Bus meter on a serial line.
type Mbus struct {
	device      string
	primaryAddr int
	record      int

	conn  gombus.Conn
	mutex *sync.Mutex
	query func(conn gombus.Conn, primaryAddr int) ([]float64, error)
}

func NewMbus(device string, primaryAddr, record int) *Mbus {
	return &Mbus{
		device:      device,
		primaryAddr: primaryAddr,
		record:      record,
		mutex:       &sync.Mutex{},
		query:       queryFrame,
	}
}

func (m *Mbus) init() error {
	if m.conn != nil {
		return nil
	}
	c, err := gombus.DialSerial(m.device)
	if err != nil {
		return err
	}
	m.conn = c
	return nil
}

func (m *Mbus) Close() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.conn != nil {
		err := m.conn.Close()
		m.conn = nil
		return err
	}
	return nil
}

func (m *Mbus) Temperature() (control.Temperature, error) {
	values, err := m.read()
	if err != nil {
		return 0, fmt.Errorf("sensor: mbus %d: %w", m.primaryAddr, err)
	}
	return recordTemperature(values, m.record)
}

// read queries the meter. Any failure after dialing drops the connection,
// a timed out or garbled frame leaves the serial line in an unknown state.
func (m *Mbus) read() ([]float64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	err := m.init()
	if err != nil {
		return nil, err
	}

	values, err := m.query(m.conn, m.primaryAddr)
	if err != nil {
		m.reset()
		return nil, err
	}
	return values, nil
}

func queryFrame(conn gombus.Conn, primaryAddr int) ([]float64, error) {
	_, err := conn.Write(gombus.SndNKE(uint8(primaryAddr)))
	if err != nil {
		return nil, err
	}

	err = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	if err != nil {
		return nil, err
	}

	_, err = gombus.ReadSingleCharFrame(conn)
	if err != nil {
		return nil, err
	}

	frame, err := gombus.ReadSingleFrame(conn, primaryAddr)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(frame.DataRecords))
	for _, r := range frame.DataRecords {
		values = append(values, r.Value)
	}
	return values, nil
}

// reset drops a broken connection so the next read dials again.
func (m *Mbus) reset() {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

func recordTemperature(values []float64, record int) (control.Temperature, error) {
	if record < 0 || record >= len(values) {
		return 0, fmt.Errorf("sensor: data record %d missing, frame has %d records", record, len(values))
	}
	return control.NewTemperature(values[record]), nil
}
