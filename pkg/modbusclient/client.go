package modbusclient

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"syscall"
	"time"

	"github.com/goburrow/modbus"
	"github.com/sirupsen/logrus"
)

type Client interface {
	ReadInputRegister(address uint16) (int, error)
	ReadHoldingRegister16(address uint16) (int, error)
	WriteSingleRegister(address, value uint16) error
	WriteSingleCoil(address uint16, on bool) error
	Close() error
}

type client struct {
	client modbus.Client
	close  func() error
}

func New(c modbus.Client, close func() error) *client {
	return &client{
		client: c,
		close:  close,
	}
}

// Dial returns a client for a modbus TCP device. The connection is opened on
// the first request and reopened after broken pipes and timeouts.
func Dial(address string, slaveID byte, timeout time.Duration) *client {
	handler := modbus.NewTCPClientHandler(address)
	handler.SlaveId = slaveID
	handler.Timeout = timeout
	return New(modbus.NewClient(handler), handler.Close)
}

func (c *client) Close() error {
	return c.close()
}

func (c *client) closeIfNeeded(e error) {
	if e == nil {
		return
	}

	if errors.Is(e, syscall.EPIPE) {
		logrus.Warn("modbus: reconnect due to broken pipe")
		if err := c.close(); err != nil {
			logrus.Errorf("modbus: error closing client: %s", err)
		}
	}

	if errors.Is(e, os.ErrDeadlineExceeded) {
		logrus.Warn("modbus: reconnect due to i/o timeout")
		if err := c.close(); err != nil {
			logrus.Errorf("modbus: error closing client: %s", err)
		}
	}
}

func (c *client) ReadInputRegister(address uint16) (int, error) {
	b, err := c.client.ReadInputRegisters(address, 1)
	if err != nil {
		c.closeIfNeeded(err)
		return 0, fmt.Errorf("error reading input register %d: %w", address, err)
	}
	return Decode(b), nil
}

func (c *client) ReadHoldingRegister16(address uint16) (int, error) {
	b, err := c.client.ReadHoldingRegisters(address, 1)
	if err != nil {
		c.closeIfNeeded(err)
		return 0, fmt.Errorf("error reading holding register %d: %w", address, err)
	}
	return Decode(b), nil
}

func (c *client) WriteSingleRegister(address, value uint16) error {
	_, err := c.client.WriteSingleRegister(address, value)
	if err != nil {
		c.closeIfNeeded(err)
		return fmt.Errorf("error writing register %d value %d error: %w", address, value, err)
	}
	return nil
}

func (c *client) WriteSingleCoil(address uint16, on bool) error {
	_, err := c.client.WriteSingleCoil(address, CoilValue(on))
	if err != nil {
		c.closeIfNeeded(err)
		return fmt.Errorf("error writing coil %d value %t error: %w", address, on, err)
	}
	return nil
}

// Decode High byte first high word first (big endian)
func Decode(data []byte) int {

	switch len(data) {
	case 1:
		var i int8
		binary.Read(bytes.NewBuffer(data), binary.BigEndian, &i)
		return int(i)
	case 2:
		var i int16
		binary.Read(bytes.NewBuffer(data), binary.BigEndian, &i)
		return int(i)
	case 4:
		var i int32
		binary.Read(bytes.NewBuffer(data), binary.BigEndian, &i)
		return int(i)
	case 8:
		var i int64
		binary.Read(bytes.NewBuffer(data), binary.BigEndian, &i)
		return int(i)
	}

	return 0
}

// EncodeInt16 is the register value of a signed 16 bit number.
func EncodeInt16(v int64) (uint16, error) {
	if v < math.MinInt16 || v > math.MaxInt16 {
		return 0, fmt.Errorf("value %d does not fit in a 16 bit register", v)
	}
	return uint16(int16(v)), nil
}

func CoilValue(b bool) uint16 {
	if b {
		return WriteCoilValueOn
	}
	return WriteCoilValueOff
}

const (
	WriteCoilValueOn  uint16 = 0xff00
	WriteCoilValueOff uint16 = 0
)
