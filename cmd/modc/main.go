package main

import (
	"flag"
	"log"
	"time"

	"github.com/nergy-se/heatprice/pkg/control"
	"github.com/nergy-se/heatprice/pkg/modbusclient"
)

// modc probes the registers the sensor and heater drivers use.
func main() {
	address := flag.String("addr", "", "tcp modbus address")
	slaveID := flag.Int("slave", 1, "modbus slave id")

	inputreg := flag.Int("inputreg", 0, "read temperature from input register")
	holdingreg := flag.Int("holdingreg", 0, "read or write set point holding register")
	coil := flag.Int("coil", 0, "write power coil")
	value := flag.String("value", "", "value to write. temperature for holdingreg, on|off for coil")
	flag.Parse()

	client := modbusclient.Dial(*address, byte(*slaveID), 5*time.Second)
	defer client.Close()

	var err error
	switch {
	case isFlagPassed("inputreg"):
		var v int
		v, err = client.ReadInputRegister(uint16(*inputreg))
		log.Println("temperature is: ", control.Temperature(v))
	case isFlagPassed("holdingreg") && *value != "":
		var t control.Temperature
		t, err = control.ParseTemperature(*value)
		if err != nil {
			break
		}
		var reg uint16
		reg, err = modbusclient.EncodeInt16(int64(t))
		if err != nil {
			break
		}
		err = client.WriteSingleRegister(uint16(*holdingreg), reg)
		log.Println("wrote set point: ", t)
	case isFlagPassed("holdingreg"):
		var v int
		v, err = client.ReadHoldingRegister16(uint16(*holdingreg))
		log.Println("set point is: ", control.Temperature(v))
	case isFlagPassed("coil"):
		var p control.PowerState
		p, err = control.ParsePowerState(*value)
		if err != nil {
			break
		}
		err = client.WriteSingleCoil(uint16(*coil), p == control.PowerOn)
		log.Println("wrote power: ", p)
	default:
		flag.Usage()
	}

	if err != nil {
		log.Println("error was: ", err)
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}
