//go:build linux

package relay

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// New requests offset on chip (for example gpiochip0) as an output driven low.
func New(chip string, offset int) (*Relay, error) {
	l, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("relay: request %s line %d: %w", chip, offset, err)
	}
	return &Relay{line: l}, nil
}
