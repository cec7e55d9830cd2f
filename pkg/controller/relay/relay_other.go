//go:build !linux

package relay

import "errors"

func New(chip string, offset int) (*Relay, error) {
	return nil, errors.New("relay: gpio not supported on this platform (requires Linux)")
}
