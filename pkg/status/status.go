// Package status holds the health signal shown on the status indicator.
package status

import "fmt"

type Status int

const (
	Initializing Status = iota
	Ready
	Collecting
	MissingData
)

func (s Status) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Ready:
		return "ready"
	case Collecting:
		return "collecting"
	case MissingData:
		return "missing_data"
	default:
		return "unknown"
	}
}

func Parse(str string) (Status, error) {
	for _, s := range []Status{Initializing, Ready, Collecting, MissingData} {
		if s.String() == str {
			return s, nil
		}
	}
	return Initializing, fmt.Errorf("invalid status: %q", str)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

type RGB struct {
	R, G, B uint8
}

// Color is the dimmed indicator colour for the status.
func (s Status) Color() RGB {
	switch s {
	case Initializing:
		return RGB{10, 10, 0}
	case Ready:
		return RGB{0, 10, 0}
	case Collecting:
		return RGB{0, 0, 10}
	case MissingData:
		return RGB{10, 0, 0}
	default:
		return RGB{}
	}
}
