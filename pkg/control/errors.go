package control

import "errors"

var ErrConfiguration = errors.New("invalid core configuration")

// ErrOutOfRange is a value that does not fit the fixed-point representation.
var ErrOutOfRange = errors.New("value out of fixed-point range")
