package price

import "errors"

var (
	// ErrFetch is a transport failure talking to the price API.
	ErrFetch = errors.New("error fetching electricity prices")
	// ErrDecode is a malformed or inconsistent price document.
	ErrDecode = errors.New("error decoding electricity prices")
	// ErrStaleData means the fetched document had already expired.
	ErrStaleData = errors.New("stale electricity price data")
)
