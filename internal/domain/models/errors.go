package models

import "errors"

var (
	// ErrInput marks a request the engine refuses to process (bad series, too short).
	ErrInput = errors.New("invalid input")
	// ErrConfiguration marks an inconsistent engine configuration.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrNotAvailable is returned by market data providers with no data for a ticker/range.
	ErrNotAvailable = errors.New("market data not available")
)
