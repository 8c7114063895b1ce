package model

import "errors"

// Sentinel kinds shared across layers. Adapters wrap these so callers can
// classify failures with errors.Is without importing the adapter.
var (
	ErrNotFound     = errors.New("not found")
	ErrBackpressure = errors.New("backpressure")
	ErrUnavailable  = errors.New("unavailable")
)
