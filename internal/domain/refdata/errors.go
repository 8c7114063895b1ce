package refdata

import "errors"

var (
	// ErrInvalidTables is returned when reference data is malformed or inconsistent.
	ErrInvalidTables = errors.New("invalid reference data")

	// ErrLoad is returned when reference data cannot be read from its source.
	ErrLoad = errors.New("load reference data")
)
