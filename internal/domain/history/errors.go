package history

import "errors"

// Sentinel error kinds for this package.
var (
	// ErrLeakage marks a history row at or after the as-of date. Fatal:
	// a feature derived from it would leak future information.
	ErrLeakage = errors.New("point-in-time leakage")

	// ErrUnordered marks a result set not sorted most-recent-first.
	ErrUnordered = errors.New("history not ordered by race date")
)
