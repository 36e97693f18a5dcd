package history

import "errors"

var (
	// ErrNilPool is returned when a Postgres accessor is built without a pool.
	ErrNilPool = errors.New("nil connection pool")
)
