package pedigree

import "errors"

var (
	// ErrNilInner is returned when a cache is built without a backing provider.
	ErrNilInner = errors.New("nil inner provider")
	// ErrNilClient is returned when a cache is built without a Redis client.
	ErrNilClient = errors.New("nil redis client")
)
