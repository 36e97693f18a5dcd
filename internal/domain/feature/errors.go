package feature

import "errors"

// Sentinel error kinds for this package. Callers match with errors.Is.
var (
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrDuplicateColumn = errors.New("duplicate feature column")
	ErrUnknownColumn   = errors.New("unknown feature column")
	ErrRowMismatch     = errors.New("row count mismatch")
)
