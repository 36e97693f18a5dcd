package config

import "errors"

// ErrInvalidConfig reports a configuration the pipeline cannot run with.
var ErrInvalidConfig = errors.New("invalid configuration")
