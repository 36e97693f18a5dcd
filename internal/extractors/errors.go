package extractors

import "errors"

// ErrMissingInput reports that an extractor was handed a batch without the
// inputs its Requires() declared.
var ErrMissingInput = errors.New("missing required input")
