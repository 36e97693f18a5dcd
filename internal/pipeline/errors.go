package pipeline

import (
	"errors"
	"fmt"

	"github.com/yoshikawa-river/keiba-features/internal/extractors"
)

var (
	// ErrNoStore is returned when the orchestrator is built without a
	// history accessor.
	ErrNoStore = errors.New("no history store")

	// ErrNoExtractors is returned when the orchestrator has nothing to run.
	ErrNoExtractors = errors.New("no extractors")

	// ErrDuplicateExtractor is returned when two extractors share a name.
	ErrDuplicateExtractor = errors.New("duplicate extractor name")

	// ErrUnresolvedRequirement is returned when an extractor's declared
	// input column is not produced by any extractor scheduled before it.
	ErrUnresolvedRequirement = errors.New("unresolved column requirement")

	// ErrUnknownRace is returned when an entry references a race that is
	// not part of the input.
	ErrUnknownRace = errors.New("entry references unknown race")

	// ErrNoEntries is returned for an input without any entries.
	ErrNoEntries = errors.New("no entries to featurize")

	// ErrBusy is returned when Run is called while a run is in flight.
	ErrBusy = errors.New("orchestrator busy")

	// ErrBadTransition reports a broken internal state transition.
	ErrBadTransition = errors.New("illegal state transition")
)

// ExtractionError wraps a failure from one extractor, preserving which
// phase it ran in so callers can tell fatal from degradable failures.
type ExtractionError struct {
	Extractor string
	Phase     extractors.Phase
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extractor %s (%s): %v", e.Extractor, e.Phase, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }
