package pipeline

import (
	"github.com/yoshikawa-river/keiba-features/internal/domain/lookup"
	"github.com/yoshikawa-river/keiba-features/internal/extractors"
)

// DefaultSchedule returns the standard extractor order: the history-driven
// phase-1 families first, then the field-aware phase-2 families with the
// relative features last, since they read the merged columns.
func DefaultSchedule(tables *lookup.Tables, windows []int, recentFormDays int) []extractors.Extractor {
	return []extractors.Extractor{
		extractors.NewPerformance(tables, extractors.WithWindows(windows)),
		extractors.NewJockeyTrainer(extractors.WithRecentFormDays(recentFormDays)),
		extractors.NewTimeSpeed(tables),
		extractors.NewRaceCondition(tables),
		extractors.NewPedigree(tables),
		extractors.NewBaseAttr(),
		extractors.NewConditional(),
		extractors.NewRelative(),
	}
}
