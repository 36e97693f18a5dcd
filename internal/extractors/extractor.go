// Package extractors implements the feature families. Each extractor is a
// pure computation from a batch of target rows (plus their pre-fetched,
// leakage-checked histories) to one feature block; it holds no mutable
// state between runs and declares its columns up front in a manifest.
package extractors

import (
	"context"
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// Phase splits extractors into two tiers. Phase 1 failures abort a run;
// phase 2 failures degrade it. Phase 2 extractors may also read columns
// already merged onto the working table.
type Phase int

const (
	Phase1 Phase = iota + 1
	Phase2
)

func (p Phase) String() string {
	switch p {
	case Phase1:
		return "phase1"
	case Phase2:
		return "phase2"
	default:
		return "unknown"
	}
}

// Target is one (race, horse) row to featurize: the race-day entry and
// every history slice the extractors may consult. Histories obey the
// accessor contract: strictly before the as-of date, most recent first.
type Target struct {
	Race  model.RaceRecord
	Entry model.ParticipationRecord

	Pedigree     *model.PedigreeRecord
	SireStats    *model.SireStats
	DamSireStats *model.SireStats

	HorseHistory   []model.ParticipationRecord
	JockeyHistory  []model.ParticipationRecord
	TrainerHistory []model.ParticipationRecord
}

// Batch is one extraction unit: the ordered target rows, the as-of date,
// and a read-only view of the table merged so far. Table is nil during
// phase 1.
type Batch struct {
	AsOf    time.Time
	Targets []Target
	Table   *feature.Table
}

// Extractor is one feature family. Manifest must be constant across calls;
// Extract returns a block row-aligned with the batch's targets.
type Extractor interface {
	Name() string
	Phase() Phase
	Manifest() feature.Manifest

	// Requires lists the qualified table columns the extractor reads.
	// The orchestrator checks them before extraction starts.
	Requires() []string

	Extract(ctx context.Context, batch *Batch) (*feature.Block, error)
}

// setAll writes the given cells into one block row, stopping at the first
// failure. Writes are independent so the map order does not matter.
func setAll(block *feature.Block, row int, cells map[string]float64) error {
	for col, v := range cells {
		if err := block.Set(row, col, v); err != nil {
			return err
		}
	}
	return nil
}

// raceGroups returns target indexes grouped per race, preserving the batch
// order inside each group. Field-relative features operate on these groups.
func raceGroups(targets []Target) map[model.RaceID][]int {
	groups := make(map[model.RaceID][]int)
	for i := range targets {
		id := targets[i].Race.RaceID
		groups[id] = append(groups[id], i)
	}
	return groups
}
