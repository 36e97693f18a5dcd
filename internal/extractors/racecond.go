package extractors

import (
	"context"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
	"github.com/yoshikawa-river/keiba-features/internal/domain/lookup"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// RaceConditionExtractor encodes the target race's own attributes. It is a
// pure function of the race record plus the static lookup tables; no
// history is consulted. Unknown venues and class labels degrade to neutral
// codes instead of failing.
type RaceConditionExtractor struct {
	tables   *lookup.Tables
	manifest feature.Manifest
}

// NewRaceCondition builds the extractor against a table set.
func NewRaceCondition(tables *lookup.Tables) *RaceConditionExtractor {
	columns := []string{
		"distance_bucket_code", "distance_normalized", "distance_squared",
		"class_rank", "graded_flag",
		"field_size_normalized", "large_field_flag", "small_field_flag",
		"venue_code", "left_turn_flag", "large_venue_flag", "local_venue_flag",
		"turf_flag", "dirt_flag", "condition_code",
		"race_month", "season_code",
		"spring_classics_flag", "autumn_classics_flag", "summer_series_flag",
	}
	return &RaceConditionExtractor{
		tables:   tables,
		manifest: feature.MustManifest("racecond", columns, nil),
	}
}

func (e *RaceConditionExtractor) Name() string               { return "racecond" }
func (e *RaceConditionExtractor) Phase() Phase               { return Phase1 }
func (e *RaceConditionExtractor) Manifest() feature.Manifest { return e.manifest }
func (e *RaceConditionExtractor) Requires() []string         { return nil }

func (e *RaceConditionExtractor) Extract(ctx context.Context, batch *Batch) (*feature.Block, error) {
	block := feature.NewBlock(e.manifest, len(batch.Targets))
	for i := range batch.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		race := &batch.Targets[i].Race

		km := float64(race.Distance) / 1000
		classRank := e.tables.ClassRank(race.ClassLabel)
		month := int(race.RaceDate.Month())
		classic := classRank >= 8

		cells := map[string]float64{
			"distance_bucket_code":  float64(model.BucketForDistance(race.Distance)),
			"distance_normalized":   float64(race.Distance-1000) / 2600,
			"distance_squared":      km * km,
			"class_rank":            classRank,
			"graded_flag":           boolFlag(e.tables.IsGraded(race.ClassLabel)),
			"field_size_normalized": float64(race.FieldSize) / 18,
			"large_field_flag":      boolFlag(race.FieldSize >= 15),
			"small_field_flag":      boolFlag(race.FieldSize > 0 && race.FieldSize <= 8),
			"turf_flag":             boolFlag(race.TrackType == model.Turf),
			"dirt_flag":             boolFlag(race.TrackType == model.Dirt),
			"condition_code":        model.ConditionCode(race.TrackCondition),
			"race_month":            float64(month),
			"season_code":           float64(model.SeasonOf(race.RaceDate)),
			"spring_classics_flag":  boolFlag(classic && month >= 3 && month <= 6),
			"autumn_classics_flag":  boolFlag(classic && month >= 9 && month <= 11),
			"summer_series_flag":    boolFlag(month == 7 || month == 8),
		}
		if v, ok := e.tables.Venue(race.Venue); ok {
			cells["venue_code"] = float64(v.Code)
			cells["left_turn_flag"] = boolFlag(v.Turn == "left")
			cells["large_venue_flag"] = boolFlag(v.Scale == "large")
		} else {
			cells["local_venue_flag"] = 1
		}
		if err := setAll(block, i, cells); err != nil {
			return nil, err
		}
	}
	return block, nil
}

func boolFlag(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

var _ Extractor = (*RaceConditionExtractor)(nil)
