package extractors

import (
	"context"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
	"github.com/yoshikawa-river/keiba-features/internal/domain/history"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// BaseAttrExtractor encodes the race-day entry attributes: age, sex,
// carried and body weight, draw, and freshness. Weight is also compared
// against the target race's field, which is why this runs in phase 2
// alongside the other field-aware extractors.
type BaseAttrExtractor struct {
	manifest feature.Manifest
}

// NewBaseAttr builds the extractor.
func NewBaseAttr() *BaseAttrExtractor {
	columns := []string{
		"horse_age", "age_category", "sex_code",
		"weight_carried", "weight_carried_diff", "weight_carried_category",
		"horse_weight", "horse_weight_diff", "horse_weight_change_rate",
		"weight_change_category", "horse_weight_category",
		"post_position", "post_position_ratio", "post_category",
		"widest_post_flag",
		"days_since_last_race", "rest_category", "is_fresh", "debut_flag",
	}
	return &BaseAttrExtractor{
		manifest: feature.MustManifest("baseattr", columns, nil),
	}
}

func (e *BaseAttrExtractor) Name() string               { return "baseattr" }
func (e *BaseAttrExtractor) Phase() Phase               { return Phase2 }
func (e *BaseAttrExtractor) Manifest() feature.Manifest { return e.manifest }
func (e *BaseAttrExtractor) Requires() []string         { return nil }

func ageCategory(age int) float64 {
	switch {
	case age <= 0:
		return 0
	case age <= 3:
		return 1
	case age <= 6:
		return 2
	default:
		return 3
	}
}

func weightChangeCategory(diff float64) float64 {
	switch {
	case diff <= -10:
		return 1
	case diff <= -5:
		return 2
	case diff <= 5:
		return 3
	case diff <= 10:
		return 4
	default:
		return 5
	}
}

func bodyWeightCategory(kg float64) float64 {
	switch {
	case kg <= 0:
		return 0
	case kg <= 440:
		return 1
	case kg <= 480:
		return 2
	case kg <= 520:
		return 3
	default:
		return 4
	}
}

func restCategory(days float64) float64 {
	switch {
	case days <= 0:
		return 0
	case days <= 14:
		return 1
	case days <= 28:
		return 2
	case days <= 56:
		return 3
	case days <= 180:
		return 4
	default:
		return 5
	}
}

func (e *BaseAttrExtractor) Extract(ctx context.Context, batch *Batch) (*feature.Block, error) {
	block := feature.NewBlock(e.manifest, len(batch.Targets))

	// Field-average carried weight per race.
	fieldMeanWeight := make(map[model.RaceID]float64)
	for raceID, idxs := range raceGroups(batch.Targets) {
		var weights []float64
		for _, i := range idxs {
			if w := batch.Targets[i].Entry.WeightCarried; w > 0 {
				weights = append(weights, w)
			}
		}
		fieldMeanWeight[raceID] = mean(weights)
	}

	for i := range batch.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := &batch.Targets[i]
		entry := &t.Entry

		days := history.DaysSinceLastStart(t.HorseHistory, batch.AsOf)

		cells := map[string]float64{
			"horse_age":               float64(entry.HorseAge),
			"age_category":            ageCategory(entry.HorseAge),
			"sex_code":                model.SexCode(entry.HorseSex),
			"weight_carried":          entry.WeightCarried,
			"weight_carried_category": float64(model.BucketForWeight(entry.WeightCarried)),
			"horse_weight":            entry.HorseWeight,
			"horse_weight_diff":       entry.HorseWeightDiff,
			"weight_change_category":  weightChangeCategory(entry.HorseWeightDiff),
			"horse_weight_category":   bodyWeightCategory(entry.HorseWeight),
			"post_position":           float64(entry.PostPosition),
			"post_category":           float64(model.BucketForPost(entry.PostPosition)),
			"days_since_last_race":    days,
			"rest_category":           restCategory(days),
			"is_fresh":                boolFlag(days > 90),
			"debut_flag":              boolFlag(len(t.HorseHistory) == 0),
		}
		if m := fieldMeanWeight[t.Race.RaceID]; m > 0 && entry.WeightCarried > 0 {
			cells["weight_carried_diff"] = entry.WeightCarried - m
		}
		if entry.HorseWeight > 0 {
			cells["horse_weight_change_rate"] = entry.HorseWeightDiff / entry.HorseWeight * 100
		}
		if t.Race.FieldSize > 0 {
			cells["post_position_ratio"] = float64(entry.PostPosition) / float64(t.Race.FieldSize)
			cells["widest_post_flag"] = boolFlag(entry.PostPosition == t.Race.FieldSize)
		}
		if err := setAll(block, i, cells); err != nil {
			return nil, err
		}
	}
	return block, nil
}

var _ Extractor = (*BaseAttrExtractor)(nil)
