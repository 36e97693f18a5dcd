package extractors

import (
	"context"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// ConditionalExtractor computes the horse's win rate restricted to history
// rows matching the target race's value on each slicing dimension, paired
// with the start count in that slice so consumers can judge coverage.
type ConditionalExtractor struct {
	manifest feature.Manifest
}

type slicer struct {
	name  string
	match func(target *Target, row *model.ParticipationRecord) bool
}

var conditionalSlices = []slicer{
	{"distance_bucket", func(t *Target, r *model.ParticipationRecord) bool {
		return model.BucketForDistance(r.Distance) == model.BucketForDistance(t.Race.Distance)
	}},
	{"track_condition", func(t *Target, r *model.ParticipationRecord) bool {
		return r.TrackCondition == t.Race.TrackCondition
	}},
	{"venue", func(t *Target, r *model.ParticipationRecord) bool {
		return r.Venue == t.Race.Venue
	}},
	{"class", func(t *Target, r *model.ParticipationRecord) bool {
		return r.ClassLabel == t.Race.ClassLabel
	}},
	{"season", func(t *Target, r *model.ParticipationRecord) bool {
		return model.SeasonOf(r.RaceDate) == model.SeasonOf(t.Race.RaceDate)
	}},
	{"post_bucket", func(t *Target, r *model.ParticipationRecord) bool {
		return model.BucketForPost(r.PostPosition) == model.BucketForPost(t.Entry.PostPosition)
	}},
	{"weight_bucket", func(t *Target, r *model.ParticipationRecord) bool {
		return model.BucketForWeight(r.WeightCarried) == model.BucketForWeight(t.Entry.WeightCarried)
	}},
}

// NewConditional builds the extractor.
func NewConditional() *ConditionalExtractor {
	columns := make([]string, 0, len(conditionalSlices)*2)
	for _, s := range conditionalSlices {
		columns = append(columns, s.name+"_win_rate", s.name+"_starts")
	}
	return &ConditionalExtractor{
		manifest: feature.MustManifest("conditional", columns, nil),
	}
}

func (e *ConditionalExtractor) Name() string               { return "conditional" }
func (e *ConditionalExtractor) Phase() Phase               { return Phase2 }
func (e *ConditionalExtractor) Manifest() feature.Manifest { return e.manifest }
func (e *ConditionalExtractor) Requires() []string         { return nil }

func (e *ConditionalExtractor) Extract(ctx context.Context, batch *Batch) (*feature.Block, error) {
	block := feature.NewBlock(e.manifest, len(batch.Targets))
	for i := range batch.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := &batch.Targets[i]
		for _, s := range conditionalSlices {
			winRate, starts := winRateWhere(t.HorseHistory, func(r *model.ParticipationRecord) bool {
				return s.match(t, r)
			})
			if err := block.Set(i, s.name+"_win_rate", winRate); err != nil {
				return nil, err
			}
			if err := block.Set(i, s.name+"_starts", float64(starts)); err != nil {
				return nil, err
			}
		}
	}
	return block, nil
}

var _ Extractor = (*ConditionalExtractor)(nil)
