package extractors

import (
	"context"
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

const defaultRecentFormDays = 30

// compatWeight scores one past ride for the jockey-horse pairing.
func compatWeight(finish int) float64 {
	switch {
	case finish == 1:
		return 1.0
	case finish == 2:
		return 0.8
	case finish == 3:
		return 0.6
	case finish >= 4 && finish <= 5:
		return 0.4
	case finish >= 6 && finish <= 10:
		return 0.2
	default:
		return 0.1
	}
}

// JockeyTrainerExtractor mirrors the performance aggregates keyed by jockey
// and trainer, and adds the pairing features: jockey-horse compatibility,
// jockey-trainer combination win rate, stable size and experience.
type JockeyTrainerExtractor struct {
	recentFormDays int
	manifest       feature.Manifest
}

// JockeyTrainerOption configures a JockeyTrainerExtractor.
type JockeyTrainerOption func(*JockeyTrainerExtractor)

// WithRecentFormDays sets the short-form window length in days.
func WithRecentFormDays(days int) JockeyTrainerOption {
	return func(e *JockeyTrainerExtractor) {
		if days > 0 {
			e.recentFormDays = days
		}
	}
}

// NewJockeyTrainer builds the extractor.
func NewJockeyTrainer(opts ...JockeyTrainerOption) *JockeyTrainerExtractor {
	e := &JockeyTrainerExtractor{recentFormDays: defaultRecentFormDays}
	for _, opt := range opts {
		opt(e)
	}
	columns := []string{
		"jockey_starts", "jockey_wins", "jockey_win_rate",
		"jockey_place_rate", "jockey_show_rate", "jockey_recent_win_rate",
		"jockey_venue_win_rate", "jockey_distance_win_rate",
		"jockey_class_win_rate", "jockey_experience_years",
		"trainer_starts", "trainer_wins", "trainer_win_rate",
		"trainer_place_rate", "trainer_show_rate", "trainer_recent_win_rate",
		"trainer_venue_win_rate", "trainer_distance_win_rate",
		"trainer_class_win_rate", "trainer_experience_years",
		"stable_size",
		"jockey_horse_compat", "jockey_horse_rides",
		"jockey_trainer_starts", "jockey_trainer_win_rate",
	}
	defaults := map[string]float64{
		"jockey_horse_compat": 0.5,
	}
	e.manifest = feature.MustManifest("jockeytrainer", columns, defaults)
	return e
}

func (e *JockeyTrainerExtractor) Name() string               { return "jockeytrainer" }
func (e *JockeyTrainerExtractor) Phase() Phase               { return Phase1 }
func (e *JockeyTrainerExtractor) Manifest() feature.Manifest { return e.manifest }
func (e *JockeyTrainerExtractor) Requires() []string         { return nil }

func (e *JockeyTrainerExtractor) Extract(ctx context.Context, batch *Batch) (*feature.Block, error) {
	block := feature.NewBlock(e.manifest, len(batch.Targets))
	for i := range batch.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := &batch.Targets[i]
		if err := e.entityStats(block, i, "jockey", t, t.JockeyHistory, batch.AsOf); err != nil {
			return nil, err
		}
		if err := e.entityStats(block, i, "trainer", t, t.TrainerHistory, batch.AsOf); err != nil {
			return nil, err
		}

		// Stable size is the distinct horses the trainer has started.
		horses := make(map[model.HorseID]struct{})
		for j := range t.TrainerHistory {
			horses[t.TrainerHistory[j].HorseID] = struct{}{}
		}

		// Pairing features come from the jockey's side of the history.
		var compatSum float64
		rides := 0
		comboWins, comboStarts := 0, 0
		for j := range t.JockeyHistory {
			row := &t.JockeyHistory[j]
			if !row.Finished() {
				continue
			}
			if row.HorseID == t.Entry.HorseID {
				compatSum += compatWeight(row.Finish())
				rides++
			}
			if row.TrainerID == t.Entry.TrainerID {
				comboStarts++
				if row.Finish() == 1 {
					comboWins++
				}
			}
		}
		cells := map[string]float64{
			"stable_size":             float64(len(horses)),
			"jockey_horse_rides":      float64(rides),
			"jockey_trainer_starts":   float64(comboStarts),
			"jockey_trainer_win_rate": rate(comboWins, comboStarts),
		}
		if rides > 0 {
			cells["jockey_horse_compat"] = compatSum / float64(rides)
		}
		if err := setAll(block, i, cells); err != nil {
			return nil, err
		}
	}
	return block, nil
}

func (e *JockeyTrainerExtractor) entityStats(block *feature.Block, row int, prefix string, t *Target, history []model.ParticipationRecord, asOf time.Time) error {
	positions := finishes(history)
	starts := len(positions)
	wins, places, shows := winLossCounts(positions)

	cutoff := asOf.AddDate(0, 0, -e.recentFormDays)
	recentRate, _ := winRateWhere(history, func(r *model.ParticipationRecord) bool {
		return !r.RaceDate.Before(cutoff)
	})
	venueRate, _ := winRateWhere(history, func(r *model.ParticipationRecord) bool {
		return r.Venue == t.Race.Venue
	})
	bucket := model.BucketForDistance(t.Race.Distance)
	distRate, _ := winRateWhere(history, func(r *model.ParticipationRecord) bool {
		return model.BucketForDistance(r.Distance) == bucket
	})
	classRate, _ := winRateWhere(history, func(r *model.ParticipationRecord) bool {
		return r.ClassLabel == t.Race.ClassLabel
	})

	cells := map[string]float64{
		prefix + "_starts":            float64(starts),
		prefix + "_wins":              float64(wins),
		prefix + "_win_rate":          rate(wins, starts),
		prefix + "_place_rate":        rate(places, starts),
		prefix + "_show_rate":         rate(shows, starts),
		prefix + "_recent_win_rate":   recentRate,
		prefix + "_venue_win_rate":    venueRate,
		prefix + "_distance_win_rate": distRate,
		prefix + "_class_win_rate":    classRate,
	}
	if len(history) > 0 {
		oldest := history[len(history)-1].RaceDate
		cells[prefix+"_experience_years"] = asOf.Sub(oldest).Hours() / 24 / 365.25
	}
	return setAll(block, row, cells)
}

var _ Extractor = (*JockeyTrainerExtractor)(nil)
