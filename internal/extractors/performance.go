package extractors

import (
	"context"
	"fmt"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
	"github.com/yoshikawa-river/keiba-features/internal/domain/lookup"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// DefaultWindows are the rolling window sizes used when none are configured.
var DefaultWindows = []int{3, 5, 10}

// PerformanceExtractor computes career and rolling-window statistics over a
// horse's past starts. A horse with no history gets the documented zero
// defaults across the board.
type PerformanceExtractor struct {
	windows  []int
	tables   *lookup.Tables
	manifest feature.Manifest
}

// PerformanceOption configures a PerformanceExtractor.
type PerformanceOption func(*PerformanceExtractor)

// WithWindows overrides the rolling window sizes.
func WithWindows(windows []int) PerformanceOption {
	return func(e *PerformanceExtractor) {
		if len(windows) > 0 {
			e.windows = windows
		}
	}
}

// NewPerformance builds the extractor against a table set.
func NewPerformance(tables *lookup.Tables, opts ...PerformanceOption) *PerformanceExtractor {
	e := &PerformanceExtractor{
		windows: DefaultWindows,
		tables:  tables,
	}
	for _, opt := range opts {
		opt(e)
	}
	columns := []string{
		"career_starts", "career_wins", "career_places", "career_shows",
		"career_win_rate", "career_place_rate", "career_show_rate",
		"career_earnings", "career_earnings_per_start",
		"career_avg_finish", "career_best_finish", "career_worst_finish",
		"career_finish_std", "career_g1_wins", "career_graded_wins",
	}
	for _, n := range e.windows {
		columns = append(columns,
			fmt.Sprintf("recent%d_starts", n),
			fmt.Sprintf("recent%d_wins", n),
			fmt.Sprintf("recent%d_win_rate", n),
			fmt.Sprintf("recent%d_finish_trend", n),
			fmt.Sprintf("recent%d_streak", n),
			fmt.Sprintf("avg_finish_position_last%d", n),
			fmt.Sprintf("median_finish_position_last%d", n),
			fmt.Sprintf("std_finish_position_last%d", n),
			fmt.Sprintf("best_finish_last%d", n),
			fmt.Sprintf("worst_finish_last%d", n),
		)
	}
	columns = append(columns, "improvement_rate", "consistency_score")
	e.manifest = feature.MustManifest("performance", columns, nil)
	return e
}

func (e *PerformanceExtractor) Name() string               { return "performance" }
func (e *PerformanceExtractor) Phase() Phase               { return Phase1 }
func (e *PerformanceExtractor) Manifest() feature.Manifest { return e.manifest }
func (e *PerformanceExtractor) Requires() []string         { return nil }

func (e *PerformanceExtractor) Extract(ctx context.Context, batch *Batch) (*feature.Block, error) {
	block := feature.NewBlock(e.manifest, len(batch.Targets))
	for i := range batch.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.extractRow(block, i, batch.Targets[i].HorseHistory); err != nil {
			return nil, err
		}
	}
	return block, nil
}

func (e *PerformanceExtractor) extractRow(block *feature.Block, row int, history []model.ParticipationRecord) error {
	positions := finishes(history)
	set := func(col string, v float64) error { return block.Set(row, col, v) }

	// Career aggregates over the full settled history.
	starts := len(positions)
	wins, places, shows := winLossCounts(positions)
	var earnings float64
	g1Wins, gradedWins := 0, 0
	for i := range history {
		earnings += history[i].PrizeMoney
		if history[i].Finish() == 1 {
			if history[i].ClassLabel == "G1" {
				g1Wins++
			}
			if e.tables.IsGraded(history[i].ClassLabel) {
				gradedWins++
			}
		}
	}
	for col, v := range map[string]float64{
		"career_starts":             float64(starts),
		"career_wins":               float64(wins),
		"career_places":             float64(places),
		"career_shows":              float64(shows),
		"career_win_rate":           rate(wins, starts),
		"career_place_rate":         rate(places, starts),
		"career_show_rate":          rate(shows, starts),
		"career_earnings":           earnings,
		"career_earnings_per_start": safeDiv(earnings, float64(starts)),
		"career_avg_finish":         mean(positions),
		"career_best_finish":        minOf(positions),
		"career_worst_finish":       maxOf(positions),
		"career_finish_std":         stddev(positions),
		"career_g1_wins":            float64(g1Wins),
		"career_graded_wins":        float64(gradedWins),
	} {
		if err := set(col, v); err != nil {
			return err
		}
	}

	// Rolling windows clamp silently to the available history.
	for _, n := range e.windows {
		recent := lastN(positions, n)
		rStarts := len(recent)
		rWins, _, _ := winLossCounts(recent)
		for col, v := range map[string]float64{
			fmt.Sprintf("recent%d_starts", n):               float64(rStarts),
			fmt.Sprintf("recent%d_wins", n):                 float64(rWins),
			fmt.Sprintf("recent%d_win_rate", n):             rate(rWins, rStarts),
			fmt.Sprintf("recent%d_finish_trend", n):         trendSlope(recent),
			fmt.Sprintf("recent%d_streak", n):               streak(recent),
			fmt.Sprintf("avg_finish_position_last%d", n):    mean(recent),
			fmt.Sprintf("median_finish_position_last%d", n): median(recent),
			fmt.Sprintf("std_finish_position_last%d", n):    stddev(recent),
			fmt.Sprintf("best_finish_last%d", n):            minOf(recent),
			fmt.Sprintf("worst_finish_last%d", n):           maxOf(recent),
		} {
			if err := set(col, v); err != nil {
				return err
			}
		}
	}

	// Improvement averages newest-minus-previous position deltas over the
	// last five starts, so moving up the order reads negative.
	last5 := lastN(positions, 5)
	improvement := 0.0
	if len(last5) >= 2 {
		deltas := make([]float64, 0, len(last5)-1)
		for i := 0; i < len(last5)-1; i++ {
			deltas = append(deltas, last5[i]-last5[i+1])
		}
		improvement = mean(deltas)
	}
	if err := set("improvement_rate", improvement); err != nil {
		return err
	}
	return set("consistency_score", consistency(lastN(positions, 10)))
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

var _ Extractor = (*PerformanceExtractor)(nil)
