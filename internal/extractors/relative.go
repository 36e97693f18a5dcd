package extractors

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
)

const valueGapThreshold = 0.05

// relMetric is one field-compared ability metric. Source names a qualified
// column merged by an earlier extractor; lowerBetter flips the ranking for
// finish-position style metrics.
type relMetric struct {
	name        string
	source      string
	lowerBetter bool
}

var relMetrics = []relMetric{
	{name: "career_win_rate", source: "performance.career_win_rate"},
	{name: "career_avg_finish", source: "performance.career_avg_finish", lowerBetter: true},
	{name: "recent5_avg_finish", source: "performance.avg_finish_position_last5", lowerBetter: true},
	{name: "distance_win_rate", source: "conditional.distance_bucket_win_rate"},
	{name: "jockey_win_rate", source: "jockeytrainer.jockey_win_rate"},
	{name: "trainer_win_rate", source: "jockeytrainer.trainer_win_rate"},
}

// RelativeExtractor compares each entrant against its race's field: deltas
// vs the field mean and best, stable ranks, percentiles and z-scores per
// metric, odds-implied probabilities and value gaps, and draw geometry. It
// runs last because it consumes other extractors' merged columns.
//
// A field of one horse keeps every comparative column at its neutral
// default; there is nothing to compare against and no division happens.
type RelativeExtractor struct {
	manifest feature.Manifest
	requires []string
}

// NewRelative builds the extractor.
func NewRelative() *RelativeExtractor {
	var columns []string
	defaults := map[string]float64{}
	requires := make([]string, 0, len(relMetrics))
	for _, m := range relMetrics {
		columns = append(columns,
			m.name+"_vs_avg", m.name+"_vs_best", m.name+"_rank",
			m.name+"_percentile", m.name+"_zscore",
		)
		defaults[m.name+"_rank"] = 1
		defaults[m.name+"_percentile"] = 0.5
		requires = append(requires, m.source)
	}
	columns = append(columns,
		"composite_strength_score",
		"odds_log", "implied_win_probability", "popularity_rank",
		"is_favorite", "is_top3_favorite", "is_top5_favorite",
		"relative_odds", "odds_deviation",
		"odds_value_gap", "is_undervalued", "is_overvalued",
		"post_position_normalized", "distance_from_center",
	)
	defaults["composite_strength_score"] = 0.5
	return &RelativeExtractor{
		manifest: feature.MustManifest("relative", columns, defaults),
		requires: requires,
	}
}

func (e *RelativeExtractor) Name() string               { return "relative" }
func (e *RelativeExtractor) Phase() Phase               { return Phase2 }
func (e *RelativeExtractor) Manifest() feature.Manifest { return e.manifest }
func (e *RelativeExtractor) Requires() []string         { return e.requires }

func (e *RelativeExtractor) Extract(ctx context.Context, batch *Batch) (*feature.Block, error) {
	if batch.Table == nil {
		return nil, fmt.Errorf("relative: %w: no working table", ErrMissingInput)
	}
	block := feature.NewBlock(e.manifest, len(batch.Targets))

	sources := make(map[string][]float64, len(e.requires))
	for _, q := range e.requires {
		col, ok := batch.Table.Column(q)
		if !ok {
			return nil, fmt.Errorf("relative: %w: column %s", ErrMissingInput, q)
		}
		if len(col) != len(batch.Targets) {
			return nil, fmt.Errorf("relative: table has %d rows, batch has %d", len(col), len(batch.Targets))
		}
		sources[q] = col
	}

	for _, idxs := range raceGroups(batch.Targets) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := e.extractGroup(block, batch, sources, idxs); err != nil {
			return nil, err
		}
	}
	return block, nil
}

func (e *RelativeExtractor) extractGroup(block *feature.Block, batch *Batch, sources map[string][]float64, idxs []int) error {
	fieldSize := len(idxs)

	// Draw geometry is defined even for a single entrant.
	for _, i := range idxs {
		post := float64(batch.Targets[i].Entry.PostPosition)
		fs := batch.Targets[i].Race.FieldSize
		if fs <= 0 {
			fs = fieldSize
		}
		if err := block.Set(i, "post_position_normalized", post/float64(fs)); err != nil {
			return err
		}
		center := (float64(fs) + 1) / 2
		if err := block.Set(i, "distance_from_center", math.Abs(post-center)/center); err != nil {
			return err
		}
	}

	if fieldSize < 2 {
		return nil
	}

	ranks := make(map[string]map[int]float64, len(relMetrics))
	for _, m := range relMetrics {
		col := sources[m.source]
		values := make([]float64, fieldSize)
		for j, i := range idxs {
			values[j] = col[i]
		}
		fieldMean := mean(values)
		fieldStd := stddev(values)
		best := maxOf(values)
		if m.lowerBetter {
			best = minOf(values)
		}

		// Stable rank: sort group positions by value, keeping batch order
		// between ties.
		order := make([]int, fieldSize)
		for j := range order {
			order[j] = j
		}
		sort.SliceStable(order, func(a, b int) bool {
			if m.lowerBetter {
				return values[order[a]] < values[order[b]]
			}
			return values[order[a]] > values[order[b]]
		})

		metricRanks := make(map[int]float64, fieldSize)
		for pos, j := range order {
			i := idxs[j]
			r := float64(pos + 1)
			metricRanks[i] = r
			if err := block.Set(i, m.name+"_rank", r); err != nil {
				return err
			}
			if err := block.Set(i, m.name+"_percentile", r/float64(fieldSize)); err != nil {
				return err
			}
		}
		ranks[m.name] = metricRanks

		for j, i := range idxs {
			v := values[j]
			if err := block.Set(i, m.name+"_vs_avg", v-fieldMean); err != nil {
				return err
			}
			if err := block.Set(i, m.name+"_vs_best", v-best); err != nil {
				return err
			}
			if fieldStd > 0 {
				if err := block.Set(i, m.name+"_zscore", (v-fieldMean)/fieldStd); err != nil {
					return err
				}
			}
		}
	}

	// Composite strength blends the win-rate and recent-form ranks.
	fs := float64(fieldSize)
	for _, i := range idxs {
		winRank := ranks["career_win_rate"][i]
		finishRank := ranks["recent5_avg_finish"][i]
		score := ((fs-winRank+1)*0.6 + (fs-finishRank+1)*0.4) / fs
		if err := block.Set(i, "composite_strength_score", score); err != nil {
			return err
		}
	}

	return e.extractOdds(block, batch, sources, idxs)
}

func (e *RelativeExtractor) extractOdds(block *feature.Block, batch *Batch, sources map[string][]float64, idxs []int) error {
	type entrantOdds struct {
		idx  int
		odds float64
	}
	var priced []entrantOdds
	for _, i := range idxs {
		if o := batch.Targets[i].Entry.Odds; o != nil && *o > 0 {
			priced = append(priced, entrantOdds{idx: i, odds: *o})
		}
	}
	if len(priced) == 0 {
		return nil
	}

	oddsValues := make([]float64, len(priced))
	for j, p := range priced {
		oddsValues[j] = p.odds
	}
	oddsMean := mean(oddsValues)
	oddsStd := stddev(oddsValues)

	winRates := sources["performance.career_win_rate"]
	for _, p := range priced {
		i := p.idx
		set := func(col string, v float64) error { return block.Set(i, col, v) }
		if err := set("odds_log", math.Log1p(p.odds)); err != nil {
			return err
		}
		implied := 1 / (p.odds + 1)
		if err := set("implied_win_probability", implied); err != nil {
			return err
		}

		// Popularity by odds, min-method ranking so tied prices share a rank.
		rank := 1
		for _, q := range priced {
			if q.odds < p.odds {
				rank++
			}
		}
		for col, v := range map[string]float64{
			"popularity_rank":  float64(rank),
			"is_favorite":      boolFlag(rank == 1),
			"is_top3_favorite": boolFlag(rank <= 3),
			"is_top5_favorite": boolFlag(rank <= 5),
		} {
			if err := set(col, v); err != nil {
				return err
			}
		}

		if oddsMean > 0 {
			if err := set("relative_odds", p.odds/oddsMean); err != nil {
				return err
			}
		}
		if oddsStd > 0 {
			if err := set("odds_deviation", (p.odds-oddsMean)/oddsStd); err != nil {
				return err
			}
		}

		gap := winRates[i] - implied
		for col, v := range map[string]float64{
			"odds_value_gap": gap,
			"is_undervalued": boolFlag(gap > valueGapThreshold),
			"is_overvalued":  boolFlag(gap < -valueGapThreshold),
		} {
			if err := set(col, v); err != nil {
				return err
			}
		}
	}
	return nil
}

var _ Extractor = (*RelativeExtractor)(nil)
