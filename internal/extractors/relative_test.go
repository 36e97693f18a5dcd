package extractors

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
)

// relSourceTable builds a working table carrying the columns the relative
// extractor consumes, one row per target.
func relSourceTable(targets []Target, winRates, avgFinish, recentFinish []float64) *feature.Table {
	keys := make([]feature.Key, len(targets))
	for i, t := range targets {
		keys[i] = feature.Key{RaceID: t.Race.RaceID, HorseID: t.Entry.HorseID}
	}
	table := feature.NewTable(keys)

	perf := feature.MustManifest("performance",
		[]string{"career_win_rate", "career_avg_finish", "avg_finish_position_last5"}, nil)
	cond := feature.MustManifest("conditional", []string{"distance_bucket_win_rate"}, nil)
	jt := feature.MustManifest("jockeytrainer", []string{"jockey_win_rate", "trainer_win_rate"}, nil)

	pb := feature.NewBlock(perf, len(targets))
	cb := feature.NewBlock(cond, len(targets))
	jb := feature.NewBlock(jt, len(targets))
	for i := range targets {
		pb.Set(i, "career_win_rate", winRates[i])
		pb.Set(i, "career_avg_finish", avgFinish[i])
		pb.Set(i, "avg_finish_position_last5", recentFinish[i])
		cb.Set(i, "distance_bucket_win_rate", winRates[i]/2)
		jb.Set(i, "jockey_win_rate", 0.1)
		jb.Set(i, "trainer_win_rate", 0.1)
	}
	for _, b := range []*feature.Block{pb, cb, jb} {
		if err := table.Merge(b); err != nil {
			panic(err)
		}
	}
	return table
}

func TestRelativeExtractor(t *testing.T) {
	ext := NewRelative()
	ctx := context.Background()

	Convey("Given two entrants with career win rates 0.40 and 0.10", t, func() {
		a := testTarget("hA", nil)
		a.Entry.PostPosition = 1
		a.Entry.Odds = f64p(2.0)
		b := testTarget("hB", nil)
		b.Entry.PostPosition = 2
		b.Entry.Odds = f64p(4.0)
		targets := []Target{a, b}
		batch := &Batch{
			AsOf:    testAsOf,
			Targets: targets,
			Table:   relSourceTable(targets, []float64{0.40, 0.10}, []float64{3, 6}, []float64{2, 5}),
		}

		Convey("When the block is extracted", func() {
			block, err := ext.Extract(ctx, batch)
			So(err, ShouldBeNil)

			Convey("Then the stronger horse is 0.15 above the field mean and ranked first", func() {
				So(block.Get(0, "career_win_rate_vs_avg"), ShouldAlmostEqual, 0.15)
				So(block.Get(0, "career_win_rate_rank"), ShouldEqual, 1)
				So(block.Get(0, "career_win_rate_vs_best"), ShouldEqual, 0)
				So(block.Get(1, "career_win_rate_vs_avg"), ShouldAlmostEqual, -0.15)
				So(block.Get(1, "career_win_rate_rank"), ShouldEqual, 2)
			})

			Convey("Then finish metrics rank in the low-is-good direction", func() {
				So(block.Get(0, "recent5_avg_finish_rank"), ShouldEqual, 1)
				So(block.Get(1, "recent5_avg_finish_rank"), ShouldEqual, 2)
				So(block.Get(0, "recent5_avg_finish_vs_best"), ShouldEqual, 0)
			})

			Convey("Then percentiles and z-scores follow the field", func() {
				So(block.Get(0, "career_win_rate_percentile"), ShouldAlmostEqual, 0.5)
				So(block.Get(1, "career_win_rate_percentile"), ShouldAlmostEqual, 1.0)
				So(block.Get(0, "career_win_rate_zscore"), ShouldBeGreaterThan, 0)
				So(block.Get(1, "career_win_rate_zscore"), ShouldBeLessThan, 0)
			})

			Convey("Then composite strength blends win-rate and form ranks", func() {
				So(block.Get(0, "composite_strength_score"), ShouldAlmostEqual, 1.0)
				So(block.Get(1, "composite_strength_score"), ShouldAlmostEqual, 0.5)
			})

			Convey("Then the market features follow the odds", func() {
				So(block.Get(0, "implied_win_probability"), ShouldAlmostEqual, 1.0/3)
				So(block.Get(0, "popularity_rank"), ShouldEqual, 1)
				So(block.Get(0, "is_favorite"), ShouldEqual, 1)
				So(block.Get(1, "popularity_rank"), ShouldEqual, 2)
				So(block.Get(1, "is_favorite"), ShouldEqual, 0)
				So(block.Get(1, "is_top3_favorite"), ShouldEqual, 1)
				So(block.Get(0, "relative_odds"), ShouldAlmostEqual, 2.0/3)
			})

			Convey("Then the value gap flags the underpriced horse", func() {
				So(block.Get(0, "odds_value_gap"), ShouldAlmostEqual, 0.40-1.0/3)
				So(block.Get(0, "is_undervalued"), ShouldEqual, 1)
				So(block.Get(0, "is_overvalued"), ShouldEqual, 0)
				So(block.Get(1, "is_overvalued"), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a field of one", t, func() {
		solo := testTarget("hS", nil)
		targets := []Target{solo}
		batch := &Batch{
			AsOf:    testAsOf,
			Targets: targets,
			Table:   relSourceTable(targets, []float64{0.4}, []float64{3}, []float64{2}),
		}

		block, err := ext.Extract(ctx, batch)
		So(err, ShouldBeNil)

		Convey("Then the comparative columns keep their neutral defaults", func() {
			So(block.Get(0, "career_win_rate_vs_avg"), ShouldEqual, 0)
			So(block.Get(0, "career_win_rate_rank"), ShouldEqual, 1)
			So(block.Get(0, "career_win_rate_percentile"), ShouldAlmostEqual, 0.5)
			So(block.Get(0, "career_win_rate_zscore"), ShouldEqual, 0)
			So(block.Get(0, "composite_strength_score"), ShouldAlmostEqual, 0.5)
		})

		Convey("Then draw geometry still uses the declared field size", func() {
			So(block.Get(0, "post_position_normalized"), ShouldAlmostEqual, 3.0/12)
		})
	})

	Convey("Given tied metric values", t, func() {
		a := testTarget("hA", nil)
		b := testTarget("hB", nil)
		targets := []Target{a, b}
		batch := &Batch{
			AsOf:    testAsOf,
			Targets: targets,
			Table:   relSourceTable(targets, []float64{0.2, 0.2}, []float64{3, 3}, []float64{2, 2}),
		}

		block, err := ext.Extract(ctx, batch)
		So(err, ShouldBeNil)

		Convey("Then ranks break ties by batch order and z-scores stay zero", func() {
			So(block.Get(0, "career_win_rate_rank"), ShouldEqual, 1)
			So(block.Get(1, "career_win_rate_rank"), ShouldEqual, 2)
			So(block.Get(0, "career_win_rate_zscore"), ShouldEqual, 0)
		})
	})

	Convey("Given a batch without the merged table", t, func() {
		batch := singleBatch(testTarget("hX", nil))

		_, err := ext.Extract(ctx, batch)
		Convey("Then extraction fails fast", func() {
			So(errors.Is(err, ErrMissingInput), ShouldBeTrue)
		})
	})
}
