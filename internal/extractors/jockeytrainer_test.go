package extractors

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestJockeyTrainerExtractor(t *testing.T) {
	ext := NewJockeyTrainer()
	ctx := context.Background()

	Convey("Given a jockey with mixed results", t, func() {
		target := testTarget("h1", nil)
		target.JockeyHistory = settledRuns("h1", 1, 4, 2)
		target.TrainerHistory = settledRuns("h1", 3, 1)
		batch := singleBatch(target)

		Convey("When the block is extracted", func() {
			block, err := ext.Extract(ctx, batch)
			So(err, ShouldBeNil)

			Convey("Then the per-entity aggregates match", func() {
				So(block.Get(0, "jockey_starts"), ShouldEqual, 3)
				So(block.Get(0, "jockey_win_rate"), ShouldAlmostEqual, 1.0/3)
				So(block.Get(0, "jockey_place_rate"), ShouldAlmostEqual, 2.0/3)
				So(block.Get(0, "trainer_win_rate"), ShouldAlmostEqual, 0.5)
			})

			Convey("Then the stable size counts distinct horses", func() {
				So(block.Get(0, "stable_size"), ShouldEqual, 1)
			})

			Convey("Then same-horse rides weight into compatibility", func() {
				// Finishes 1, 4, 2 weight 1.0, 0.4 and 0.8.
				So(block.Get(0, "jockey_horse_rides"), ShouldEqual, 3)
				So(block.Get(0, "jockey_horse_compat"), ShouldAlmostEqual, (1.0+0.4+0.8)/3)
			})

			Convey("Then the jockey-trainer combination is tallied", func() {
				So(block.Get(0, "jockey_trainer_starts"), ShouldEqual, 3)
				So(block.Get(0, "jockey_trainer_win_rate"), ShouldAlmostEqual, 1.0/3)
			})
		})
	})

	Convey("Given a jockey who never rode this horse", t, func() {
		target := testTarget("h2", nil)
		other := settledRuns("other-horse", 6, 7)
		for i := range other {
			other[i].HorseID = "other-horse"
			other[i].TrainerID = "t9"
		}
		target.JockeyHistory = other
		batch := singleBatch(target)

		block, err := ext.Extract(ctx, batch)
		So(err, ShouldBeNil)

		Convey("Then compatibility keeps its neutral default", func() {
			So(block.Get(0, "jockey_horse_rides"), ShouldEqual, 0)
			So(block.Get(0, "jockey_horse_compat"), ShouldEqual, 0.5)
			So(block.Get(0, "jockey_trainer_starts"), ShouldEqual, 0)
		})
	})

	Convey("Given histories spanning a year", t, func() {
		target := testTarget("h3", nil)
		hist := settledRuns("h3", 2, 3)
		hist[1].RaceDate = testAsOf.AddDate(-1, 0, 0)
		target.JockeyHistory = hist
		batch := singleBatch(target)

		block, err := ext.Extract(ctx, batch)
		So(err, ShouldBeNil)

		Convey("Then experience reflects the oldest start", func() {
			So(block.Get(0, "jockey_experience_years"), ShouldAlmostEqual, 1.0, 0.01)
		})

		Convey("Then the short-form window keeps only recent starts", func() {
			// Only the 7-day-old second place falls inside 30 days.
			So(block.Get(0, "jockey_recent_win_rate"), ShouldEqual, 0)
		})
	})
}
