package extractors

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/yoshikawa-river/keiba-features/internal/domain/lookup"
)

func TestParseElapsed(t *testing.T) {
	Convey("Given stored elapsed-time strings", t, func() {
		So(ParseElapsed("1:33.5"), ShouldAlmostEqual, 93.5)
		So(ParseElapsed("2:24.1"), ShouldAlmostEqual, 144.1)
		So(ParseElapsed("83.4"), ShouldAlmostEqual, 83.4)
		So(ParseElapsed(""), ShouldEqual, 0)
		So(ParseElapsed("fast"), ShouldEqual, 0)
		So(ParseElapsed("x:33.5"), ShouldEqual, 0)
	})
}

func TestTimeSpeedExtractor(t *testing.T) {
	ext := NewTimeSpeed(lookup.Defaults())
	ctx := context.Background()

	Convey("Given a horse with recorded times at the target distance", t, func() {
		hist := settledRuns("h1", 1, 2, 3)
		hist[0].ElapsedTime = "1:34.0"
		hist[1].ElapsedTime = "1:33.5"
		hist[2].ElapsedTime = "1:35.0"
		batch := singleBatch(testTarget("h1", hist))

		Convey("When the block is extracted", func() {
			block, err := ext.Extract(ctx, batch)
			So(err, ShouldBeNil)

			Convey("Then last and best times come from parsed seconds", func() {
				So(block.Get(0, "last_race_time"), ShouldAlmostEqual, 94.0)
				So(block.Get(0, "best_time_at_distance"), ShouldAlmostEqual, 93.5)
				So(block.Get(0, "avg_time_last3"), ShouldAlmostEqual, (94.0+93.5+95.0)/3)
			})

			Convey("Then the index compares against the turf 1600m base of 94s", func() {
				So(block.Get(0, "time_index"), ShouldAlmostEqual, 100.0)
				So(block.Get(0, "time_deviation"), ShouldAlmostEqual, 0.0)
			})
		})
	})

	Convey("Given a horse whose rows carry no recorded time", t, func() {
		batch := singleBatch(testTarget("h2", settledRuns("h2", 4, 5)))
		block, err := ext.Extract(ctx, batch)
		So(err, ShouldBeNil)

		Convey("Then the time columns stay at zero instead of treating 0s as a race", func() {
			So(block.Get(0, "last_race_time"), ShouldEqual, 0)
			So(block.Get(0, "time_index"), ShouldEqual, 0)
			So(block.Get(0, "speed_figure"), ShouldEqual, 0)
		})
	})

	Convey("Given final-3F values on the history", t, func() {
		hist := settledRuns("h3", 1, 2)
		hist[0].Last3F = f64p(34.5)
		hist[0].Last3FRank = intp(1)
		hist[1].Last3F = f64p(35.1)
		hist[1].Last3FRank = intp(3)
		batch := singleBatch(testTarget("h3", hist))
		block, err := ext.Extract(ctx, batch)
		So(err, ShouldBeNil)

		Convey("Then the closing-speed columns are populated", func() {
			So(block.Get(0, "last_3f_time"), ShouldAlmostEqual, 34.5)
			So(block.Get(0, "best_last3f"), ShouldAlmostEqual, 34.5)
			So(block.Get(0, "last3f_improvement"), ShouldAlmostEqual, -0.6)
			So(block.Get(0, "last3f_rank"), ShouldEqual, 1)
			So(block.Get(0, "avg_last3f_rank"), ShouldEqual, 2)
		})
	})

	Convey("Given two entrants in the same race with different recent times", t, func() {
		fast := testTarget("h4", settledRuns("h4", 1))
		fast.HorseHistory[0].ElapsedTime = "1:33.0"
		slow := testTarget("h5", settledRuns("h5", 2))
		slow.HorseHistory[0].ElapsedTime = "1:35.0"
		batch := &Batch{AsOf: testAsOf, Targets: []Target{fast, slow}}

		block, err := ext.Extract(ctx, batch)
		So(err, ShouldBeNil)

		Convey("Then the faster horse scores above 100 and the slower below", func() {
			So(block.Get(0, "relative_time_score"), ShouldBeGreaterThan, 100)
			So(block.Get(1, "relative_time_score"), ShouldBeLessThan, 100)
		})
	})
}
