package extractors

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

func TestNumericHelpers(t *testing.T) {
	Convey("Given empty inputs", t, func() {
		Convey("Then every helper degrades to zero, never NaN", func() {
			So(mean(nil), ShouldEqual, 0)
			So(median(nil), ShouldEqual, 0)
			So(stddev(nil), ShouldEqual, 0)
			So(minOf(nil), ShouldEqual, 0)
			So(maxOf(nil), ShouldEqual, 0)
			So(trendSlope(nil), ShouldEqual, 0)
			So(consistency(nil), ShouldEqual, 0)
			So(rate(0, 0), ShouldEqual, 0)
			So(streak(nil), ShouldEqual, 0)
		})
	})

	Convey("Given a most-recent-first finish sequence", t, func() {
		Convey("When recent finishes beat older ones", func() {
			Convey("Then the trend slope is positive", func() {
				So(trendSlope([]float64{1, 2, 3}), ShouldBeGreaterThan, 0)
			})
		})
		Convey("When recent finishes trail older ones", func() {
			Convey("Then the trend slope is negative", func() {
				So(trendSlope([]float64{5, 3, 1}), ShouldBeLessThan, 0)
			})
		})
		Convey("When the sequence is flat", func() {
			So(trendSlope([]float64{2, 2, 2}), ShouldEqual, 0)
		})
	})

	Convey("Given streak sequences", t, func() {
		So(streak([]float64{1, 1, 3}), ShouldEqual, 2)
		So(streak([]float64{5, 6, 2}), ShouldEqual, -2)
		So(streak([]float64{2, 1, 1}), ShouldEqual, 0)
	})

	Convey("Given finish positions 1,3,2", t, func() {
		wins, places, shows := winLossCounts([]float64{1, 3, 2})
		Convey("Then counts are cumulative by threshold", func() {
			So(wins, ShouldEqual, 1)
			So(places, ShouldEqual, 2)
			So(shows, ShouldEqual, 3)
		})
	})

	Convey("Given a history with an unsettled row", t, func() {
		rows := settledRuns("h1", 1, 2)
		rows[0].FinishPosition = nil
		Convey("Then finishes keeps only the settled ones", func() {
			So(finishes(rows), ShouldResemble, []float64{2})
		})
		Convey("Then winRateWhere skips it even when the predicate matches", func() {
			winRate, starts := winRateWhere(rows, func(*model.ParticipationRecord) bool { return true })
			So(starts, ShouldEqual, 1)
			So(winRate, ShouldEqual, 0)
		})
	})
}
