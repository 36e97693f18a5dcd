package model_test

import (
	"testing"
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBucketForDistance(t *testing.T) {
	Convey("Given the fixed distance buckets", t, func() {
		Convey("Then boundaries should be exact", func() {
			So(model.BucketForDistance(1000), ShouldEqual, model.SprintBucket)
			So(model.BucketForDistance(1400), ShouldEqual, model.SprintBucket)
			So(model.BucketForDistance(1401), ShouldEqual, model.MileBucket)
			So(model.BucketForDistance(1800), ShouldEqual, model.MileBucket)
			So(model.BucketForDistance(1801), ShouldEqual, model.IntermediateBucket)
			So(model.BucketForDistance(2200), ShouldEqual, model.IntermediateBucket)
			So(model.BucketForDistance(2201), ShouldEqual, model.LongBucket)
			So(model.BucketForDistance(3600), ShouldEqual, model.LongBucket)
		})

		Convey("Then bucketing should be total and exclusive over [0, 10000]", func() {
			for d := 0; d <= 10000; d += 50 {
				b := model.BucketForDistance(d)
				So(b, ShouldBeBetweenOrEqual, model.SprintBucket, model.LongBucket)
			}
		})
	})
}

func TestPostAndWeightBuckets(t *testing.T) {
	Convey("Given post position buckets", t, func() {
		So(model.BucketForPost(1), ShouldEqual, model.InnerPost)
		So(model.BucketForPost(4), ShouldEqual, model.InnerPost)
		So(model.BucketForPost(5), ShouldEqual, model.MiddlePost)
		So(model.BucketForPost(12), ShouldEqual, model.MiddlePost)
		So(model.BucketForPost(13), ShouldEqual, model.OuterPost)
	})

	Convey("Given carried weight buckets", t, func() {
		So(model.BucketForWeight(53.5), ShouldEqual, model.LightWeight)
		So(model.BucketForWeight(54), ShouldEqual, model.LightWeight)
		So(model.BucketForWeight(55), ShouldEqual, model.StandardWeight)
		So(model.BucketForWeight(57), ShouldEqual, model.HeavyWeight)
		So(model.BucketForWeight(59), ShouldEqual, model.VeryHeavyWeight)
	})
}

func TestSeasonOf(t *testing.T) {
	Convey("Given meteorological seasons", t, func() {
		date := func(m time.Month) time.Time {
			return time.Date(2024, m, 15, 0, 0, 0, 0, time.UTC)
		}
		So(model.SeasonOf(date(time.December)), ShouldEqual, model.Winter)
		So(model.SeasonOf(date(time.January)), ShouldEqual, model.Winter)
		So(model.SeasonOf(date(time.February)), ShouldEqual, model.Winter)
		So(model.SeasonOf(date(time.March)), ShouldEqual, model.Spring)
		So(model.SeasonOf(date(time.May)), ShouldEqual, model.Spring)
		So(model.SeasonOf(date(time.June)), ShouldEqual, model.Summer)
		So(model.SeasonOf(date(time.August)), ShouldEqual, model.Summer)
		So(model.SeasonOf(date(time.September)), ShouldEqual, model.Autumn)
		So(model.SeasonOf(date(time.November)), ShouldEqual, model.Autumn)
	})
}

func TestParticipationRecord(t *testing.T) {
	Convey("Given a participation record", t, func() {
		p := model.ParticipationRecord{RaceID: "r1", HorseID: "h1"}

		Convey("When the race has not settled", func() {
			So(p.Finished(), ShouldBeFalse)
			So(p.Finish(), ShouldEqual, 0)
		})

		Convey("When a finish position is recorded", func() {
			pos := 3
			p.FinishPosition = &pos
			So(p.Finished(), ShouldBeTrue)
			So(p.Finish(), ShouldEqual, 3)
		})
	})
}

func TestCodes(t *testing.T) {
	Convey("Given ordinal encodings", t, func() {
		So(model.ConditionCode(model.Firm), ShouldEqual, 1)
		So(model.ConditionCode(model.Good), ShouldEqual, 1)
		So(model.ConditionCode(model.Yielding), ShouldEqual, 2)
		So(model.ConditionCode(model.Soft), ShouldEqual, 3)
		So(model.ConditionCode(model.Heavy), ShouldEqual, 4)
		So(model.ConditionCode(model.TrackCondition("slushy")), ShouldEqual, 1)

		So(model.SexCode(model.Male), ShouldEqual, 1)
		So(model.SexCode(model.Female), ShouldEqual, 2)
		So(model.SexCode(model.Gelding), ShouldEqual, 3)
		So(model.SexCode(model.Sex("")), ShouldEqual, 0)
	})
}
