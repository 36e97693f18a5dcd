package extractors

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/yoshikawa-river/keiba-features/internal/domain/lookup"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

func TestPedigreeExtractor(t *testing.T) {
	ext := NewPedigree(lookup.Defaults())
	ctx := context.Background()

	Convey("Given a horse with a curated sire and dam-sire pairing", t, func() {
		target := testTarget("h1", nil)
		target.Pedigree = &model.PedigreeRecord{
			HorseID:         "h1",
			SireName:        "Deep Impact",
			DamSireName:     "Storm Cat",
			DamProgenyCount: 4,
		}
		target.SireStats = &model.SireStats{ProgenyCount: 120, WinRate: 0.12, PlaceRate: 0.22}
		batch := singleBatch(target)

		Convey("When the block is extracted", func() {
			block, err := ext.Extract(ctx, batch)
			So(err, ShouldBeNil)

			Convey("Then the curated nick scores 1.0", func() {
				So(block.Get(0, "nick_score"), ShouldEqual, 1.0)
			})
			Convey("Then the sire aggregates pass through", func() {
				So(block.Get(0, "sire_win_rate"), ShouldAlmostEqual, 0.12)
				So(block.Get(0, "sire_progeny_count"), ShouldEqual, 120)
			})
			Convey("Then dam vitality scales the progeny count, capped at 1", func() {
				So(block.Get(0, "dam_vitality"), ShouldAlmostEqual, 0.4)
			})
		})
	})

	Convey("Given a horse without a pedigree record", t, func() {
		batch := singleBatch(testTarget("h2", nil))
		block, err := ext.Extract(ctx, batch)
		So(err, ShouldBeNil)

		Convey("Then the neutral defaults stand", func() {
			So(block.Get(0, "nick_score"), ShouldEqual, 0.5)
			So(block.Get(0, "bloodline_match_score"), ShouldEqual, 0.5)
			So(block.Get(0, "distance_aptitude"), ShouldEqual, 0.5)
			So(block.Get(0, "sire_win_rate"), ShouldEqual, 0)
		})
	})

	Convey("Given an uncurated sire that doubles as the dam-sire", t, func() {
		target := testTarget("h3", nil)
		target.Pedigree = &model.PedigreeRecord{
			HorseID:     "h3",
			SireName:    "Unlisted Star",
			DamSireName: "Unlisted Star",
		}
		block, err := ext.Extract(ctx, singleBatch(target))
		So(err, ShouldBeNil)

		Convey("Then the nick penalizes the repeated line", func() {
			So(block.Get(0, "nick_score"), ShouldAlmostEqual, 0.2)
		})
	})
}
