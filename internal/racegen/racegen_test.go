package racegen_test

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/yoshikawa-river/keiba-features/internal/racegen"
)

func TestGenerator(t *testing.T) {
	asOf := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	Convey("Given two generators with the same seed", t, func() {
		a := racegen.New(7)
		b := racegen.New(7)

		Convey("Then they produce identical cards and histories", func() {
			cardA := a.Card(asOf, 2, 8)
			cardB := b.Card(asOf, 2, 8)
			So(cardB, ShouldResemble, cardA)
			So(a.History(cardA, 6), ShouldResemble, b.History(cardB, 6))
		})
	})

	Convey("Given a generated card", t, func() {
		g := racegen.New(42)
		in := g.Card(asOf, 3, 10)

		Convey("Then it has the requested shape", func() {
			So(in.Races, ShouldHaveLength, 3)
			So(in.Entries, ShouldHaveLength, 30)
			So(in.AsOf, ShouldEqual, asOf)
		})

		Convey("Then every generated history row predates the as-of date", func() {
			for _, row := range g.History(in, 6) {
				So(row.RaceDate.Before(asOf), ShouldBeTrue)
				So(row.FinishPosition, ShouldNotBeNil)
			}
		})

		Convey("Then every horse in the card gets a pedigree", func() {
			peds, stats := g.Pedigrees(in)
			So(peds, ShouldHaveLength, 30)
			So(len(stats), ShouldBeGreaterThan, 0)
			for _, p := range peds {
				So(p.SireName, ShouldNotBeEmpty)
				So(stats, ShouldContainKey, p.SireName)
			}
		})
	})
}
