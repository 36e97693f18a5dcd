package history_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/history"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"

	. "github.com/smartystreets/goconvey/convey"
)

func day(offset int) time.Time {
	return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func row(id string, date time.Time) model.ParticipationRecord {
	return model.ParticipationRecord{RaceID: model.RaceID(id), HorseID: "h1", RaceDate: date}
}

type stubAccessor struct {
	rows []model.ParticipationRecord
}

func (s *stubAccessor) HorseHistory(_ context.Context, _ model.HorseID, _ time.Time) ([]model.ParticipationRecord, error) {
	return s.rows, nil
}

func (s *stubAccessor) JockeyHistory(_ context.Context, _ model.JockeyID, _ time.Time) ([]model.ParticipationRecord, error) {
	return s.rows, nil
}

func (s *stubAccessor) TrainerHistory(_ context.Context, _ model.TrainerID, _ time.Time) ([]model.ParticipationRecord, error) {
	return s.rows, nil
}

func TestVerify(t *testing.T) {
	Convey("Given an as-of date", t, func() {
		asOf := day(0)

		Convey("When all rows are strictly before it, newest first", func() {
			rows := []model.ParticipationRecord{
				row("r3", day(-7)), row("r2", day(-30)), row("r1", day(-90)),
			}
			So(history.Verify(rows, asOf), ShouldBeNil)
		})

		Convey("When a row is exactly at the as-of date", func() {
			rows := []model.ParticipationRecord{row("r3", day(0))}
			So(errors.Is(history.Verify(rows, asOf), history.ErrLeakage), ShouldBeTrue)
		})

		Convey("When a row is after the as-of date", func() {
			rows := []model.ParticipationRecord{row("r3", day(14))}
			So(errors.Is(history.Verify(rows, asOf), history.ErrLeakage), ShouldBeTrue)
		})

		Convey("When rows are out of order", func() {
			rows := []model.ParticipationRecord{row("r1", day(-90)), row("r2", day(-7))}
			So(errors.Is(history.Verify(rows, asOf), history.ErrUnordered), ShouldBeTrue)
		})

		Convey("When history is empty", func() {
			So(history.Verify(nil, asOf), ShouldBeNil)
		})
	})
}

func TestGuard(t *testing.T) {
	Convey("Given a guarded accessor", t, func() {
		asOf := day(0)

		Convey("When the backend leaks a future row", func() {
			g := history.NewGuard(&stubAccessor{rows: []model.ParticipationRecord{row("rX", day(3))}})

			_, err := g.HorseHistory(context.Background(), "h1", asOf)
			So(errors.Is(err, history.ErrLeakage), ShouldBeTrue)

			_, err = g.JockeyHistory(context.Background(), "j1", asOf)
			So(errors.Is(err, history.ErrLeakage), ShouldBeTrue)

			_, err = g.TrainerHistory(context.Background(), "t1", asOf)
			So(errors.Is(err, history.ErrLeakage), ShouldBeTrue)
		})

		Convey("When the backend behaves", func() {
			g := history.NewGuard(&stubAccessor{rows: []model.ParticipationRecord{row("r1", day(-10))}})
			rows, err := g.HorseHistory(context.Background(), "h1", asOf)
			So(err, ShouldBeNil)
			So(rows, ShouldHaveLength, 1)
		})
	})
}

func TestWindow(t *testing.T) {
	Convey("Given a five-row history", t, func() {
		rows := []model.ParticipationRecord{
			row("r5", day(-1)), row("r4", day(-2)), row("r3", day(-3)),
			row("r2", day(-4)), row("r1", day(-5)),
		}

		Convey("Then a smaller window takes the most recent rows", func() {
			w := history.Window(rows, 3)
			So(w, ShouldHaveLength, 3)
			So(w[0].RaceID, ShouldEqual, model.RaceID("r5"))
		})

		Convey("Then an oversized window silently uses everything", func() {
			So(history.Window(rows, 10), ShouldHaveLength, 5)
		})

		Convey("Then a non-positive window uses everything", func() {
			So(history.Window(rows, 0), ShouldHaveLength, 5)
		})
	})
}

func TestDaysSinceLastStart(t *testing.T) {
	Convey("Given a history", t, func() {
		So(history.DaysSinceLastStart(nil, day(0)), ShouldEqual, 0)
		rows := []model.ParticipationRecord{row("r1", day(-21))}
		So(history.DaysSinceLastStart(rows, day(0)), ShouldEqual, 21)
	})
}
