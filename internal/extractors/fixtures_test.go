package extractors

import (
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

var testAsOf = time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

func intp(v int) *int { return &v }

func f64p(v float64) *float64 { return &v }

// settledRuns builds a most-recent-first settled history with the given
// finishing positions. Row i ran i+1 weeks before the shared as-of date.
func settledRuns(horse model.HorseID, positions ...int) []model.ParticipationRecord {
	rows := make([]model.ParticipationRecord, len(positions))
	for i, pos := range positions {
		prize := 0.0
		if pos == 1 {
			prize = 500
		}
		rows[i] = model.ParticipationRecord{
			RaceID:         model.RaceID("past-" + string(rune('a'+i))),
			RaceDate:       testAsOf.AddDate(0, 0, -7*(i+1)),
			HorseID:        horse,
			JockeyID:       "j1",
			TrainerID:      "t1",
			Venue:          "tokyo",
			Distance:       1600,
			TrackType:      model.Turf,
			TrackCondition: model.Good,
			ClassLabel:     "open",
			FieldSize:      12,
			PostPosition:   3,
			WeightCarried:  56,
			FinishPosition: intp(pos),
			PrizeMoney:     prize,
		}
	}
	return rows
}

func testRace() model.RaceRecord {
	return model.RaceRecord{
		RaceID:         "target",
		RaceDate:       testAsOf,
		Venue:          "tokyo",
		Distance:       1600,
		TrackType:      model.Turf,
		TrackCondition: model.Good,
		ClassLabel:     "open",
		FieldSize:      12,
	}
}

func testTarget(horse model.HorseID, hist []model.ParticipationRecord) Target {
	race := testRace()
	return Target{
		Race: race,
		Entry: model.ParticipationRecord{
			RaceID:         race.RaceID,
			RaceDate:       race.RaceDate,
			HorseID:        horse,
			JockeyID:       "j1",
			TrainerID:      "t1",
			Venue:          race.Venue,
			Distance:       race.Distance,
			TrackType:      race.TrackType,
			TrackCondition: race.TrackCondition,
			ClassLabel:     race.ClassLabel,
			FieldSize:      race.FieldSize,
			PostPosition:   3,
			WeightCarried:  56,
			HorseAge:       4,
			HorseSex:       model.Male,
			HorseWeight:    480,
		},
		HorseHistory:  hist,
		JockeyHistory: hist,
	}
}

func singleBatch(t Target) *Batch {
	return &Batch{AsOf: testAsOf, Targets: []Target{t}}
}
