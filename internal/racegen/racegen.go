// Package racegen produces deterministic sample race cards and histories
// for local runs and demos. The same seed always yields the same data, so
// generated matrices stay byte-identical across runs.
package racegen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
	"github.com/yoshikawa-river/keiba-features/internal/pipeline"
)

var (
	venues     = []string{"tokyo", "nakayama", "hanshin", "kyoto", "chukyo"}
	distances  = []int{1200, 1400, 1600, 1800, 2000, 2200, 2400}
	classes    = []string{"maiden", "1win", "2win", "3win", "open", "G3", "G2", "G1"}
	conditions = []model.TrackCondition{model.Firm, model.Good, model.Good, model.Yielding, model.Soft}
	sires      = []string{"Deep Impact", "King Kamehameha", "Stay Gold", "Heart's Cry", "Lord Kanaloa", "Kitasan Black"}
	damSires   = []string{"Storm Cat", "Sunday Silence", "Mejiro McQueen", "Tony Bin", "King Kamehameha"}
)

// Generator builds reproducible sample data.
type Generator struct {
	rng *rand.Rand
}

// New seeds a generator.
func New(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

// Card builds a run input of the given shape: races on the as-of date,
// each with fieldSize entries.
func (g *Generator) Card(asOf time.Time, races, fieldSize int) *pipeline.Input {
	in := &pipeline.Input{AsOf: asOf}
	for r := 0; r < races; r++ {
		race := model.RaceRecord{
			RaceID:         model.RaceID(fmt.Sprintf("race-%03d", r+1)),
			RaceDate:       asOf,
			Venue:          venues[g.rng.Intn(len(venues))],
			Distance:       distances[g.rng.Intn(len(distances))],
			TrackType:      g.trackType(),
			TrackCondition: conditions[g.rng.Intn(len(conditions))],
			ClassLabel:     classes[g.rng.Intn(len(classes))],
			FieldSize:      fieldSize,
		}
		in.Races = append(in.Races, race)
		for p := 1; p <= fieldSize; p++ {
			odds := 1.5 + g.rng.Float64()*48
			in.Entries = append(in.Entries, model.ParticipationRecord{
				RaceID:          race.RaceID,
				RaceDate:        asOf,
				HorseID:         model.HorseID(fmt.Sprintf("horse-%03d-%02d", r+1, p)),
				JockeyID:        model.JockeyID(fmt.Sprintf("jockey-%02d", g.rng.Intn(30)+1)),
				TrainerID:       model.TrainerID(fmt.Sprintf("trainer-%02d", g.rng.Intn(20)+1)),
				Venue:           race.Venue,
				Distance:        race.Distance,
				TrackType:       race.TrackType,
				TrackCondition:  race.TrackCondition,
				ClassLabel:      race.ClassLabel,
				FieldSize:       fieldSize,
				PostPosition:    p,
				WeightCarried:   53 + float64(g.rng.Intn(6)),
				HorseAge:        3 + g.rng.Intn(4),
				HorseSex:        g.sex(),
				HorseWeight:     430 + float64(g.rng.Intn(90)),
				HorseWeightDiff: float64(g.rng.Intn(17) - 8),
				Odds:            &odds,
			})
		}
	}
	return in
}

// History builds past starts for every entry in the card, all strictly
// before the as-of date. startsPerHorse varies by up to half so debut-like
// thin histories occur too.
func (g *Generator) History(in *pipeline.Input, startsPerHorse int) []model.ParticipationRecord {
	var rows []model.ParticipationRecord
	for _, e := range in.Entries {
		n := startsPerHorse/2 + g.rng.Intn(startsPerHorse/2+1)
		for s := 1; s <= n; s++ {
			finish := g.rng.Intn(12) + 1
			distance := distances[g.rng.Intn(len(distances))]
			elapsed := float64(distance)/16.5 + g.rng.Float64()*6
			last3f := 33.5 + g.rng.Float64()*4
			last3fRank := g.rng.Intn(8) + 1
			prize := 0.0
			if finish == 1 {
				prize = float64(300 + g.rng.Intn(1200))
			}
			rows = append(rows, model.ParticipationRecord{
				RaceID:         model.RaceID(fmt.Sprintf("%s-past-%02d", e.HorseID, s)),
				RaceDate:       in.AsOf.AddDate(0, 0, -21*s-g.rng.Intn(14)),
				HorseID:        e.HorseID,
				JockeyID:       e.JockeyID,
				TrainerID:      e.TrainerID,
				Venue:          venues[g.rng.Intn(len(venues))],
				Distance:       distance,
				TrackType:      g.trackType(),
				TrackCondition: conditions[g.rng.Intn(len(conditions))],
				ClassLabel:     classes[g.rng.Intn(len(classes))],
				FieldSize:      8 + g.rng.Intn(10),
				PostPosition:   g.rng.Intn(16) + 1,
				WeightCarried:  53 + float64(g.rng.Intn(6)),
				FinishPosition: &finish,
				ElapsedTime:    fmt.Sprintf("%.1f", elapsed),
				Last3F:         &last3f,
				Last3FRank:     &last3fRank,
				PrizeMoney:     prize,
			})
		}
	}
	return rows
}

// Pedigrees assigns a sire and dam-sire to every horse in the card, plus a
// stats table covering the sires used.
func (g *Generator) Pedigrees(in *pipeline.Input) (map[model.HorseID]model.PedigreeRecord, map[string]model.SireStats) {
	peds := make(map[model.HorseID]model.PedigreeRecord)
	stats := make(map[string]model.SireStats)
	for _, e := range in.Entries {
		sire := sires[g.rng.Intn(len(sires))]
		damSire := damSires[g.rng.Intn(len(damSires))]
		peds[e.HorseID] = model.PedigreeRecord{
			HorseID:         e.HorseID,
			SireName:        sire,
			DamSireName:     damSire,
			DamProgenyCount: g.rng.Intn(12),
			HasInbreeding:   g.rng.Intn(5) == 0,
			IsImportedSire:  g.rng.Intn(4) == 0,
		}
		for _, name := range []string{sire, damSire} {
			if _, ok := stats[name]; !ok {
				stats[name] = model.SireStats{
					ProgenyCount: 50 + g.rng.Intn(400),
					WinRate:      0.05 + g.rng.Float64()*0.1,
					PlaceRate:    0.12 + g.rng.Float64()*0.15,
					ShowRate:     0.2 + g.rng.Float64()*0.2,
					AvgEarnings:  float64(200 + g.rng.Intn(800)),
				}
			}
		}
	}
	return peds, stats
}

func (g *Generator) trackType() model.TrackType {
	if g.rng.Intn(4) == 0 {
		return model.Dirt
	}
	return model.Turf
}

func (g *Generator) sex() model.Sex {
	switch g.rng.Intn(3) {
	case 0:
		return model.Female
	case 1:
		return model.Gelding
	default:
		return model.Male
	}
}
