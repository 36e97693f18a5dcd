// Package model contains the racing domain records shared between layers.
package model

import "time"

// Entity identifiers. Stable, created on first appearance in history and
// never deleted.
type (
	RaceID    string
	HorseID   string
	JockeyID  string
	TrainerID string
)

// RaceRecord describes one race card. Immutable once published.
type RaceRecord struct {
	RaceID         RaceID
	RaceDate       time.Time
	Venue          string
	Distance       int // meters
	TrackType      TrackType
	TrackCondition TrackCondition
	ClassLabel     string
	FieldSize      int
}

// ParticipationRecord is one horse's start in one race. Race attributes are
// denormalized onto the row so history consumers never need a second lookup.
// FinishPosition, ElapsedTime and Last3F stay nil until the race settles.
type ParticipationRecord struct {
	RaceID    RaceID
	RaceDate  time.Time
	HorseID   HorseID
	JockeyID  JockeyID
	TrainerID TrainerID

	// Race context.
	Venue          string
	Distance       int
	TrackType      TrackType
	TrackCondition TrackCondition
	ClassLabel     string
	FieldSize      int

	// Entry attributes.
	PostPosition    int
	WeightCarried   float64 // jockey + gear, kg
	HorseAge        int
	HorseSex        Sex
	HorseWeight     float64 // body weight, kg; 0 when unknown
	HorseWeightDiff float64

	// Settlement results, nil before the race settles.
	FinishPosition *int
	ElapsedTime    string // stored raw, e.g. "1:33.5" or "83.4"
	Last3F         *float64
	Last3FRank     *int
	PrizeMoney     float64

	// Market data, nil when no market exists yet.
	Odds       *float64
	Popularity *int
}

// Finished reports whether the row carries a settled finishing position.
func (p *ParticipationRecord) Finished() bool { return p.FinishPosition != nil }

// Finish returns the finishing position, or 0 for unsettled rows.
func (p *ParticipationRecord) Finish() int {
	if p.FinishPosition == nil {
		return 0
	}
	return *p.FinishPosition
}

// PedigreeRecord is static reference data, looked up rather than computed.
type PedigreeRecord struct {
	HorseID         HorseID
	SireID          string
	SireName        string
	DamSireID       string
	DamSireName     string
	DamProgenyCount int
	HasInbreeding   bool
	IsImportedSire  bool
}

// SireStats are externally supplied, point-in-time-safe progeny aggregates
// for a sire or dam-sire.
type SireStats struct {
	ProgenyCount int
	WinRate      float64
	PlaceRate    float64
	ShowRate     float64
	AvgEarnings  float64
}
