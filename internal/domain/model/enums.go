package model

import "time"

// TrackType is the racing surface.
type TrackType string

const (
	Turf TrackType = "turf"
	Dirt TrackType = "dirt"
)

// TrackCondition is the official going report for the surface.
type TrackCondition string

const (
	Firm     TrackCondition = "firm"
	Good     TrackCondition = "good"
	Yielding TrackCondition = "yielding"
	Soft     TrackCondition = "soft"
	Heavy    TrackCondition = "heavy"
)

// ConditionCode returns the ordinal going code. Firm and good share the top
// code; unknown conditions degrade to it rather than failing.
func ConditionCode(c TrackCondition) float64 {
	switch c {
	case Firm, Good:
		return 1
	case Yielding:
		return 2
	case Soft:
		return 3
	case Heavy:
		return 4
	default:
		return 1
	}
}

// Sex is the horse's recorded sex.
type Sex string

const (
	Male    Sex = "male"
	Female  Sex = "female"
	Gelding Sex = "gelding"
)

// SexCode encodes sex as an ordinal; unknown values map to 0.
func SexCode(s Sex) float64 {
	switch s {
	case Male:
		return 1
	case Female:
		return 2
	case Gelding:
		return 3
	default:
		return 0
	}
}

// Season is a meteorological quarter: winter=1 (Dec-Feb), spring=2 (Mar-May),
// summer=3 (Jun-Aug), autumn=4 (Sep-Nov).
type Season int

const (
	Winter Season = 1
	Spring Season = 2
	Summer Season = 3
	Autumn Season = 4
)

// SeasonOf maps a date onto its Season.
func SeasonOf(t time.Time) Season {
	m := int(t.Month())
	return Season(m%12/3 + 1)
}
