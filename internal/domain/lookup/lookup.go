// Package lookup holds the static reference tables the extractors encode
// against: venue traits, class ranks, base times, bloodline families and
// nick pairings.
//
// The tables are injectable configuration, not hard-coded constants: a
// feature-vocabulary version pins one exact table set, because changing any
// entry silently changes feature semantics. Defaults() reproduces the
// curated values shipped with the project.
package lookup

import (
	"sort"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// VenueTraits describes the static characteristics of one racecourse.
type VenueTraits struct {
	Code  int    `koanf:"code"`
	Turn  string `koanf:"turn"`  // "left" or "right"
	Scale string `koanf:"scale"` // "large", "medium" or "small"
}

// NickPair is one curated sire × dam-sire compatibility entry.
type NickPair struct {
	Sire    string  `koanf:"sire"`
	DamSire string  `koanf:"dam_sire"`
	Score   float64 `koanf:"score"`
}

// FamilyPair is a bloodline family pairing with above-neutral affinity.
type FamilyPair struct {
	SireFamily    string `koanf:"sire_family"`
	DamSireFamily string `koanf:"dam_sire_family"`
}

// Tables bundles every reference table consumed by the extractors.
type Tables struct {
	Venues     map[string]VenueTraits `koanf:"venues"`
	ClassRanks map[string]float64     `koanf:"class_ranks"`

	// BaseTimes maps track type -> distance -> reference seconds.
	BaseTimes map[model.TrackType]map[int]float64 `koanf:"base_times"`

	// TrackCorrections scales speed figures per surface.
	TrackCorrections map[model.TrackType]float64 `koanf:"track_corrections"`

	// ConditionCorrections scales elapsed times per going.
	ConditionCorrections map[model.TrackCondition]float64 `koanf:"condition_corrections"`

	// Bloodlines maps a sire name to its family; FamilyCodes encodes the
	// family ordinally, with "other" as the 0 fallback.
	Bloodlines  map[string]string  `koanf:"bloodlines"`
	FamilyCodes map[string]float64 `koanf:"family_codes"`

	// Nicks are the curated sire × dam-sire scores; FamilyAffinities the
	// family-level pairings scored 0.8.
	Nicks            []NickPair   `koanf:"nicks"`
	FamilyAffinities []FamilyPair `koanf:"family_affinities"`

	// DistanceAptitude maps a distance bucket name to the sires suited
	// to it.
	DistanceAptitude map[string][]string `koanf:"distance_aptitude"`
}

// ClassRank returns the ordinal rank for a class label; unknown labels
// degrade to the lowest rank instead of failing.
func (t *Tables) ClassRank(label string) float64 {
	if r, ok := t.ClassRanks[label]; ok {
		return r
	}
	return 1
}

// IsGraded reports whether the class label is a graded race (G1-G3).
func (t *Tables) IsGraded(label string) bool {
	return label == "G1" || label == "G2" || label == "G3"
}

// Venue returns the traits for a venue and whether it is known.
func (t *Tables) Venue(name string) (VenueTraits, bool) {
	v, ok := t.Venues[name]
	return v, ok
}

// BaseTime returns the reference time in seconds for a distance on a
// surface, linearly interpolated between table entries and clamped at the
// extremes. Unknown surfaces fall back to turf.
func (t *Tables) BaseTime(track model.TrackType, distance int) float64 {
	times, ok := t.BaseTimes[track]
	if !ok {
		times, ok = t.BaseTimes[model.Turf]
		if !ok {
			return 0
		}
	}
	if sec, ok := times[distance]; ok {
		return sec
	}
	distances := make([]int, 0, len(times))
	for d := range times {
		distances = append(distances, d)
	}
	sort.Ints(distances)
	if len(distances) == 0 {
		return 0
	}
	if distance < distances[0] {
		return times[distances[0]]
	}
	if distance > distances[len(distances)-1] {
		return times[distances[len(distances)-1]]
	}
	for i := 0; i < len(distances)-1; i++ {
		d1, d2 := distances[i], distances[i+1]
		if d1 < distance && distance < d2 {
			t1, t2 := times[d1], times[d2]
			ratio := float64(distance-d1) / float64(d2-d1)
			return t1 + ratio*(t2-t1)
		}
	}
	return times[distances[len(distances)-1]]
}

// TrackCorrection returns the speed-figure correction for a surface,
// defaulting to 1.
func (t *Tables) TrackCorrection(track model.TrackType) float64 {
	if c, ok := t.TrackCorrections[track]; ok {
		return c
	}
	return 1
}

// ConditionCorrection returns the going correction factor, defaulting to 1.
func (t *Tables) ConditionCorrection(c model.TrackCondition) float64 {
	if f, ok := t.ConditionCorrections[c]; ok {
		return f
	}
	return 1
}

// Family resolves a sire name to its bloodline family, "other" when the
// sire is not in the table.
func (t *Tables) Family(sireName string) string {
	if f, ok := t.Bloodlines[sireName]; ok {
		return f
	}
	return "other"
}

// FamilyCode encodes a family name ordinally; unknown families map to 0.
func (t *Tables) FamilyCode(family string) float64 {
	return t.FamilyCodes[family]
}

// NickScore returns the curated sire × dam-sire compatibility. Unlisted
// pairings are deliberately neutral at 0.5; a sire doubling as its own
// dam-sire scores 0.2.
func (t *Tables) NickScore(sire, damSire string) float64 {
	for _, n := range t.Nicks {
		if n.Sire == sire && n.DamSire == damSire {
			return n.Score
		}
	}
	if sire != "" && sire == damSire {
		return 0.2
	}
	return 0.5
}

// FamilyAffinity scores the family-level pairing: identical known families
// 1.0, curated pairings 0.8, everything else neutral 0.5.
func (t *Tables) FamilyAffinity(sireFamily, damSireFamily string) float64 {
	if sireFamily == damSireFamily && sireFamily != "other" {
		return 1.0
	}
	for _, p := range t.FamilyAffinities {
		if p.SireFamily == sireFamily && p.DamSireFamily == damSireFamily {
			return 0.8
		}
	}
	return 0.5
}

// AptitudeScore reports how suited a sire is to a distance bucket: 1.0 when
// listed for the bucket, neutral 0.5 otherwise.
func (t *Tables) AptitudeScore(sireName string, bucket model.DistanceBucket) float64 {
	for _, s := range t.DistanceAptitude[bucket.String()] {
		if s == sireName {
			return 1.0
		}
	}
	return 0.5
}
