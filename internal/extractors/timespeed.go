package extractors

import (
	"context"
	"strconv"
	"strings"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
	"github.com/yoshikawa-river/keiba-features/internal/domain/lookup"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// ParseElapsed converts a stored elapsed-time string to seconds. Accepted
// forms are "m:ss.d" (e.g. "1:33.5" -> 93.5) and bare seconds ("83.4").
// Empty or unparseable strings yield 0.
func ParseElapsed(s string) float64 {
	if s == "" {
		return 0
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		minutes, err := strconv.Atoi(s[:i])
		if err != nil {
			return 0
		}
		seconds, err := strconv.ParseFloat(s[i+1:], 64)
		if err != nil {
			return 0
		}
		return float64(minutes)*60 + seconds
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// TimeSpeedExtractor derives elapsed-time and final-3F features: personal
// times, base-time indexes, corrected speed figures and field-relative
// closing speed. Rows without a recorded time are skipped, never treated
// as a zero-second race.
type TimeSpeedExtractor struct {
	tables   *lookup.Tables
	manifest feature.Manifest
}

// NewTimeSpeed builds the extractor against a table set.
func NewTimeSpeed(tables *lookup.Tables) *TimeSpeedExtractor {
	columns := []string{
		"last_race_time", "avg_time_last3", "avg_time_last5",
		"best_time_at_distance", "time_index", "speed_figure",
		"time_deviation", "normalized_time", "track_adjusted_time",
		"relative_time_score",
		"last_3f_time", "avg_last3f_last3", "avg_last3f_last5",
		"best_last3f", "last3f_rank", "avg_last3f_rank",
		"last3f_improvement", "last3f_consistency", "relative_last3f",
		"last3f_percentile",
	}
	return &TimeSpeedExtractor{
		tables:   tables,
		manifest: feature.MustManifest("timespeed", columns, nil),
	}
}

func (e *TimeSpeedExtractor) Name() string               { return "timespeed" }
func (e *TimeSpeedExtractor) Phase() Phase               { return Phase1 }
func (e *TimeSpeedExtractor) Manifest() feature.Manifest { return e.manifest }
func (e *TimeSpeedExtractor) Requires() []string         { return nil }

// timedRow is one history row with a parsed, non-zero elapsed time.
type timedRow struct {
	seconds   float64
	distance  int
	track     model.TrackType
	condition model.TrackCondition
}

func timedRows(rows []model.ParticipationRecord) []timedRow {
	out := make([]timedRow, 0, len(rows))
	for i := range rows {
		sec := ParseElapsed(rows[i].ElapsedTime)
		if sec <= 0 {
			continue
		}
		out = append(out, timedRow{
			seconds:   sec,
			distance:  rows[i].Distance,
			track:     rows[i].TrackType,
			condition: rows[i].TrackCondition,
		})
	}
	return out
}

func last3fValues(rows []model.ParticipationRecord) (times []float64, ranks []float64) {
	for i := range rows {
		if rows[i].Last3F != nil && *rows[i].Last3F > 0 {
			times = append(times, *rows[i].Last3F)
		}
		if rows[i].Last3FRank != nil {
			ranks = append(ranks, float64(*rows[i].Last3FRank))
		}
	}
	return times, ranks
}

func (e *TimeSpeedExtractor) Extract(ctx context.Context, batch *Batch) (*feature.Block, error) {
	block := feature.NewBlock(e.manifest, len(batch.Targets))

	// avg5 per row feeds the field-relative scores below.
	avgTime5 := make([]float64, len(batch.Targets))
	avg3f5 := make([]float64, len(batch.Targets))

	for i := range batch.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := &batch.Targets[i]
		timed := timedRows(t.HorseHistory)
		cells := map[string]float64{}

		if len(timed) > 0 {
			lastTime := timed[0].seconds
			cells["last_race_time"] = lastTime

			times := make([]float64, len(timed))
			for j, r := range timed {
				times[j] = r.seconds
			}
			cells["avg_time_last3"] = mean(lastN(times, 3))
			avgTime5[i] = mean(lastN(times, 5))
			cells["avg_time_last5"] = avgTime5[i]

			var atDistance []float64
			for _, r := range timed {
				if r.distance == t.Race.Distance {
					atDistance = append(atDistance, r.seconds)
				}
			}
			cells["best_time_at_distance"] = minOf(atDistance)

			base := e.tables.BaseTime(t.Race.TrackType, t.Race.Distance)
			if base > 0 {
				cells["time_index"] = base / lastTime * 100
				cells["time_deviation"] = lastTime - base
			}

			if len(timed) >= 3 {
				var figures []float64
				for _, r := range lastNTimed(timed, 5) {
					figures = append(figures,
						float64(r.distance)/r.seconds*e.tables.TrackCorrection(r.track))
				}
				cells["speed_figure"] = mean(figures)
			}

			var normalized, adjusted []float64
			for _, r := range lastNTimed(timed, 5) {
				if r.distance > 0 {
					normalized = append(normalized, r.seconds*1600/float64(r.distance))
				}
				adjusted = append(adjusted, r.seconds*e.tables.ConditionCorrection(r.condition))
			}
			cells["normalized_time"] = mean(normalized)
			cells["track_adjusted_time"] = mean(adjusted)
		}

		times3f, ranks3f := last3fValues(t.HorseHistory)
		if len(times3f) > 0 {
			cells["last_3f_time"] = times3f[0]
			cells["avg_last3f_last3"] = mean(lastN(times3f, 3))
			avg3f5[i] = mean(lastN(times3f, 5))
			cells["avg_last3f_last5"] = avg3f5[i]
			cells["best_last3f"] = minOf(times3f)

			if len(times3f) >= 2 {
				// Closing-speed change against the previous start; faster
				// reads negative.
				cells["last3f_improvement"] = times3f[0] - times3f[1]
			}
			cells["last3f_consistency"] = consistency(lastN(times3f, 5))

			if len(times3f) >= 10 {
				slower := 0
				for _, v := range times3f {
					if v > times3f[0] {
						slower++
					}
				}
				cells["last3f_percentile"] = rate(slower, len(times3f)) * 100
			}
		}
		if len(ranks3f) > 0 {
			cells["last3f_rank"] = ranks3f[0]
			cells["avg_last3f_rank"] = mean(lastN(ranks3f, 5))
		}
		if err := setAll(block, i, cells); err != nil {
			return nil, err
		}
	}

	// Field-relative scores compare each entrant's recent averages against
	// the rest of its race's field.
	for _, idxs := range raceGroups(batch.Targets) {
		if len(idxs) < 2 {
			continue
		}
		var fieldTimes, field3f []float64
		for _, i := range idxs {
			if avgTime5[i] > 0 {
				fieldTimes = append(fieldTimes, avgTime5[i])
			}
			if avg3f5[i] > 0 {
				field3f = append(field3f, avg3f5[i])
			}
		}
		for _, i := range idxs {
			if avgTime5[i] > 0 && len(fieldTimes) > 1 {
				if err := block.Set(i, "relative_time_score", mean(fieldTimes)/avgTime5[i]*100); err != nil {
					return nil, err
				}
			}
			if avg3f5[i] > 0 && len(field3f) > 1 {
				if err := block.Set(i, "relative_last3f", mean(field3f)-avg3f5[i]); err != nil {
					return nil, err
				}
			}
		}
	}
	return block, nil
}

func lastNTimed(rows []timedRow, n int) []timedRow {
	if n >= len(rows) {
		return rows
	}
	return rows[:n]
}

var _ Extractor = (*TimeSpeedExtractor)(nil)
