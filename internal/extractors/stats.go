package extractors

import (
	"math"
	"sort"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// Numeric helpers shared across the feature families. All of them treat an
// empty input as 0 rather than NaN; absence of history is a modelable state
// of its own and must never poison the matrix.

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	s := make([]float64, len(xs))
	copy(s, xs)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// stddev is the sample standard deviation; fewer than two values yield 0.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// trendSlope fits a least-squares line over xs indexed 0..n-1 and returns
// its slope. Over a most-recent-first finish sequence a positive slope
// means the recent finishes are lower, i.e. form is improving.
func trendSlope(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range xs {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// consistency is 1/(1+CV). A zero mean degrades to CV=1.
func consistency(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	cv := 1.0
	if m > 0 {
		cv = stddev(xs) / m
	}
	return 1 / (1 + cv)
}

// rate divides count by total, 0 when total is 0.
func rate(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// finishes collects settled finishing positions, preserving the
// most-recent-first order of the input.
func finishes(rows []model.ParticipationRecord) []float64 {
	out := make([]float64, 0, len(rows))
	for i := range rows {
		if rows[i].Finished() {
			out = append(out, float64(rows[i].Finish()))
		}
	}
	return out
}

// lastN clamps to the available prefix of a most-recent-first slice.
func lastN(xs []float64, n int) []float64 {
	if n >= len(xs) {
		return xs
	}
	return xs[:n]
}

// streak counts consecutive wins from the most recent start (positive) or
// consecutive finishes worse than third (negative). Anything else is 0.
func streak(positions []float64) float64 {
	if len(positions) == 0 {
		return 0
	}
	s := 0
	switch {
	case positions[0] == 1:
		for _, p := range positions {
			if p != 1 {
				break
			}
			s++
		}
	case positions[0] > 3:
		for _, p := range positions {
			if p <= 3 {
				break
			}
			s--
		}
	}
	return float64(s)
}

// winLossCounts tallies wins (finish 1), places (≤2) and shows (≤3).
func winLossCounts(positions []float64) (wins, places, shows int) {
	for _, p := range positions {
		if p == 1 {
			wins++
		}
		if p <= 2 {
			places++
		}
		if p <= 3 {
			shows++
		}
	}
	return wins, places, shows
}

// winRateWhere computes win rate and start count over settled rows matching
// pred. Unsettled rows are not starts, same as finishes().
func winRateWhere(rows []model.ParticipationRecord, pred func(*model.ParticipationRecord) bool) (winRate float64, starts int) {
	wins := 0
	for i := range rows {
		if !rows[i].Finished() || !pred(&rows[i]) {
			continue
		}
		starts++
		if rows[i].Finish() == 1 {
			wins++
		}
	}
	return rate(wins, starts), starts
}
