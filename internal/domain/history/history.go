// Package history defines the temporal history accessor contract and the
// leakage guard enforcing point-in-time causality.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
	"github.com/yoshikawa-river/keiba-features/pkg/metrics"
)

// Accessor provides read-only access to settled participation records.
//
// Contract: every returned row has RaceDate strictly before asOf, ordered
// most-recent-first. Unknown entities yield an empty slice, never an error.
// Implementations must support concurrent reads.
type Accessor interface {
	HorseHistory(ctx context.Context, id model.HorseID, asOf time.Time) ([]model.ParticipationRecord, error)
	JockeyHistory(ctx context.Context, id model.JockeyID, asOf time.Time) ([]model.ParticipationRecord, error)
	TrainerHistory(ctx context.Context, id model.TrainerID, asOf time.Time) ([]model.ParticipationRecord, error)
}

// Prefetcher is implemented by accessors that can warm a whole run's
// entity set in a bounded number of queries instead of one per entity.
// After a successful Prefetch, per-entity calls for the given ids and
// as-of date serve from the warmed result set.
type Prefetcher interface {
	Prefetch(ctx context.Context, horses []model.HorseID, jockeys []model.JockeyID, trainers []model.TrainerID, asOf time.Time) error
}

// Verify checks the accessor contract on a result set. A row at or after
// asOf is a correctness violation and must abort the run; it is never
// silently filtered.
func Verify(rows []model.ParticipationRecord, asOf time.Time) error {
	var prev *time.Time
	for i := range rows {
		d := rows[i].RaceDate
		if !d.Before(asOf) {
			metrics.RecordLeakageViolation()
			return fmt.Errorf("%w: race %s on %s observed as of %s",
				ErrLeakage, rows[i].RaceID, d.Format(time.DateOnly), asOf.Format(time.DateOnly))
		}
		if prev != nil && d.After(*prev) {
			return fmt.Errorf("%w: race %s out of order", ErrUnordered, rows[i].RaceID)
		}
		prev = &rows[i].RaceDate
	}
	return nil
}

// Guard wraps an Accessor and verifies every result set against the
// contract before handing it to extractors.
type Guard struct {
	inner Accessor
}

// NewGuard wraps an accessor with leakage verification.
func NewGuard(inner Accessor) *Guard { return &Guard{inner: inner} }

func (g *Guard) HorseHistory(ctx context.Context, id model.HorseID, asOf time.Time) ([]model.ParticipationRecord, error) {
	rows, err := g.inner.HorseHistory(ctx, id, asOf)
	if err != nil {
		return nil, err
	}
	if err := Verify(rows, asOf); err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *Guard) JockeyHistory(ctx context.Context, id model.JockeyID, asOf time.Time) ([]model.ParticipationRecord, error) {
	rows, err := g.inner.JockeyHistory(ctx, id, asOf)
	if err != nil {
		return nil, err
	}
	if err := Verify(rows, asOf); err != nil {
		return nil, err
	}
	return rows, nil
}

func (g *Guard) TrainerHistory(ctx context.Context, id model.TrainerID, asOf time.Time) ([]model.ParticipationRecord, error) {
	rows, err := g.inner.TrainerHistory(ctx, id, asOf)
	if err != nil {
		return nil, err
	}
	if err := Verify(rows, asOf); err != nil {
		return nil, err
	}
	return rows, nil
}

// Prefetch forwards to the wrapped accessor when it supports batched
// warm-up. Accessors without it already serve from memory, so this is a
// no-op for them.
func (g *Guard) Prefetch(ctx context.Context, horses []model.HorseID, jockeys []model.JockeyID, trainers []model.TrainerID, asOf time.Time) error {
	p, ok := g.inner.(Prefetcher)
	if !ok {
		return nil
	}
	return p.Prefetch(ctx, horses, jockeys, trainers, asOf)
}

// Window returns the most recent n rows, or all rows when fewer exist.
func Window(rows []model.ParticipationRecord, n int) []model.ParticipationRecord {
	if n <= 0 || n >= len(rows) {
		return rows
	}
	return rows[:n]
}

// DaysSinceLastStart returns the gap between asOf and the most recent start,
// or 0 for an empty history.
func DaysSinceLastStart(rows []model.ParticipationRecord, asOf time.Time) float64 {
	if len(rows) == 0 {
		return 0
	}
	return asOf.Sub(rows[0].RaceDate).Hours() / 24
}
