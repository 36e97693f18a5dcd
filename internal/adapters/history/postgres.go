package history

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yoshikawa-river/keiba-features/internal/domain/history"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
	"github.com/yoshikawa-river/keiba-features/pkg/logger"
	"github.com/yoshikawa-river/keiba-features/pkg/metrics"
)

const defaultTable = "participations"

const participationColumns = `race_id, race_date, venue, track_type, track_condition,
	distance, class_label, field_size, horse_id, horse_age, horse_sex,
	horse_weight, horse_weight_diff, weight_carried, jockey_id, trainer_id,
	post_position, finish_position, elapsed_time, last3f, last3f_rank,
	odds, popularity, prize_money`

// PostgresAccessor reads participation history from the race archive.
// Queries filter strictly before the as-of date and order most recent
// first, so callers never see rows the archive learned after the cutoff.
//
// Prefetch warms the whole entity set of a run in three queries; the
// per-entity methods then serve from the warmed set and only fall back to
// a single-entity query for ids the warm-up did not cover.
type PostgresAccessor struct {
	pool  *pgxpool.Pool
	table string
	log   logger.Logger

	mu   sync.RWMutex
	warm *warmSet
}

type warmSet struct {
	asOf     time.Time
	horses   map[string][]model.ParticipationRecord
	jockeys  map[string][]model.ParticipationRecord
	trainers map[string][]model.ParticipationRecord
}

// NewPostgresAccessor wraps an existing pool.
func NewPostgresAccessor(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresAccessor, error) {
	if pool == nil {
		return nil, ErrNilPool
	}
	a := &PostgresAccessor{
		pool:  pool,
		table: defaultTable,
		log:   logger.Named("history.postgres"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Prefetch loads every listed entity's history strictly before asOf in one
// query per role, replacing any previously warmed set.
func (a *PostgresAccessor) Prefetch(ctx context.Context, horses []model.HorseID, jockeys []model.JockeyID, trainers []model.TrainerID, asOf time.Time) error {
	w := &warmSet{asOf: asOf}
	var err error
	if w.horses, err = a.fetchBatch(ctx, "horse_id", horseIDs(horses), asOf); err != nil {
		return err
	}
	if w.jockeys, err = a.fetchBatch(ctx, "jockey_id", jockeyIDs(jockeys), asOf); err != nil {
		return err
	}
	if w.trainers, err = a.fetchBatch(ctx, "trainer_id", trainerIDs(trainers), asOf); err != nil {
		return err
	}

	a.mu.Lock()
	a.warm = w
	a.mu.Unlock()
	a.log.Debug(ctx, "histories prefetched",
		logger.Int("horses", len(horses)),
		logger.Int("jockeys", len(jockeys)),
		logger.Int("trainers", len(trainers)),
	)
	return nil
}

// HorseHistory returns the horse's rows strictly before asOf.
func (a *PostgresAccessor) HorseHistory(ctx context.Context, id model.HorseID, asOf time.Time) ([]model.ParticipationRecord, error) {
	return a.fetch(ctx, "horse_id", string(id), asOf)
}

// JockeyHistory returns the jockey's rides strictly before asOf.
func (a *PostgresAccessor) JockeyHistory(ctx context.Context, id model.JockeyID, asOf time.Time) ([]model.ParticipationRecord, error) {
	return a.fetch(ctx, "jockey_id", string(id), asOf)
}

// TrainerHistory returns the trainer's starters strictly before asOf.
func (a *PostgresAccessor) TrainerHistory(ctx context.Context, id model.TrainerID, asOf time.Time) ([]model.ParticipationRecord, error) {
	return a.fetch(ctx, "trainer_id", string(id), asOf)
}

func (a *PostgresAccessor) fetch(ctx context.Context, column, id string, asOf time.Time) ([]model.ParticipationRecord, error) {
	if rows, ok := a.warmed(column, id, asOf); ok {
		return rows, nil
	}

	start := time.Now()
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = $1 AND race_date < $2 ORDER BY race_date DESC`,
		participationColumns, a.table, column,
	)
	rows, err := a.pool.Query(ctx, query, id, asOf)
	if err != nil {
		return nil, fmt.Errorf("querying %s history: %w", column, err)
	}
	defer rows.Close()

	out, err := scanParticipations(rows)
	if err != nil {
		return nil, err
	}
	metrics.RecordHistoryFetch(time.Since(start).Seconds(), len(out))
	a.log.Debug(ctx, "history fetched",
		logger.String("entity", column),
		logger.String("id", id),
		logger.Int("rows", len(out)),
	)
	return out, nil
}

// fetchBatch pulls every listed entity's rows in one query. The global
// race_date DESC order keeps each entity's group most-recent-first after
// the fan-out. Requested ids with no rows get an explicit empty entry so
// per-entity reads know they were covered.
func (a *PostgresAccessor) fetchBatch(ctx context.Context, column string, ids []string, asOf time.Time) (map[string][]model.ParticipationRecord, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return map[string][]model.ParticipationRecord{}, nil
	}

	start := time.Now()
	query := fmt.Sprintf(
		`SELECT %s FROM %s WHERE %s = ANY($1) AND race_date < $2 ORDER BY race_date DESC`,
		participationColumns, a.table, column,
	)
	rows, err := a.pool.Query(ctx, query, ids, asOf)
	if err != nil {
		return nil, fmt.Errorf("querying %s batch: %w", column, err)
	}
	defer rows.Close()

	all, err := scanParticipations(rows)
	if err != nil {
		return nil, err
	}
	metrics.RecordHistoryFetch(time.Since(start).Seconds(), len(all))
	return groupRows(all, ids, column), nil
}

func (a *PostgresAccessor) warmed(column, id string, asOf time.Time) ([]model.ParticipationRecord, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.warm == nil || !a.warm.asOf.Equal(asOf) {
		return nil, false
	}
	var m map[string][]model.ParticipationRecord
	switch column {
	case "horse_id":
		m = a.warm.horses
	case "jockey_id":
		m = a.warm.jockeys
	case "trainer_id":
		m = a.warm.trainers
	}
	rows, ok := m[id]
	return rows, ok
}

// groupRows fans a batch result out per entity, preserving row order
// within each group.
func groupRows(rows []model.ParticipationRecord, ids []string, column string) map[string][]model.ParticipationRecord {
	out := make(map[string][]model.ParticipationRecord, len(ids))
	for _, id := range ids {
		out[id] = nil
	}
	for i := range rows {
		var key string
		switch column {
		case "horse_id":
			key = string(rows[i].HorseID)
		case "jockey_id":
			key = string(rows[i].JockeyID)
		case "trainer_id":
			key = string(rows[i].TrainerID)
		}
		out[key] = append(out[key], rows[i])
	}
	return out
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func horseIDs(ids []model.HorseID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func jockeyIDs(ids []model.JockeyID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func trainerIDs(ids []model.TrainerID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func scanParticipations(rows pgx.Rows) ([]model.ParticipationRecord, error) {
	var out []model.ParticipationRecord
	for rows.Next() {
		var (
			r         model.ParticipationRecord
			track     string
			condition string
			sex       string
			elapsed   *string
		)
		if err := rows.Scan(
			&r.RaceID, &r.RaceDate, &r.Venue, &track, &condition,
			&r.Distance, &r.ClassLabel, &r.FieldSize, &r.HorseID,
			&r.HorseAge, &sex, &r.HorseWeight, &r.HorseWeightDiff, &r.WeightCarried,
			&r.JockeyID, &r.TrainerID, &r.PostPosition, &r.FinishPosition,
			&elapsed, &r.Last3F, &r.Last3FRank, &r.Odds, &r.Popularity,
			&r.PrizeMoney,
		); err != nil {
			return nil, fmt.Errorf("scanning participation row: %w", err)
		}
		r.TrackType = model.TrackType(track)
		r.TrackCondition = model.TrackCondition(condition)
		r.HorseSex = model.Sex(sex)
		if elapsed != nil {
			r.ElapsedTime = *elapsed
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

var (
	_ history.Accessor   = (*PostgresAccessor)(nil)
	_ history.Prefetcher = (*PostgresAccessor)(nil)
)
