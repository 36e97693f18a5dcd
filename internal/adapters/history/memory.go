// Package history provides the concrete history backends: an in-memory
// sharded store for tests and batch runs over generated data, and a
// Postgres accessor for production archives. Both honor the same contract:
// rows strictly before the as-of date, most recent first.
package history

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/history"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
	"github.com/yoshikawa-river/keiba-features/pkg/metrics"
)

const defaultShardCount = 16

// MemoryStore is a sharded in-memory participation archive. Writes go
// through Add; reads are concurrent and never observe a partially inserted
// record. Each entity's rows are kept sorted by race date descending.
type MemoryStore struct {
	shardCount uint32
	shards     []*shard
}

type shard struct {
	mu       sync.RWMutex
	byHorse  map[model.HorseID][]model.ParticipationRecord
	byJockey map[model.JockeyID][]model.ParticipationRecord
	byTrain  map[model.TrainerID][]model.ParticipationRecord
}

// NewMemoryStore builds an empty store, configurable via options.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		shardCount: defaultShardCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.shards = make([]*shard, s.shardCount)
	for i := range s.shards {
		s.shards[i] = &shard{
			byHorse:  make(map[model.HorseID][]model.ParticipationRecord),
			byJockey: make(map[model.JockeyID][]model.ParticipationRecord),
			byTrain:  make(map[model.TrainerID][]model.ParticipationRecord),
		}
	}
	return s
}

func (s *MemoryStore) shardFor(id string) *shard {
	h := fnv.New32a()
	h.Write([]byte(id))
	return s.shards[h.Sum32()%s.shardCount]
}

// Add indexes one participation record under its horse, jockey and trainer.
func (s *MemoryStore) Add(rec model.ParticipationRecord) {
	hs := s.shardFor(string(rec.HorseID))
	hs.mu.Lock()
	hs.byHorse[rec.HorseID] = insertSorted(hs.byHorse[rec.HorseID], rec)
	hs.mu.Unlock()

	if rec.JockeyID != "" {
		js := s.shardFor(string(rec.JockeyID))
		js.mu.Lock()
		js.byJockey[rec.JockeyID] = insertSorted(js.byJockey[rec.JockeyID], rec)
		js.mu.Unlock()
	}
	if rec.TrainerID != "" {
		ts := s.shardFor(string(rec.TrainerID))
		ts.mu.Lock()
		ts.byTrain[rec.TrainerID] = insertSorted(ts.byTrain[rec.TrainerID], rec)
		ts.mu.Unlock()
	}
}

// AddAll indexes a batch of records.
func (s *MemoryStore) AddAll(recs []model.ParticipationRecord) {
	for _, rec := range recs {
		s.Add(rec)
	}
}

// insertSorted keeps the slice in race-date descending order.
func insertSorted(rows []model.ParticipationRecord, rec model.ParticipationRecord) []model.ParticipationRecord {
	i := sort.Search(len(rows), func(i int) bool {
		return rows[i].RaceDate.Before(rec.RaceDate)
	})
	rows = append(rows, model.ParticipationRecord{})
	copy(rows[i+1:], rows[i:])
	rows[i] = rec
	return rows
}

// HorseHistory returns the horse's rows strictly before asOf, most recent
// first. An unknown horse yields an empty history, not an error.
func (s *MemoryStore) HorseHistory(ctx context.Context, id model.HorseID, asOf time.Time) ([]model.ParticipationRecord, error) {
	start := time.Now()
	sh := s.shardFor(string(id))
	sh.mu.RLock()
	out := cutBefore(sh.byHorse[id], asOf)
	sh.mu.RUnlock()
	metrics.RecordHistoryFetch(time.Since(start).Seconds(), len(out))
	return out, ctx.Err()
}

// JockeyHistory returns the jockey's rides strictly before asOf.
func (s *MemoryStore) JockeyHistory(ctx context.Context, id model.JockeyID, asOf time.Time) ([]model.ParticipationRecord, error) {
	start := time.Now()
	sh := s.shardFor(string(id))
	sh.mu.RLock()
	out := cutBefore(sh.byJockey[id], asOf)
	sh.mu.RUnlock()
	metrics.RecordHistoryFetch(time.Since(start).Seconds(), len(out))
	return out, ctx.Err()
}

// TrainerHistory returns the trainer's starters strictly before asOf.
func (s *MemoryStore) TrainerHistory(ctx context.Context, id model.TrainerID, asOf time.Time) ([]model.ParticipationRecord, error) {
	start := time.Now()
	sh := s.shardFor(string(id))
	sh.mu.RLock()
	out := cutBefore(sh.byTrain[id], asOf)
	sh.mu.RUnlock()
	metrics.RecordHistoryFetch(time.Since(start).Seconds(), len(out))
	return out, ctx.Err()
}

// cutBefore copies the suffix of a date-descending slice whose rows fall
// strictly before asOf. Rows dated at or after asOf sit at the front.
func cutBefore(rows []model.ParticipationRecord, asOf time.Time) []model.ParticipationRecord {
	i := sort.Search(len(rows), func(i int) bool {
		return rows[i].RaceDate.Before(asOf)
	})
	out := make([]model.ParticipationRecord, len(rows)-i)
	copy(out, rows[i:])
	return out
}

var _ history.Accessor = (*MemoryStore)(nil)
