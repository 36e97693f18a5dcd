package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/history"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
	"github.com/yoshikawa-river/keiba-features/internal/extractors"
)

// Input is one run's worth of work: the race cards and their race-day
// entries, featurized as of AsOf.
type Input struct {
	AsOf    time.Time
	Races   []model.RaceRecord
	Entries []model.ParticipationRecord
}

func (in *Input) validate() error {
	if len(in.Entries) == 0 {
		return ErrNoEntries
	}
	races := make(map[model.RaceID]*model.RaceRecord, len(in.Races))
	for i := range in.Races {
		r := &in.Races[i]
		races[r.RaceID] = r
		// A race that already ran would leak its own result through the
		// histories. That is fatal, never silently filtered.
		if r.RaceDate.Before(in.AsOf) {
			return fmt.Errorf("%w: race %s ran %s, before as-of %s",
				history.ErrLeakage, r.RaceID,
				r.RaceDate.Format(time.DateOnly), in.AsOf.Format(time.DateOnly))
		}
	}
	for i := range in.Entries {
		if _, ok := races[in.Entries[i].RaceID]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownRace, in.Entries[i].RaceID)
		}
	}
	return nil
}

// assembleTargets builds one extraction target per entry, fetching the
// horse, jockey and trainer histories and the pedigree records through a
// bounded worker pool. Target order follows the input entry order.
func (o *Orchestrator) assembleTargets(ctx context.Context, in *Input) ([]extractors.Target, error) {
	races := make(map[model.RaceID]model.RaceRecord, len(in.Races))
	for _, r := range in.Races {
		races[r.RaceID] = r
	}

	// Stores backed by a database warm the run's whole entity set in a
	// bounded number of queries instead of one per entity.
	if p, ok := o.store.(history.Prefetcher); ok {
		horses, jockeys, trainers := entitySets(in.Entries)
		if err := p.Prefetch(ctx, horses, jockeys, trainers, in.AsOf); err != nil {
			return nil, fmt.Errorf("prefetching histories: %w", err)
		}
	}

	targets := make([]extractors.Target, len(in.Entries))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	errs := make(chan error, o.workers)
	var wg sync.WaitGroup
	for w := 0; w < o.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := o.fillTarget(ctx, &targets[i], &in.Entries[i], in.AsOf, in.Entries, races); err != nil {
					select {
					case errs <- err:
						cancel()
					default:
					}
					return
				}
			}
		}()
	}

feed:
	for i := range in.Entries {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if err := <-errs; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return targets, nil
}

func (o *Orchestrator) fillTarget(ctx context.Context, t *extractors.Target, entry *model.ParticipationRecord, asOf time.Time, entries []model.ParticipationRecord, races map[model.RaceID]model.RaceRecord) error {
	race := races[entry.RaceID]
	if race.FieldSize == 0 {
		race.FieldSize = countEntries(entries, entry.RaceID)
	}
	t.Race = race
	t.Entry = *entry

	var err error
	if t.HorseHistory, err = o.store.HorseHistory(ctx, entry.HorseID, asOf); err != nil {
		return fmt.Errorf("horse %s: %w", entry.HorseID, err)
	}
	if t.JockeyHistory, err = o.store.JockeyHistory(ctx, entry.JockeyID, asOf); err != nil {
		return fmt.Errorf("jockey %s: %w", entry.JockeyID, err)
	}
	if t.TrainerHistory, err = o.store.TrainerHistory(ctx, entry.TrainerID, asOf); err != nil {
		return fmt.Errorf("trainer %s: %w", entry.TrainerID, err)
	}

	if o.pedigree == nil {
		return nil
	}
	if t.Pedigree, err = o.pedigree.Pedigree(ctx, entry.HorseID); err != nil {
		return fmt.Errorf("pedigree %s: %w", entry.HorseID, err)
	}
	if t.Pedigree == nil {
		return nil
	}
	if t.SireStats, err = o.pedigree.SireStats(ctx, t.Pedigree.SireName); err != nil {
		return fmt.Errorf("sire stats %s: %w", t.Pedigree.SireName, err)
	}
	if t.DamSireStats, err = o.pedigree.SireStats(ctx, t.Pedigree.DamSireName); err != nil {
		return fmt.Errorf("dam-sire stats %s: %w", t.Pedigree.DamSireName, err)
	}
	return nil
}

// entitySets collects the distinct horse, jockey and trainer ids across
// the run's entries, preserving first-appearance order.
func entitySets(entries []model.ParticipationRecord) ([]model.HorseID, []model.JockeyID, []model.TrainerID) {
	seenH := make(map[model.HorseID]struct{}, len(entries))
	seenJ := make(map[model.JockeyID]struct{})
	seenT := make(map[model.TrainerID]struct{})
	var horses []model.HorseID
	var jockeys []model.JockeyID
	var trainers []model.TrainerID
	for i := range entries {
		e := &entries[i]
		if _, ok := seenH[e.HorseID]; !ok {
			seenH[e.HorseID] = struct{}{}
			horses = append(horses, e.HorseID)
		}
		if _, ok := seenJ[e.JockeyID]; !ok {
			seenJ[e.JockeyID] = struct{}{}
			jockeys = append(jockeys, e.JockeyID)
		}
		if _, ok := seenT[e.TrainerID]; !ok {
			seenT[e.TrainerID] = struct{}{}
			trainers = append(trainers, e.TrainerID)
		}
	}
	return horses, jockeys, trainers
}

func countEntries(entries []model.ParticipationRecord, id model.RaceID) int {
	n := 0
	for i := range entries {
		if entries[i].RaceID == id {
			n++
		}
	}
	return n
}
