// Package pipeline orchestrates a feature run: history assembly, the two
// extraction phases, the ordered merge, and the run report. Phase-1
// failures abort the run; phase-2 failures degrade it and are reported.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"

	"github.com/yoshikawa-river/keiba-features/internal/adapters/pedigree"
	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
	"github.com/yoshikawa-river/keiba-features/internal/domain/history"
	"github.com/yoshikawa-river/keiba-features/internal/extractors"
	"github.com/yoshikawa-river/keiba-features/pkg/logger"
	"github.com/yoshikawa-river/keiba-features/pkg/metrics"
)

// Orchestrator drives feature runs. It is safe for sequential reuse; a
// second Run while one is in flight returns ErrBusy.
type Orchestrator struct {
	store    history.Accessor
	pedigree pedigree.Provider
	phase1   []extractors.Extractor
	phase2   []extractors.Extractor
	workers  int
	log      logger.Logger
	state    stateMachine
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithPedigreeProvider wires the pedigree and sire-stats source. Without
// it the pedigree columns keep their defaults.
func WithPedigreeProvider(p pedigree.Provider) Option {
	return func(o *Orchestrator) { o.pedigree = p }
}

// WithWorkerCount bounds the history-fetch concurrency.
func WithWorkerCount(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger overrides the default named logger.
func WithLogger(log logger.Logger) Option {
	return func(o *Orchestrator) { o.log = log }
}

// New builds an orchestrator over a history accessor and an ordered
// extractor schedule. The store is wrapped so every history slice is
// re-verified against the as-of date before any extractor sees it.
// Scheduling is validated up front: extractor names must be unique and
// every declared column requirement must be produced by an extractor
// scheduled earlier.
func New(store history.Accessor, exts []extractors.Extractor, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	if len(exts) == 0 {
		return nil, ErrNoExtractors
	}

	o := &Orchestrator{
		store:   history.NewGuard(store),
		workers: runtime.NumCPU(),
		log:     logger.Named("pipeline"),
	}
	for _, opt := range opts {
		opt(o)
	}

	produced := make(map[string]string)
	seen := make(map[string]struct{})
	for _, ext := range exts {
		name := ext.Name()
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateExtractor, name)
		}
		seen[name] = struct{}{}
		switch ext.Phase() {
		case extractors.Phase1:
			o.phase1 = append(o.phase1, ext)
		default:
			o.phase2 = append(o.phase2, ext)
		}
	}
	// Requirements resolve against the schedule order: all of phase 1,
	// then phase 2 in its given order.
	for _, ext := range o.phase1 {
		for _, q := range ext.Manifest().Qualified() {
			produced[q] = ext.Name()
		}
		if len(ext.Requires()) > 0 {
			return nil, fmt.Errorf("%w: %s declares requirements but runs in phase 1", ErrUnresolvedRequirement, ext.Name())
		}
	}
	for _, ext := range o.phase2 {
		for _, q := range ext.Requires() {
			if _, ok := produced[q]; !ok {
				return nil, fmt.Errorf("%w: %s needs %s", ErrUnresolvedRequirement, ext.Name(), q)
			}
		}
		for _, q := range ext.Manifest().Qualified() {
			produced[q] = ext.Name()
		}
	}
	return o, nil
}

// State reports the orchestrator's current run state.
func (o *Orchestrator) State() State { return o.state.current() }

// Result is one completed run: the merged matrix and its report.
type Result struct {
	Table  *feature.Table
	Report Report
}

// Run executes one feature run over the input.
func (o *Orchestrator) Run(ctx context.Context, in *Input) (*Result, error) {
	if err := o.state.begin(); err != nil {
		return nil, err
	}
	start := time.Now()
	metrics.RecordRunStart()

	res, err := o.run(ctx, in, start)
	if err != nil {
		o.state.fail()
		metrics.RecordRunFailed()
		o.log.Error(ctx, "run failed", logger.Error(err))
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, in *Input, start time.Time) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	o.log.Info(ctx, "run started",
		logger.String("run_id", runID),
		logger.String("as_of", in.AsOf.Format(time.DateOnly)),
		logger.Int("entries", len(in.Entries)))

	targets, err := o.assembleTargets(ctx, in)
	if err != nil {
		return nil, err
	}

	keys := make([]feature.Key, len(targets))
	for i := range targets {
		keys[i] = feature.Key{RaceID: targets[i].Race.RaceID, HorseID: targets[i].Entry.HorseID}
	}
	table := feature.NewTable(keys)
	batch := &extractors.Batch{AsOf: in.AsOf, Targets: targets}

	for _, ext := range o.phase1 {
		if err := o.extractAndMerge(ctx, ext, batch, table); err != nil {
			return nil, err
		}
	}

	if err := o.state.advance(StatePhase1Extracting, StatePhase2Extracting); err != nil {
		return nil, err
	}

	batch.Table = table
	var degraded []string
	for _, ext := range o.phase2 {
		if err := o.extractAndMerge(ctx, ext, batch, table); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			o.log.Warn(ctx, "phase2 extractor degraded",
				logger.String("extractor", ext.Name()), logger.Error(err))
			metrics.RecordExtractorFailure(ext.Name())
			degraded = append(degraded, ext.Name())
		}
	}

	if err := o.state.advance(StatePhase2Extracting, StateMerged); err != nil {
		return nil, err
	}

	report := o.buildReport(runID, in.AsOf, table, degraded, time.Since(start))
	metrics.RecordRows(table.Rows())
	metrics.RecordVocabularySize(len(table.Columns()))
	metrics.RecordRunDuration(time.Since(start).Seconds())
	if report.Degraded {
		metrics.RecordRunDegraded()
	}

	if err := o.state.advance(StateMerged, StateDone); err != nil {
		return nil, err
	}
	o.log.Info(ctx, "run finished",
		logger.String("run_id", runID),
		logger.Int("rows", report.Rows),
		logger.Int("columns", report.ColumnCount),
		logger.Any("degraded", report.DegradedExtractors),
		logger.Duration("took", time.Since(start)))
	return &Result{Table: table, Report: report}, nil
}

func (o *Orchestrator) extractAndMerge(ctx context.Context, ext extractors.Extractor, batch *extractors.Batch, table *feature.Table) error {
	extStart := time.Now()
	block, err := ext.Extract(ctx, batch)
	if err != nil {
		return &ExtractionError{Extractor: ext.Name(), Phase: ext.Phase(), Err: err}
	}
	metrics.RecordExtractorDuration(ext.Name(), time.Since(extStart).Seconds())
	metrics.RecordExtractorFeatures(ext.Name(), len(block.Manifest.Columns))

	mergeStart := time.Now()
	if err := table.Merge(block); err != nil {
		return &ExtractionError{Extractor: ext.Name(), Phase: ext.Phase(), Err: err}
	}
	metrics.RecordMergeDuration(time.Since(mergeStart).Seconds())

	o.log.Debug(ctx, "extractor merged",
		logger.String("extractor", ext.Name()),
		logger.String("phase", ext.Phase().String()),
		logger.Int("columns", len(block.Manifest.Columns)),
		logger.Duration("took", time.Since(extStart)))
	return nil
}

func (o *Orchestrator) buildReport(runID string, asOf time.Time, table *feature.Table, degraded []string, took time.Duration) Report {
	_, counts := table.ExtractorCounts()

	phase1 := make([]string, 0, len(o.phase1))
	for _, ext := range o.phase1 {
		phase1 = append(phase1, ext.Name())
	}
	phase2 := make([]string, 0, len(o.phase2))
	for _, ext := range o.phase2 {
		phase2 = append(phase2, ext.Name())
	}

	return Report{
		RunID:              runID,
		AsOf:               asOf,
		GeneratedAt:        time.Now().UTC(),
		Rows:               table.Rows(),
		ColumnCount:        len(table.Columns()),
		FeatureNames:       table.Columns(),
		ExtractorFeatures:  counts,
		Phase1:             phase1,
		Phase2:             phase2,
		DegradedExtractors: degraded,
		Degraded:           len(degraded) > 0,
		DurationSeconds:    took.Seconds(),
	}
}
