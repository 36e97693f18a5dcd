// Package pedigree provides lookup backends for static pedigree reference
// data and externally computed sire aggregates.
package pedigree

import (
	"context"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// Provider resolves pedigree reference data. A missing record is a valid
// outcome and returns nil without error; extractors substitute defaults.
type Provider interface {
	Pedigree(ctx context.Context, id model.HorseID) (*model.PedigreeRecord, error)
	SireStats(ctx context.Context, sireID string) (*model.SireStats, error)
}

// StaticProvider serves pedigree data from in-memory tables. It backs batch
// runs over generated or preloaded data and is safe for concurrent reads
// once built.
type StaticProvider struct {
	pedigrees map[model.HorseID]model.PedigreeRecord
	stats     map[string]model.SireStats
}

// NewStaticProvider copies the given tables into a provider.
func NewStaticProvider(pedigrees map[model.HorseID]model.PedigreeRecord, stats map[string]model.SireStats) *StaticProvider {
	p := &StaticProvider{
		pedigrees: make(map[model.HorseID]model.PedigreeRecord, len(pedigrees)),
		stats:     make(map[string]model.SireStats, len(stats)),
	}
	for id, rec := range pedigrees {
		p.pedigrees[id] = rec
	}
	for id, st := range stats {
		p.stats[id] = st
	}
	return p
}

// Pedigree returns the horse's pedigree record, or nil when unknown.
func (p *StaticProvider) Pedigree(ctx context.Context, id model.HorseID) (*model.PedigreeRecord, error) {
	if rec, ok := p.pedigrees[id]; ok {
		return &rec, ctx.Err()
	}
	return nil, ctx.Err()
}

// SireStats returns the sire's progeny aggregates, or nil when unknown.
func (p *StaticProvider) SireStats(ctx context.Context, sireID string) (*model.SireStats, error) {
	if st, ok := p.stats[sireID]; ok {
		return &st, ctx.Err()
	}
	return nil, ctx.Err()
}

var _ Provider = (*StaticProvider)(nil)
