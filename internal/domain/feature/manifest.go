// Package feature defines the feature matrix primitives: column manifests,
// per-extractor blocks, and the merged table keyed by (race, horse).
//
// Feature names form an append-only vocabulary. A block's columns are
// namespaced with the owning extractor's name at merge time, and the merge
// rejects duplicates outright: a colliding name is a programming error, not
// a data error.
package feature

import (
	"fmt"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// Key identifies one feature row.
type Key struct {
	RaceID  model.RaceID
	HorseID model.HorseID
}

// Manifest declares the columns an extractor produces, their defaults, and
// their provenance. It is immutable after construction; extractors return it
// alongside their block instead of mutating shared state.
type Manifest struct {
	Extractor string
	Columns   []string
	defaults  map[string]float64
	index     map[string]int
}

// NewManifest builds a manifest for one extractor. Column names must be
// unique within the manifest.
func NewManifest(extractor string, columns []string, defaults map[string]float64) (Manifest, error) {
	if extractor == "" {
		return Manifest{}, fmt.Errorf("%w: empty extractor name", ErrInvalidManifest)
	}
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if c == "" {
			return Manifest{}, fmt.Errorf("%w: empty column name in %s", ErrInvalidManifest, extractor)
		}
		if _, dup := idx[c]; dup {
			return Manifest{}, fmt.Errorf("%w: column %q repeated in %s", ErrInvalidManifest, c, extractor)
		}
		idx[c] = i
	}
	d := make(map[string]float64, len(defaults))
	for c, v := range defaults {
		if _, ok := idx[c]; !ok {
			return Manifest{}, fmt.Errorf("%w: default for unknown column %q in %s", ErrInvalidManifest, c, extractor)
		}
		d[c] = v
	}
	return Manifest{Extractor: extractor, Columns: columns, defaults: d, index: idx}, nil
}

// MustManifest is NewManifest for statically known column sets.
func MustManifest(extractor string, columns []string, defaults map[string]float64) Manifest {
	m, err := NewManifest(extractor, columns, defaults)
	if err != nil {
		panic(err)
	}
	return m
}

// Default returns the documented default for a column (0 unless declared).
func (m Manifest) Default(column string) float64 { return m.defaults[column] }

// Qualified returns the namespaced column names, e.g. "perf.career_win_rate".
func (m Manifest) Qualified() []string {
	out := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		out[i] = m.Extractor + "." + c
	}
	return out
}

// Block carries one extractor's values, row-aligned with the batch it was
// computed for.
type Block struct {
	Manifest Manifest
	values   [][]float64
}

// NewBlock allocates a block of rows filled with the manifest defaults.
func NewBlock(m Manifest, rows int) *Block {
	vals := make([][]float64, rows)
	for i := range vals {
		row := make([]float64, len(m.Columns))
		for j, c := range m.Columns {
			row[j] = m.defaults[c]
		}
		vals[i] = row
	}
	return &Block{Manifest: m, values: vals}
}

// Set writes one cell. Unknown columns indicate a programming error and
// return ErrUnknownColumn.
func (b *Block) Set(row int, column string, v float64) error {
	j, ok := b.Manifest.index[column]
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, b.Manifest.Extractor, column)
	}
	if row < 0 || row >= len(b.values) {
		return fmt.Errorf("%w: row %d of %d", ErrRowMismatch, row, len(b.values))
	}
	b.values[row][j] = v
	return nil
}

// Get reads one cell, falling back to the column default when unknown.
func (b *Block) Get(row int, column string) float64 {
	j, ok := b.Manifest.index[column]
	if !ok || row < 0 || row >= len(b.values) {
		return b.Manifest.defaults[column]
	}
	return b.values[row][j]
}

// Rows returns the number of rows in the block.
func (b *Block) Rows() int { return len(b.values) }
