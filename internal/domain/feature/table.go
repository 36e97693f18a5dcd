package feature

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Table is the working feature matrix for one pipeline run: a fixed row set
// keyed by (race, horse) onto which extractor blocks are merged column-wise.
// Column order is the merge order, which makes two runs over identical
// inputs byte-identical.
type Table struct {
	keys     []Key
	columns  []string
	colIndex map[string]int
	data     [][]float64 // row-major

	perExtractor map[string]int
	mergeOrder   []string
}

// NewTable creates an empty table over a fixed, ordered row set.
func NewTable(keys []Key) *Table {
	data := make([][]float64, len(keys))
	return &Table{
		keys:         keys,
		colIndex:     make(map[string]int),
		data:         data,
		perExtractor: make(map[string]int),
	}
}

// Merge appends a block's columns under the extractor's namespace. Duplicate
// qualified names fail fast with ErrDuplicateColumn; a block computed for a
// different row count fails with ErrRowMismatch.
func (t *Table) Merge(b *Block) error {
	if b.Rows() != len(t.keys) {
		return fmt.Errorf("%w: block %s has %d rows, table has %d",
			ErrRowMismatch, b.Manifest.Extractor, b.Rows(), len(t.keys))
	}
	qualified := b.Manifest.Qualified()
	for _, q := range qualified {
		if _, dup := t.colIndex[q]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateColumn, q)
		}
	}
	for _, q := range qualified {
		t.colIndex[q] = len(t.columns)
		t.columns = append(t.columns, q)
	}
	for i := range t.data {
		t.data[i] = append(t.data[i], b.values[i]...)
	}
	t.perExtractor[b.Manifest.Extractor] = len(b.Manifest.Columns)
	t.mergeOrder = append(t.mergeOrder, b.Manifest.Extractor)
	return nil
}

// Rows returns the number of feature rows.
func (t *Table) Rows() int { return len(t.keys) }

// Keys returns the ordered row keys.
func (t *Table) Keys() []Key { return t.keys }

// Columns returns the qualified column names in merge order.
func (t *Table) Columns() []string { return t.columns }

// HasColumn reports whether a qualified column has been merged.
func (t *Table) HasColumn(qualified string) bool {
	_, ok := t.colIndex[qualified]
	return ok
}

// Value reads one cell by qualified column name.
func (t *Table) Value(row int, qualified string) (float64, bool) {
	j, ok := t.colIndex[qualified]
	if !ok || row < 0 || row >= len(t.data) {
		return 0, false
	}
	return t.data[row][j], true
}

// Column returns a copy of a whole column.
func (t *Table) Column(qualified string) ([]float64, bool) {
	j, ok := t.colIndex[qualified]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(t.data))
	for i := range t.data {
		out[i] = t.data[i][j]
	}
	return out, true
}

// ExtractorCounts returns per-extractor column counts in merge order.
func (t *Table) ExtractorCounts() ([]string, map[string]int) {
	counts := make(map[string]int, len(t.perExtractor))
	for k, v := range t.perExtractor {
		counts[k] = v
	}
	order := make([]string, len(t.mergeOrder))
	copy(order, t.mergeOrder)
	return order, counts
}

// Vector materializes one row as an ordered feature vector.
func (t *Table) Vector(row int) (Vector, bool) {
	if row < 0 || row >= len(t.keys) {
		return Vector{}, false
	}
	values := make([]float64, len(t.columns))
	copy(values, t.data[row])
	return Vector{Key: t.keys[row], Names: t.columns, Values: values}, true
}

// Vector is a single (race, horse) feature vector with an ordered
// name-to-value mapping.
type Vector struct {
	Key    Key
	Names  []string
	Values []float64
}

// WriteCSV encodes the table deterministically: a header of race_id, horse_id
// and the qualified columns in merge order, then one row per key. Floats use
// the shortest round-trip representation so output is byte-stable, and ids
// carrying delimiters are quoted by the encoder rather than corrupting rows.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	header := make([]string, 0, len(t.columns)+2)
	header = append(header, "race_id", "horse_id")
	header = append(header, t.columns...)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for i, k := range t.keys {
		record[0] = string(k.RaceID)
		record[1] = string(k.HorseID)
		for j, v := range t.data[i] {
			record[j+2] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
