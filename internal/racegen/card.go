package racegen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
	"github.com/yoshikawa-river/keiba-features/internal/pipeline"
)

// CardFile is the on-disk exchange format between the generator and the
// batch runner: the run input plus the reference data backing it.
type CardFile struct {
	AsOf      string                                 `json:"as_of"`
	Races     []model.RaceRecord                     `json:"races"`
	Entries   []model.ParticipationRecord            `json:"entries"`
	History   []model.ParticipationRecord            `json:"history"`
	Pedigrees map[model.HorseID]model.PedigreeRecord `json:"pedigrees,omitempty"`
	SireStats map[string]model.SireStats             `json:"sire_stats,omitempty"`
}

// Build assembles a complete card file from one generator pass.
func Build(g *Generator, in *pipeline.Input, startsPerHorse int) *CardFile {
	peds, stats := g.Pedigrees(in)
	return &CardFile{
		AsOf:      in.AsOf.Format("2006-01-02"),
		Races:     in.Races,
		Entries:   in.Entries,
		History:   g.History(in, startsPerHorse),
		Pedigrees: peds,
		SireStats: stats,
	}
}

// Input converts the card back into a run input.
func (c *CardFile) Input() (*pipeline.Input, error) {
	asOf, err := parseAsOf(c.AsOf)
	if err != nil {
		return nil, err
	}
	return &pipeline.Input{AsOf: asOf, Races: c.Races, Entries: c.Entries}, nil
}

// WriteFile serializes the card as indented JSON.
func (c *CardFile) WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func parseAsOf(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("as_of %q: %w", s, err)
	}
	return t, nil
}

// ReadCardFile loads a card from disk.
func ReadCardFile(path string) (*CardFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c CardFile
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("card file %s: %w", path, err)
	}
	return &c, nil
}
