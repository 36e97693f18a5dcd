package extractors

import (
	"context"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
	"github.com/yoshikawa-river/keiba-features/internal/domain/lookup"
	"github.com/yoshikawa-river/keiba-features/internal/domain/model"
)

// PedigreeExtractor derives lineage features from the horse's pedigree
// record and the externally supplied sire aggregates. A horse without a
// pedigree record keeps the neutral defaults; nothing here ever errors on
// missing reference data.
type PedigreeExtractor struct {
	tables   *lookup.Tables
	manifest feature.Manifest
}

// NewPedigree builds the extractor against a table set.
func NewPedigree(tables *lookup.Tables) *PedigreeExtractor {
	columns := []string{
		"sire_win_rate", "sire_place_rate", "sire_progeny_count",
		"damsire_win_rate", "damsire_place_rate", "damsire_progeny_count",
		"bloodline_family_code", "damsire_family_code",
		"nick_score", "bloodline_match_score", "distance_aptitude",
		"inbreeding_flag", "imported_sire_flag", "dam_vitality",
	}
	defaults := map[string]float64{
		"nick_score":            0.5,
		"bloodline_match_score": 0.5,
		"distance_aptitude":     0.5,
	}
	return &PedigreeExtractor{
		tables:   tables,
		manifest: feature.MustManifest("pedigree", columns, defaults),
	}
}

func (e *PedigreeExtractor) Name() string               { return "pedigree" }
func (e *PedigreeExtractor) Phase() Phase               { return Phase1 }
func (e *PedigreeExtractor) Manifest() feature.Manifest { return e.manifest }
func (e *PedigreeExtractor) Requires() []string         { return nil }

func (e *PedigreeExtractor) Extract(ctx context.Context, batch *Batch) (*feature.Block, error) {
	block := feature.NewBlock(e.manifest, len(batch.Targets))
	for i := range batch.Targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t := &batch.Targets[i]
		ped := t.Pedigree
		if ped == nil {
			continue
		}

		sireFamily := e.tables.Family(ped.SireName)
		damSireFamily := e.tables.Family(ped.DamSireName)
		vitality := float64(ped.DamProgenyCount) / 10
		if vitality > 1 {
			vitality = 1
		}

		cells := map[string]float64{
			"bloodline_family_code": e.tables.FamilyCode(sireFamily),
			"damsire_family_code":   e.tables.FamilyCode(damSireFamily),
			"nick_score":            e.tables.NickScore(ped.SireName, ped.DamSireName),
			"bloodline_match_score": e.tables.FamilyAffinity(sireFamily, damSireFamily),
			"distance_aptitude":     e.tables.AptitudeScore(ped.SireName, model.BucketForDistance(t.Race.Distance)),
			"inbreeding_flag":       boolFlag(ped.HasInbreeding),
			"imported_sire_flag":    boolFlag(ped.IsImportedSire),
			"dam_vitality":          vitality,
		}
		if st := t.SireStats; st != nil {
			cells["sire_win_rate"] = st.WinRate
			cells["sire_place_rate"] = st.PlaceRate
			cells["sire_progeny_count"] = float64(st.ProgenyCount)
		}
		if st := t.DamSireStats; st != nil {
			cells["damsire_win_rate"] = st.WinRate
			cells["damsire_place_rate"] = st.PlaceRate
			cells["damsire_progeny_count"] = float64(st.ProgenyCount)
		}
		if err := setAll(block, i, cells); err != nil {
			return nil, err
		}
	}
	return block, nil
}

var _ Extractor = (*PedigreeExtractor)(nil)
