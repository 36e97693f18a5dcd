// Package sink writes pipeline outputs: the feature matrix as CSV and the
// run report as JSON, locally or to Kafka for downstream training jobs.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yoshikawa-river/keiba-features/internal/domain/feature"
)

// WriteMatrixFile writes the feature matrix to path as CSV. The file is
// written through a temp file and renamed, so readers never observe a
// partial matrix.
func WriteMatrixFile(path string, t *feature.Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".matrix-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp matrix file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := t.WriteCSV(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing matrix: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing matrix file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("publishing matrix file: %w", err)
	}
	return nil
}

// WriteReportFile writes a run report to path as indented JSON.
func WriteReportFile(path string, report any) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
