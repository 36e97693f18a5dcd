package pipeline

import "time"

// Report summarizes one completed run. It travels with the matrix: written
// next to the CSV artifact and optionally published to the run topic.
type Report struct {
	RunID       string    `json:"run_id"`
	AsOf        time.Time `json:"as_of"`
	GeneratedAt time.Time `json:"generated_at"`

	Rows         int      `json:"rows"`
	ColumnCount  int      `json:"column_count"`
	FeatureNames []string `json:"feature_names"`

	// ExtractorFeatures counts merged columns per extractor.
	ExtractorFeatures map[string]int `json:"extractor_features"`

	Phase1 []string `json:"phase1"`
	Phase2 []string `json:"phase2"`

	// DegradedExtractors lists phase-2 extractors that failed and were
	// skipped. Degraded mirrors len > 0 for readability downstream.
	DegradedExtractors []string `json:"degraded_extractors,omitempty"`
	Degraded           bool     `json:"degraded"`

	DurationSeconds float64 `json:"duration_seconds"`
}
