package domain

import "time"

// QualityReport is a point-in-time structural snapshot of the engineered
// table, computed once per run and never mutated afterwards.
type QualityReport struct {
	TotalRows          int               `json:"total_rows"`
	TotalColumns       int               `json:"total_columns"`
	MissingValues      int               `json:"missing_values"`
	DuplicateRows      int               `json:"duplicate_rows"`
	LabelDistribution  map[int]int       `json:"label_distribution"`
	NumericColumns     int               `json:"numeric_columns"`
	CategoricalColumns int               `json:"categorical_columns"`
	DataTypes          map[string]string `json:"data_types"`
	NonFiniteValues    int               `json:"non_finite_values"`
	Issues             []string          `json:"issues"`
}

// PipelineResult is the terminal record of one pipeline run. It is the sole
// value surfaced to callers; failed runs carry an error description instead
// of crashing the process.
type PipelineResult struct {
	RunID          string         `json:"run_id"`
	Success        bool           `json:"success"`
	Rows           int            `json:"rows"`
	Columns        int            `json:"columns"`
	StorageURI     string         `json:"storage_uri,omitempty"`
	FeatureStoreOK bool           `json:"feature_store_ok"`
	Report         *QualityReport `json:"report,omitempty"`
	Error          string         `json:"error,omitempty"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
}
