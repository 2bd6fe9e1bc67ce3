// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultPrefix is the column-name prefix fMRIPrep uses for motion outlier
// regressors (motion_outlier00, motion_outlier01, ...).
const DefaultPrefix = "motion_outlier"

// DefaultLogLevel is the diagnostics level used when none is configured.
const DefaultLogLevel = "warn"

// ExtractionConfig holds settings for the extraction command.
type ExtractionConfig struct {
	// Prefix selects which header columns are written to the outlier list.
	Prefix string `json:"prefix" yaml:"prefix"`

	// LedgerPath is the SQLite database that records each extraction.
	// Empty disables recording.
	LedgerPath string `json:"ledger,omitempty" yaml:"ledger,omitempty"`

	// LogLevel is the zerolog level for diagnostics on stderr
	// (trace, debug, info, warn, error, disabled).
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// WithDefaults returns a copy of c with empty fields set to their defaults.
func (c ExtractionConfig) WithDefaults() ExtractionConfig {
	if c.Prefix == "" {
		c.Prefix = DefaultPrefix
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	return c
}
