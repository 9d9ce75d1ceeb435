// Package loader ingests raw events from tabular input files.
//
// The configured entity/time/count columns map onto schema.Event fields;
// every other column is surfaced as a categorical or numeric attribute so
// driver analysis can break transitions down without re-reading the file.
package loader

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// timestampFormats are accepted for event timestamps, tried in order.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FileSource loads events from a local CSV or Parquet file.
type FileSource struct{}

var _ contract.EventSource = (*FileSource)(nil) // Compile-time check

// NewFileSource creates a file-backed event source.
func NewFileSource() *FileSource {
	return &FileSource{}
}

// Load reads the configured input file, dispatching on its extension.
func (s *FileSource) Load(ctx context.Context, cfg *contract.Config) ([]schema.Event, error) {
	if cfg.InputPath == "" {
		return nil, contract.NewConfigurationError("input", "input file path is required")
	}

	switch strings.ToLower(filepath.Ext(cfg.InputPath)) {
	case ".csv":
		return loadCSV(ctx, cfg)
	case ".parquet":
		return loadParquet(ctx, cfg)
	default:
		return nil, contract.NewConfigurationError("input", "unsupported input format %q, expected .csv or .parquet", filepath.Ext(cfg.InputPath))
	}
}

// parseTimestamp parses one timestamp cell.
func parseTimestamp(value string) (time.Time, bool) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
