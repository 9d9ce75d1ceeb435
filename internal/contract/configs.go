package contract

import (
	"maps"
	"runtime"
	"strings"
	"time"

	"github.com/priorityx/priorityx/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit     = 25
	MaxResultLimit         = 1000
	DefaultPrecision       = 2
	DefaultMinObservations = 2
	DefaultMinTotalCount   = 10
	DefaultTopN            = 10
	DefaultMinDelta        = 1

	// DefaultStrongPositionMargin is how far both scores must exceed their
	// period references for a Q1 entry to count as a "strong position".
	DefaultStrongPositionMargin = 0.25

	// DefaultBoundaryMargin is the band around a quadrant boundary that
	// triggers the Monitor tier.
	DefaultBoundaryMargin = 0.10
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateFormats are accepted for --min-date/--max-date values, tried in order.
var DateFormats = []string{time.RFC3339, "2006-01-02"}

// Config holds the validated runtime configuration for a pipeline run.
type Config struct {
	InputPath string // Path to the events file (.csv or .parquet)

	EntityCol  string // Column holding the entity identifier
	TimeCol    string // Column holding the event timestamp
	CountCol   string // Optional column summed as the period count
	XMetricCol string // Optional column averaged as the x metric
	YMetricCol string // Optional column averaged as the y metric

	Granularity     schema.Granularity
	MinObservations int     // Drop entities observed in fewer distinct periods
	MinTotalCount   float64 // Drop entities whose summed count is below this
	DeclineWindow   int     // Drop entities last seen more than N periods ago
	MinDate         time.Time
	MaxDate         time.Time

	Cumulative     bool // Accumulate events to each period's end instead of windowing
	RiskIncreasing bool // Keep only transitions toward a riskier quadrant

	XEffect string
	YEffect string
	Family  string
	Seed    int64

	StrongMargin   float64 // Strong-position margin for the Tier 2 Q1-entry clause
	BoundaryMargin float64 // Boundary band for the Monitor tier

	// Driver analysis parameters.
	Entity          string
	PeriodFrom      schema.Period
	PeriodTo        schema.Period
	SubcategoryCols []string
	NumericCols     map[string]BinSpec
	TopN            int
	MinDelta        float64

	Workers     int
	ResultLimit int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	UseColors   bool
	Width       int // Terminal width override (0 = auto-detect)

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config
// file). Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	InputPathStr string

	EntityCol  string `mapstructure:"entity-col"`
	TimeCol    string `mapstructure:"time-col"`
	CountCol   string `mapstructure:"count-col"`
	XMetricCol string `mapstructure:"x-metric"`
	YMetricCol string `mapstructure:"y-metric"`

	Granularity     string  `mapstructure:"granularity"`
	MinObservations int     `mapstructure:"min-observations"`
	MinTotalCount   float64 `mapstructure:"min-total-count"`
	DeclineWindow   int     `mapstructure:"decline-window"`
	MinDate         string  `mapstructure:"min-date"`
	MaxDate         string  `mapstructure:"max-date"`

	Cumulative     bool `mapstructure:"cumulative"`
	RiskIncreasing bool `mapstructure:"risk-increasing"`

	XEffect string `mapstructure:"x-effect"`
	YEffect string `mapstructure:"y-effect"`
	Family  string `mapstructure:"family"`
	Seed    int64  `mapstructure:"seed"`

	StrongMargin   float64 `mapstructure:"strong-margin"`
	BoundaryMargin float64 `mapstructure:"boundary-margin"`

	// --- Fields from driversCmd.Flags() ---
	Entity          string  `mapstructure:"entity"`
	PeriodFrom      string  `mapstructure:"from"`
	PeriodTo        string  `mapstructure:"to"`
	SubcategoryCols string  `mapstructure:"subcategory-cols"`
	NumericCols     string  `mapstructure:"numeric-cols"`
	TopN            int     `mapstructure:"top-n"`
	MinDelta        float64 `mapstructure:"min-delta"`

	Workers    int    `mapstructure:"workers"`
	Limit      int    `mapstructure:"limit"`
	Precision  int    `mapstructure:"precision"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Color      string `mapstructure:"color"`
	Width      int    `mapstructure:"width"`

	CacheBackend   string `mapstructure:"cache-backend"`
	CacheDBConnect string `mapstructure:"cache-db-connect"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.SubcategoryCols != nil {
		clone.SubcategoryCols = make([]string, len(c.SubcategoryCols))
		copy(clone.SubcategoryCols, c.SubcategoryCols)
	}
	if c.NumericCols != nil {
		clone.NumericCols = make(map[string]BinSpec, len(c.NumericCols))
		maps.Copy(clone.NumericCols, c.NumericCols)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processColumns(cfg, input); err != nil {
		return err
	}
	if err := processFilters(cfg, input); err != nil {
		return err
	}
	if err := processDriverInputs(cfg, input); err != nil {
		return err
	}
	return validateBackendConfigs(cfg, input)
}

// validateSimpleInputs processes and validates all non-column fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.InputPath = input.InputPathStr
	cfg.OutputFile = input.OutputFile
	cfg.Cumulative = input.Cumulative
	cfg.RiskIncreasing = input.RiskIncreasing
	cfg.Seed = input.Seed
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return NewConfigurationError("color", "%v", err)
	}
	cfg.UseColors = colors

	// --- 1. ResultLimit Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return NewConfigurationError("limit", "must be greater than 0 and at most %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	// --- 2. Workers Validation ---
	if input.Workers <= 0 {
		return NewConfigurationError("workers", "must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- 3. Granularity Validation ---
	cfg.Granularity = schema.Granularity(strings.ToLower(input.Granularity))
	if _, ok := schema.ValidGranularities[cfg.Granularity]; !ok {
		return NewConfigurationError("granularity", "invalid value %q, must be yearly, semiannual, quarterly, monthly", input.Granularity)
	}

	// --- 4. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 4 {
		return NewConfigurationError("precision", "must be between 1 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return NewConfigurationError("output", "invalid format %q, must be text, csv, json, parquet", input.Output)
	}

	// --- 5. Margin Validation ---
	cfg.StrongMargin = input.StrongMargin
	cfg.BoundaryMargin = input.BoundaryMargin
	if cfg.StrongMargin < 0 || cfg.BoundaryMargin < 0 {
		return NewConfigurationError("margins", "strong-margin and boundary-margin must be non-negative")
	}

	cfg.XEffect = input.XEffect
	cfg.YEffect = input.YEffect
	cfg.Family = input.Family

	return nil
}

// processColumns validates the column mapping.
func processColumns(cfg *Config, input *ConfigRawInput) error {
	cfg.EntityCol = strings.TrimSpace(input.EntityCol)
	cfg.TimeCol = strings.TrimSpace(input.TimeCol)
	cfg.CountCol = strings.TrimSpace(input.CountCol)
	cfg.XMetricCol = strings.TrimSpace(input.XMetricCol)
	cfg.YMetricCol = strings.TrimSpace(input.YMetricCol)

	if cfg.EntityCol == "" {
		return NewConfigurationError("entity-col", "entity column is required")
	}
	if cfg.TimeCol == "" {
		return NewConfigurationError("time-col", "timestamp column is required")
	}
	if cfg.EntityCol == cfg.TimeCol {
		return NewConfigurationError("time-col", "entity and timestamp columns must differ")
	}
	return nil
}

// processFilters validates the panel filter settings.
func processFilters(cfg *Config, input *ConfigRawInput) error {
	if input.MinObservations < 0 {
		return NewConfigurationError("min-observations", "must be non-negative (received %d)", input.MinObservations)
	}
	cfg.MinObservations = input.MinObservations

	if input.MinTotalCount < 0 {
		return NewConfigurationError("min-total-count", "must be non-negative (received %g)", input.MinTotalCount)
	}
	cfg.MinTotalCount = input.MinTotalCount

	if input.DeclineWindow < 0 {
		return NewConfigurationError("decline-window", "must be non-negative (received %d)", input.DeclineWindow)
	}
	cfg.DeclineWindow = input.DeclineWindow

	parseDate := func(field, s string) (time.Time, error) {
		for _, layout := range DateFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, NewConfigurationError(field, "invalid date %q, expected ISO8601 or YYYY-MM-DD", s)
	}

	if input.MinDate != "" {
		t, err := parseDate("min-date", input.MinDate)
		if err != nil {
			return err
		}
		cfg.MinDate = t
	}
	if input.MaxDate != "" {
		t, err := parseDate("max-date", input.MaxDate)
		if err != nil {
			return err
		}
		cfg.MaxDate = t
	}
	if !cfg.MinDate.IsZero() && !cfg.MaxDate.IsZero() && cfg.MinDate.After(cfg.MaxDate) {
		return NewConfigurationError("min-date", "min-date cannot be after max-date")
	}
	return nil
}

// processDriverInputs validates driver analysis parameters.
func processDriverInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Entity = strings.TrimSpace(input.Entity)
	cfg.PeriodFrom = schema.Period(strings.TrimSpace(input.PeriodFrom))
	cfg.PeriodTo = schema.Period(strings.TrimSpace(input.PeriodTo))
	cfg.SubcategoryCols = ParseColumnList(input.SubcategoryCols)

	specs, err := ParseNumericColsSpec(input.NumericCols)
	if err != nil {
		return err
	}
	cfg.NumericCols = specs

	if input.TopN < 0 {
		return NewConfigurationError("top-n", "must be non-negative (received %d)", input.TopN)
	}
	cfg.TopN = input.TopN

	if input.MinDelta < 0 {
		return NewConfigurationError("min-delta", "must be non-negative (received %g)", input.MinDelta)
	}
	cfg.MinDelta = input.MinDelta
	return nil
}

// validateBackendConfigs validates the cache backend configuration.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return NewConfigurationError("cache-backend", "invalid backend %q, must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	return ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect)
}
