// Package schema has configs, models and shared helpers for all parts of priorityx.
package schema

import "time"

// Event represents a single raw observation attributed to an entity.
// It includes the timestamp used for period bucketing, a weight that
// contributes to period counts, and optional categorical/numeric
// attributes used by driver analysis.
type Event struct {
	Entity    string             // Identifier of the entity the event belongs to
	Timestamp time.Time          // When the event occurred
	Weight    float64            // Count contribution (1 unless a count column is mapped)
	Attrs     map[string]string  // Categorical attributes (region, issue type, ...)
	Values    map[string]float64 // Numeric attributes (amount, resolution days, ...)
}

// PanelRow is one aggregated (entity, period) cell of the panel.
// At most one row exists per (entity, period) pair.
type PanelRow struct {
	Entity  string   // Entity identifier
	Period  Period   // Canonical period bucket
	Count   float64  // Summed event weight within the period
	XMetric *float64 // Mean of the configured x metric column, if any
	YMetric *float64 // Mean of the configured y metric column, if any
}

// ScoredPoint is the Score Provider's output for one (entity, period).
// XScore and YScore are always finite; a failed fit never produces a point.
type ScoredPoint struct {
	Entity string  `json:"entity"`  // Entity identifier
	Period Period  `json:"period"`  // Period the scores apply to
	XScore float64 `json:"x_score"` // Position on the x axis (volume-style effect)
	YScore float64 `json:"y_score"` // Position on the y axis (growth-style effect)
	Count  float64 `json:"count"`   // Period count carried through for reporting
}

// FitStatus reports whether a Score Provider fit converged cleanly.
type FitStatus struct {
	Converged bool     // False when the fit is degenerate or under-determined
	Warnings  []string // Human-readable fit diagnostics
}

// FitResult bundles scored points with the fit status for one panel.
type FitResult struct {
	Points []ScoredPoint
	Status FitStatus
}

// FitOptions configures a Score Provider invocation.
type FitOptions struct {
	XEffect     string // Name of the x effect ("volume" by default)
	YEffect     string // Name of the y effect ("growth" by default)
	Family      string // Model family hint passed through to the backend
	PriorScales []float64
	Seed        int64 // Explicit seed so repeated runs are reproducible
}

// MovementPoint is one (period, scores, quadrant, count) observation in an
// entity's trajectory, with deltas against the chronologically previous
// period when that period is exactly one bucket earlier.
type MovementPoint struct {
	ScoredPoint
	Quadrant      Quadrant `json:"quadrant"`
	XDelta        float64  `json:"x_delta"`
	YDelta        float64  `json:"y_delta"`
	CountDelta    float64  `json:"count_delta"`
	PercentChange *float64 `json:"percent_change"` // Nil when the base count is zero or no delta exists
	HasDelta      bool     `json:"has_delta"`      // False for the first point and across period gaps
}

// MovementRecord is the ordered trajectory of one entity across the
// tracking window. Immutable once produced for a given run.
type MovementRecord struct {
	Entity string          `json:"entity"`
	Points []MovementPoint `json:"points"` // Sorted chronologically
}

// TransitionRecord captures one quadrant change between two adjacent
// periods, enriched in place by the priority classifier.
type TransitionRecord struct {
	Entity        string   `json:"entity"`
	PeriodFrom    Period   `json:"period_from"`
	PeriodTo      Period   `json:"period_to"`
	QuadrantFrom  Quadrant `json:"from_quadrant"`
	QuadrantTo    Quadrant `json:"to_quadrant"`
	X             float64  `json:"x"` // X score at PeriodTo
	Y             float64  `json:"y"` // Y score at PeriodTo
	XDelta        float64  `json:"x_delta"`
	YDelta        float64  `json:"y_delta"`
	CountDelta    float64  `json:"count_delta"`
	PercentChange *float64 `json:"percent_change"`

	Priority  int       `json:"priority"`   // Tier 1 (Crisis) through 4 (Low)
	Reason    string    `json:"reason"`     // Machine-checkable label of the clause that fired
	SpikeAxis SpikeAxis `json:"spike_axis"` // Independent of tier
}

// QuadrantResult is one row of the single-window priority matrix output.
type QuadrantResult struct {
	Entity   string   `json:"entity"`
	XScore   float64  `json:"x_score"`
	YScore   float64  `json:"y_score"`
	Count    float64  `json:"count"`
	Quadrant Quadrant `json:"quadrant"`
}

// Diagnostic is a non-fatal issue recorded while a pipeline run continues.
type Diagnostic struct {
	Period  Period `json:"period,omitempty"` // Period the issue applies to, if any
	Kind    string `json:"kind"`             // "model_fit", "insufficient_data", "bin_spec", ...
	Message string `json:"message"`
}

// RunMeta carries run-level metadata and collected non-fatal diagnostics,
// returned alongside primary results rather than raised.
type RunMeta struct {
	RunID       string       `json:"run_id"`                // UUID of this pipeline run
	Granularity Granularity  `json:"granularity"`           // Granularity used for period bucketing
	Periods     []Period     `json:"periods"`               // Periods processed, in chronological order
	Cumulative  bool         `json:"cumulative"`            // True when panels accumulate events to date
	Signature   string       `json:"signature,omitempty"`   // Order-independent input signature for caching
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"` // Non-fatal issues collected during the run
}
