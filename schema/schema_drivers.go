package schema

// DriverEntry is one ranked contributor to a transition's count delta,
// either a categorical value or a numeric bin.
type DriverEntry struct {
	Name            string   `json:"name"`              // Category value or bin label
	CountFrom       float64  `json:"count_from"`        // Events in the from-period
	CountTo         float64  `json:"count_to"`          // Events in the to-period
	Delta           float64  `json:"delta"`             // CountTo - CountFrom
	PercentOfChange *float64 `json:"percent_of_change"` // Share of the total |delta|, nil when total is zero
	Direction       string   `json:"direction"`         // "up", "down", or "flat"
}

// ColumnDrivers holds the ranked breakdown for one raw-event column.
type ColumnDrivers struct {
	TopDrivers     []DriverEntry `json:"top_drivers"`
	TotalDelta     float64       `json:"total_delta"`
	TopNExplainPct *float64      `json:"top_n_explain_pct"` // |top-n delta| over |total delta|, nil when total is zero
	BinEdges       []float64     `json:"bin_edges,omitempty"`
}

// VolumeChange summarizes the cumulative count movement of a transition.
type VolumeChange struct {
	CountFrom     float64  `json:"count_from"`
	CountTo       float64  `json:"count_to"`
	AbsoluteDelta float64  `json:"absolute_delta"`
	PercentChange *float64 `json:"percent_change"`
}

// GrowthChange summarizes the weekly-average event rate on both sides.
type GrowthChange struct {
	WeeklyAvgFrom  float64 `json:"weekly_avg_from"`
	WeeklyAvgTo    float64 `json:"weekly_avg_to"`
	WeeklyAvgDelta float64 `json:"weekly_avg_delta"`
}

// PeriodCounts reports the raw event counts matched in each period.
type PeriodCounts struct {
	EventsFrom float64 `json:"events_from"`
	EventsTo   float64 `json:"events_to"`
}

// Magnitude aggregates the overall size of a transition.
type Magnitude struct {
	VolumeChange VolumeChange `json:"volume_change"`
	GrowthChange GrowthChange `json:"growth_change"`
	PeriodCounts PeriodCounts `json:"period_counts"`
}

// TransitionSummary restates the transition a driver analysis explains.
type TransitionSummary struct {
	Entity          string   `json:"entity"`
	PeriodFrom      Period   `json:"period_from"`
	PeriodTo        Period   `json:"period_to"`
	QuadrantFrom    Quadrant `json:"from_quadrant"`
	QuadrantTo      Quadrant `json:"to_quadrant"`
	QuadrantChanged bool     `json:"quadrant_changed"`
	RiskLevelChange int      `json:"risk_level_change"` // RiskRank delta, positive means riskier
}

// SpikeDriver marks one axis whose delta crossed the spike threshold.
type SpikeDriver struct {
	Axis  SpikeAxis `json:"axis"`
	Delta float64   `json:"delta"`
}

// PriorityBlock is the classifier verdict attached to a driver analysis.
type PriorityBlock struct {
	Priority     int       `json:"priority"`
	PriorityName string    `json:"priority_name"`
	Reason       string    `json:"reason"`
	SpikeAxis    SpikeAxis `json:"spike_axis"`
}

// DriverMeta records how the analysis was configured, including
// auto-detection decisions, for auditability.
type DriverMeta struct {
	RunID                   string       `json:"run_id"`
	SubcategoryColumnsUsed  []string     `json:"subcategory_columns_used"`
	SubcategoryAutoDetected bool         `json:"subcategory_columns_auto_detected"`
	NumericColumnsUsed      []string     `json:"numeric_columns_used"`
	Diagnostics             []Diagnostic `json:"diagnostics,omitempty"`
}

// DriverAnalysis is the full structured record returned for one transition.
type DriverAnalysis struct {
	Transition         TransitionSummary        `json:"transition"`
	Magnitude          Magnitude                `json:"magnitude"`
	SpikeDrivers       []SpikeDriver            `json:"spike_drivers"`
	SubcategoryDrivers map[string]ColumnDrivers `json:"subcategory_drivers"`
	NumericDrivers     map[string]ColumnDrivers `json:"numeric_drivers"`
	Priority           PriorityBlock            `json:"priority"`
	Meta               DriverMeta               `json:"meta"`
}
