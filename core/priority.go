package core

import (
	"math"

	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// Priority rule thresholds.
const (
	// SpikeThreshold is the single-axis delta magnitude that marks a spike
	// and triggers the Crisis tier.
	SpikeThreshold = 0.40

	// InvestigateDeltaThreshold is the single-axis delta magnitude that
	// triggers the Investigate tier.
	InvestigateDeltaThreshold = 0.15

	crisisCountDelta      = 50.0
	crisisPercentChange   = 500.0
	investigatePercent    = 100.0
	investigateCountDelta = 5.0
)

// PriorityOptions carries the tunable margins of the rule table. The
// references are the quadrant boundaries of the period being classified
// (zero for centered scores).
type PriorityOptions struct {
	XRef           float64
	YRef           float64
	StrongMargin   float64 // Q1-entry "strong position" margin above the references
	BoundaryMargin float64 // Band around a boundary that triggers Monitor
}

// DefaultPriorityOptions returns the documented default margins around
// zero-centered references.
func DefaultPriorityOptions() PriorityOptions {
	return PriorityOptions{
		StrongMargin:   contract.DefaultStrongPositionMargin,
		BoundaryMargin: contract.DefaultBoundaryMargin,
	}
}

// SpikeAxisOf computes the spike marker for a pair of deltas, independent
// of any tier decision.
func SpikeAxisOf(xDelta, yDelta float64) schema.SpikeAxis {
	spikeX := math.Abs(xDelta) >= SpikeThreshold
	spikeY := math.Abs(yDelta) >= SpikeThreshold
	switch {
	case spikeX && spikeY:
		return schema.SpikeXY
	case spikeX:
		return schema.SpikeX
	case spikeY:
		return schema.SpikeY
	default:
		return schema.SpikeNone
	}
}

// ClassifyPriority runs the deterministic decision table over one
// transition, top-down with first match winning, and returns the tier, the
// machine-checkable reason label of the clause that fired, and the spike
// axis. The spike axis is computed independently of the tier, so a caller
// may probe quadrant-stable period pairs directly even though the pipeline
// only attaches markers to emitted transitions.
func ClassifyPriority(
	quadrantFrom, quadrantTo schema.Quadrant,
	x, y, xDelta, yDelta, countDelta float64,
	percentChange *float64,
	opts PriorityOptions,
) (int, string, schema.SpikeAxis) {
	spike := SpikeAxisOf(xDelta, yDelta)
	pct := 0.0
	pctKnown := percentChange != nil
	if pctKnown {
		pct = *percentChange
	}

	absX := math.Abs(xDelta)
	absY := math.Abs(yDelta)
	enteringQ1 := quadrantTo == schema.Q1 && quadrantFrom != schema.Q1

	// --- Tier 1 (Crisis) ---
	switch {
	case spike == schema.SpikeXY:
		return schema.PriorityCritical, schema.ReasonCriticalXYSpike, spike
	case spike == schema.SpikeX:
		return schema.PriorityCritical, schema.ReasonCriticalXSpike, spike
	case spike == schema.SpikeY:
		return schema.PriorityCritical, schema.ReasonCriticalYSpike, spike
	case countDelta >= crisisCountDelta && pctKnown && pct >= crisisPercentChange:
		return schema.PriorityCritical, schema.ReasonCriticalVolumeSurge, spike
	}

	// --- Tier 2 (Investigate) ---
	strongPosition := x > opts.XRef+opts.StrongMargin && y > opts.YRef+opts.StrongMargin
	switch {
	case absX > InvestigateDeltaThreshold:
		return schema.PriorityInvestigate, schema.ReasonInvestigateXDelta, spike
	case absY > InvestigateDeltaThreshold:
		return schema.PriorityInvestigate, schema.ReasonInvestigateYDelta, spike
	case enteringQ1 && strongPosition:
		return schema.PriorityInvestigate, schema.ReasonInvestigateStrongQ1Entry, spike
	case pctKnown && pct >= investigatePercent && countDelta >= investigateCountDelta:
		return schema.PriorityInvestigate, schema.ReasonInvestigateVolumeGrowth, spike
	}

	// --- Tier 3 (Monitor) ---
	nearBoundary := math.Abs(x-opts.XRef) <= opts.BoundaryMargin || math.Abs(y-opts.YRef) <= opts.BoundaryMargin
	switch {
	case nearBoundary:
		return schema.PriorityMonitor, schema.ReasonMonitorBoundary, spike
	case enteringQ1:
		return schema.PriorityMonitor, schema.ReasonMonitorGentleQ1Entry, spike
	}

	// --- Tier 4 (Low) ---
	return schema.PriorityLow, schema.ReasonLowDefault, spike
}
