package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/priorityx/priorityx/schema"
)

func pctPtr(v float64) *float64 { return &v }

func TestSpikeAxisOf(t *testing.T) {
	assert.Equal(t, schema.SpikeNone, SpikeAxisOf(0.39, -0.39))
	assert.Equal(t, schema.SpikeX, SpikeAxisOf(0.40, 0))
	assert.Equal(t, schema.SpikeX, SpikeAxisOf(-0.50, 0))
	assert.Equal(t, schema.SpikeY, SpikeAxisOf(0, -0.40))
	assert.Equal(t, schema.SpikeXY, SpikeAxisOf(0.41, 0.42))
}

func TestClassifyPriorityTable(t *testing.T) {
	opts := DefaultPriorityOptions()

	tests := []struct {
		name           string
		from, to       schema.Quadrant
		x, y           float64
		xDelta, yDelta float64
		countDelta     float64
		pct            *float64
		wantTier       int
		wantReason     string
		wantSpike      schema.SpikeAxis
	}{
		{
			name: "xy spike", from: schema.Q3, to: schema.Q1,
			x: 1, y: 1, xDelta: 0.5, yDelta: 0.5,
			wantTier: schema.PriorityCritical, wantReason: schema.ReasonCriticalXYSpike, wantSpike: schema.SpikeXY,
		},
		{
			name: "x spike alone", from: schema.Q3, to: schema.Q4,
			x: 1, y: -1, xDelta: -0.45, yDelta: 0.1,
			wantTier: schema.PriorityCritical, wantReason: schema.ReasonCriticalXSpike, wantSpike: schema.SpikeX,
		},
		{
			name: "y spike alone", from: schema.Q4, to: schema.Q1,
			x: 1, y: 1, xDelta: 0.1, yDelta: 0.40,
			wantTier: schema.PriorityCritical, wantReason: schema.ReasonCriticalYSpike, wantSpike: schema.SpikeY,
		},
		{
			name: "volume surge without spike", from: schema.Q3, to: schema.Q2,
			x: -0.5, y: 0.5, xDelta: 0.05, yDelta: 0.05,
			countDelta: 60, pct: pctPtr(600),
			wantTier: schema.PriorityCritical, wantReason: schema.ReasonCriticalVolumeSurge, wantSpike: schema.SpikeNone,
		},
		{
			name: "surge needs both count and percent", from: schema.Q3, to: schema.Q2,
			x: -0.5, y: 0.5, xDelta: 0.05, yDelta: 0.05,
			countDelta: 60, pct: pctPtr(400),
			wantTier: schema.PriorityLow, wantReason: schema.ReasonLowDefault, wantSpike: schema.SpikeNone,
		},
		{
			name: "surge ignored when percent unknown", from: schema.Q3, to: schema.Q2,
			x: -0.5, y: 0.5, xDelta: 0.05, yDelta: 0.05,
			countDelta: 60, pct: nil,
			wantTier: schema.PriorityLow, wantReason: schema.ReasonLowDefault, wantSpike: schema.SpikeNone,
		},
		{
			name: "x delta investigate", from: schema.Q3, to: schema.Q4,
			x: 0.5, y: -0.5, xDelta: 0.2, yDelta: 0.01,
			wantTier: schema.PriorityInvestigate, wantReason: schema.ReasonInvestigateXDelta, wantSpike: schema.SpikeNone,
		},
		{
			name: "y delta investigate", from: schema.Q3, to: schema.Q2,
			x: -0.5, y: 0.5, xDelta: 0.01, yDelta: -0.2,
			wantTier: schema.PriorityInvestigate, wantReason: schema.ReasonInvestigateYDelta, wantSpike: schema.SpikeNone,
		},
		{
			name: "strong q1 entry", from: schema.Q2, to: schema.Q1,
			x: 0.3, y: 0.3, xDelta: 0.12, yDelta: 0.01,
			wantTier: schema.PriorityInvestigate, wantReason: schema.ReasonInvestigateStrongQ1Entry, wantSpike: schema.SpikeNone,
		},
		{
			name: "volume growth", from: schema.Q3, to: schema.Q2,
			x: -0.5, y: 0.5, xDelta: 0.05, yDelta: 0.05,
			countDelta: 6, pct: pctPtr(150),
			wantTier: schema.PriorityInvestigate, wantReason: schema.ReasonInvestigateVolumeGrowth, wantSpike: schema.SpikeNone,
		},
		{
			name: "boundary monitor", from: schema.Q3, to: schema.Q4,
			x: 0.05, y: -0.5, xDelta: 0.1, yDelta: 0.01,
			wantTier: schema.PriorityMonitor, wantReason: schema.ReasonMonitorBoundary, wantSpike: schema.SpikeNone,
		},
		{
			name: "gentle q1 entry off the boundary", from: schema.Q2, to: schema.Q1,
			x: 0.2, y: 0.2, xDelta: 0.05, yDelta: 0.05,
			wantTier: schema.PriorityMonitor, wantReason: schema.ReasonMonitorGentleQ1Entry, wantSpike: schema.SpikeNone,
		},
		{
			name: "nothing fires", from: schema.Q2, to: schema.Q3,
			x: -0.5, y: -0.5, xDelta: -0.05, yDelta: -0.05,
			wantTier: schema.PriorityLow, wantReason: schema.ReasonLowDefault, wantSpike: schema.SpikeNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, reason, spike := ClassifyPriority(tt.from, tt.to, tt.x, tt.y, tt.xDelta, tt.yDelta, tt.countDelta, tt.pct, opts)
			assert.Equal(t, tt.wantTier, tier)
			assert.Equal(t, tt.wantReason, reason)
			assert.Equal(t, tt.wantSpike, spike)
		})
	}
}

func TestClassifyPrioritySpikeIndependentOfTier(t *testing.T) {
	// The volume-surge clause fires before the delta clauses, yet the spike
	// axis still reflects the raw deltas.
	tier, reason, spike := ClassifyPriority(
		schema.Q3, schema.Q2, -0.5, 0.5,
		0.41, 0.01, 60, pctPtr(600), DefaultPriorityOptions(),
	)
	assert.Equal(t, schema.PriorityCritical, tier)
	assert.Equal(t, schema.ReasonCriticalXSpike, reason)
	assert.Equal(t, schema.SpikeX, spike)
}

func TestClassifyPriorityTierMonotoneInDelta(t *testing.T) {
	// Growing |xDelta| with everything else fixed never lowers the urgency.
	opts := DefaultPriorityOptions()
	lastTier := schema.PriorityLow
	for _, d := range []float64{0.01, 0.16, 0.25, 0.40, 0.60} {
		tier, _, _ := ClassifyPriority(schema.Q2, schema.Q3, -0.5, -0.5, d, 0, 0, nil, opts)
		assert.LessOrEqual(t, tier, lastTier, "delta %g", d)
		lastTier = tier
	}
}
