package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorityx/priorityx/schema"
)

func movePoint(period schema.Period, q schema.Quadrant, hasDelta bool, xDelta, yDelta float64) schema.MovementPoint {
	return schema.MovementPoint{
		ScoredPoint: schema.ScoredPoint{Period: period},
		Quadrant:    q,
		HasDelta:    hasDelta,
		XDelta:      xDelta,
		YDelta:      yDelta,
	}
}

func TestExtractTransitions(t *testing.T) {
	records := []schema.MovementRecord{
		{
			Entity: "a",
			Points: []schema.MovementPoint{
				movePoint("2024-Q1", schema.Q3, false, 0, 0),
				movePoint("2024-Q2", schema.Q2, true, 0.1, 0.2), // Q3 -> Q2 emitted
				movePoint("2024-Q3", schema.Q2, true, 0.5, 0.5), // stable, never emitted
				movePoint("2024-Q4", schema.Q1, true, 0.1, 0.1), // Q2 -> Q1 emitted
			},
		},
		{
			Entity: "b",
			Points: []schema.MovementPoint{
				movePoint("2024-Q1", schema.Q1, false, 0, 0),
				movePoint("2024-Q3", schema.Q3, false, 0, 0), // gap, no delta, skipped
			},
		},
	}

	transitions := ExtractTransitions(records, false)
	require.Len(t, transitions, 2)
	assert.Equal(t, "a", transitions[0].Entity)
	assert.Equal(t, schema.Q3, transitions[0].QuadrantFrom)
	assert.Equal(t, schema.Q2, transitions[0].QuadrantTo)
	assert.Equal(t, schema.Period("2024-Q1"), transitions[0].PeriodFrom)
	assert.Equal(t, schema.Period("2024-Q2"), transitions[0].PeriodTo)
	assert.Equal(t, schema.Q1, transitions[1].QuadrantTo)
}

func TestExtractTransitionsRiskIncreasing(t *testing.T) {
	records := []schema.MovementRecord{
		{
			Entity: "a",
			Points: []schema.MovementPoint{
				movePoint("2024-Q1", schema.Q1, false, 0, 0),
				movePoint("2024-Q2", schema.Q3, true, -0.5, -0.5), // risk decreasing
				movePoint("2024-Q3", schema.Q4, true, 0.5, 0),     // Q3 -> Q4 increases
				movePoint("2024-Q4", schema.Q2, true, -0.5, 0.5),  // Q4 -> Q2 same rank
			},
		},
	}

	all := ExtractTransitions(records, false)
	assert.Len(t, all, 3)

	risky := ExtractTransitions(records, true)
	require.Len(t, risky, 1)
	assert.Equal(t, schema.Q4, risky[0].QuadrantTo)

	// The filtered set is a subset of the unfiltered one.
	for _, tr := range risky {
		assert.Contains(t, all, tr)
	}
}

func TestEnrichPriorities(t *testing.T) {
	transitions := []schema.TransitionRecord{
		{QuadrantFrom: schema.Q3, QuadrantTo: schema.Q1, X: 1, Y: 1, XDelta: 0.5, YDelta: 0.5},
		{QuadrantFrom: schema.Q2, QuadrantTo: schema.Q3, X: -0.5, Y: -0.5, XDelta: -0.05, YDelta: -0.05},
	}

	EnrichPriorities(transitions, DefaultPriorityOptions())

	assert.Equal(t, schema.PriorityCritical, transitions[0].Priority)
	assert.Equal(t, schema.ReasonCriticalXYSpike, transitions[0].Reason)
	assert.Equal(t, schema.SpikeXY, transitions[0].SpikeAxis)

	assert.Equal(t, schema.PriorityLow, transitions[1].Priority)
	assert.Equal(t, schema.SpikeNone, transitions[1].SpikeAxis)
}
