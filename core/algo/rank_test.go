package algo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorityx/priorityx/schema"
)

func TestRankTransitions(t *testing.T) {
	transitions := []schema.TransitionRecord{
		{Entity: "small-move", Priority: schema.PriorityLow, XDelta: 0.1, YDelta: 0.1},
		{Entity: "crisis", Priority: schema.PriorityCritical, XDelta: 0.5, YDelta: 0},
		{Entity: "big-low", Priority: schema.PriorityLow, XDelta: 0.3, YDelta: 0.3},
	}

	ranked := RankTransitions(transitions, 0)
	require.Len(t, ranked, 3)
	assert.Equal(t, "crisis", ranked[0].Entity)
	assert.Equal(t, "big-low", ranked[1].Entity, "same tier orders by movement magnitude")
	assert.Equal(t, "small-move", ranked[2].Entity)

	limited := RankTransitions(transitions, 2)
	assert.Len(t, limited, 2)
}

func TestRankMatrix(t *testing.T) {
	results := []schema.QuadrantResult{
		{Entity: "quiet", Quadrant: schema.Q3, Count: 100},
		{Entity: "hot-small", Quadrant: schema.Q1, Count: 5},
		{Entity: "hot-big", Quadrant: schema.Q1, Count: 50},
		{Entity: "established", Quadrant: schema.Q4, Count: 80},
	}

	ranked := RankMatrix(results, 0)
	require.Len(t, ranked, 4)
	assert.Equal(t, "hot-big", ranked[0].Entity)
	assert.Equal(t, "hot-small", ranked[1].Entity)
	assert.Equal(t, "established", ranked[2].Entity)
	assert.Equal(t, "quiet", ranked[3].Entity)

	limited := RankMatrix(results, 1)
	require.Len(t, limited, 1)
	assert.Equal(t, "hot-big", limited[0].Entity)
}
