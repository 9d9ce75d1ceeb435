package scorer

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorityx/priorityx/schema"
)

func row(entity string, period schema.Period, count float64) schema.PanelRow {
	return schema.PanelRow{Entity: entity, Period: period, Count: count}
}

func TestFitEmptyPanel(t *testing.T) {
	_, err := New().Fit(context.Background(), nil, schema.FitOptions{})
	assert.Error(t, err)
}

func TestFitCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Fit(ctx, []schema.PanelRow{row("a", "2024-01", 1)}, schema.FitOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFitStandardizesWithinPeriod(t *testing.T) {
	panel := []schema.PanelRow{
		row("a", "2024-01", 1),
		row("b", "2024-01", 10),
		row("c", "2024-01", 100),
	}

	result, err := New().Fit(context.Background(), panel, schema.FitOptions{})
	require.NoError(t, err)
	assert.True(t, result.Status.Converged)
	require.Len(t, result.Points, 3)

	// Centered: x scores sum to ~0 and are ordered by count.
	var sum float64
	for _, pt := range result.Points {
		sum += pt.XScore
	}
	assert.InDelta(t, 0, sum, 1e-9)
	assert.Less(t, result.Points[0].XScore, result.Points[1].XScore)
	assert.Less(t, result.Points[1].XScore, result.Points[2].XScore)

	// No previous period in the panel: growth centers at zero.
	for _, pt := range result.Points {
		assert.Zero(t, pt.YScore)
	}
}

func TestFitGrowthAxis(t *testing.T) {
	panel := []schema.PanelRow{
		row("grower", "2024-01", 10),
		row("shrinker", "2024-01", 10),
		row("grower", "2024-02", 100),
		row("shrinker", "2024-02", 2),
	}

	result, err := New().Fit(context.Background(), panel, schema.FitOptions{})
	require.NoError(t, err)
	assert.True(t, result.Status.Converged)

	byKey := make(map[string]schema.ScoredPoint)
	for _, pt := range result.Points {
		byKey[pt.Entity+"/"+string(pt.Period)] = pt
	}
	assert.Positive(t, byKey["grower/2024-02"].YScore)
	assert.Negative(t, byKey["shrinker/2024-02"].YScore)
}

func TestFitDegeneratePeriods(t *testing.T) {
	t.Run("single entity", func(t *testing.T) {
		panel := []schema.PanelRow{row("only", "2024-01", 5)}
		result, err := New().Fit(context.Background(), panel, schema.FitOptions{})
		require.NoError(t, err)
		assert.False(t, result.Status.Converged)
		assert.Empty(t, result.Points)
		assert.NotEmpty(t, result.Status.Warnings)
	})

	t.Run("zero variance", func(t *testing.T) {
		panel := []schema.PanelRow{
			row("a", "2024-01", 5),
			row("b", "2024-01", 5),
		}
		result, err := New().Fit(context.Background(), panel, schema.FitOptions{})
		require.NoError(t, err)
		assert.False(t, result.Status.Converged)
	})

	t.Run("one good period converges", func(t *testing.T) {
		panel := []schema.PanelRow{
			row("only", "2024-01", 5), // degenerate, warned
			row("a", "2024-02", 1),
			row("b", "2024-02", 10),
		}
		result, err := New().Fit(context.Background(), panel, schema.FitOptions{})
		require.NoError(t, err)
		assert.True(t, result.Status.Converged)
		require.Len(t, result.Points, 2)
		assert.NotEmpty(t, result.Status.Warnings)
		for _, pt := range result.Points {
			assert.Equal(t, schema.Period("2024-02"), pt.Period)
		}
	})
}

func TestFitMetricOverrides(t *testing.T) {
	x1, x2 := 3.0, 9.0
	y1, y2 := 1.0, -1.0
	panel := []schema.PanelRow{
		{Entity: "a", Period: "2024-01", Count: 100, XMetric: &x1, YMetric: &y1},
		{Entity: "b", Period: "2024-01", Count: 100, XMetric: &x2, YMetric: &y2},
	}

	result, err := New().Fit(context.Background(), panel, schema.FitOptions{})
	require.NoError(t, err)
	require.True(t, result.Status.Converged, "identical counts standardize fine when a metric overrides x")
	require.Len(t, result.Points, 2)

	assert.Negative(t, result.Points[0].XScore)
	assert.Positive(t, result.Points[1].XScore)
	assert.Positive(t, result.Points[0].YScore)
	assert.Negative(t, result.Points[1].YScore)
}

func TestFitDeterministic(t *testing.T) {
	panel := []schema.PanelRow{
		row("b", "2024-01", 10),
		row("a", "2024-01", 1),
		row("c", "2024-02", 7),
		row("d", "2024-02", 3),
	}
	first, err := New().Fit(context.Background(), panel, schema.FitOptions{Seed: 42})
	require.NoError(t, err)

	shuffled := []schema.PanelRow{panel[2], panel[0], panel[3], panel[1]}
	second, err := New().Fit(context.Background(), shuffled, schema.FitOptions{Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMeanStd(t *testing.T) {
	mean, std := meanStd([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-9)
	assert.InDelta(t, 2.0, std, 1e-9)

	mean, std = meanStd(nil)
	assert.Zero(t, mean)
	assert.Zero(t, std)
}

func TestFitScoresAlwaysFinite(t *testing.T) {
	panel := []schema.PanelRow{
		row("a", "2024-01", 0),
		row("b", "2024-01", 1e12),
		row("a", "2024-02", 1e12),
		row("b", "2024-02", 0),
	}
	result, err := New().Fit(context.Background(), panel, schema.FitOptions{})
	require.NoError(t, err)
	for _, pt := range result.Points {
		assert.False(t, math.IsNaN(pt.XScore) || math.IsInf(pt.XScore, 0))
		assert.False(t, math.IsNaN(pt.YScore) || math.IsInf(pt.YScore, 0))
	}
}
