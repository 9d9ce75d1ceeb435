package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorityx/priorityx/schema"
)

func ev(entity string, ts time.Time, weight float64) schema.Event {
	return schema.Event{Entity: entity, Timestamp: ts, Weight: weight}
}

func TestBuildPanelAggregation(t *testing.T) {
	events := []schema.Event{
		ev("a", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), 0), // Weight 0 counts as 1
		ev("a", time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), 3),
		ev("a", time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), 1),
		ev("b", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), 2),
	}

	rows, err := BuildPanel(events, PanelOptions{Granularity: schema.Quarterly})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Sorted by entity then period
	assert.Equal(t, "a", rows[0].Entity)
	assert.Equal(t, schema.Period("2024-Q1"), rows[0].Period)
	assert.Equal(t, 4.0, rows[0].Count)
	assert.Equal(t, schema.Period("2024-Q2"), rows[1].Period)
	assert.Equal(t, 1.0, rows[1].Count)
	assert.Equal(t, "b", rows[2].Entity)
	assert.Equal(t, 2.0, rows[2].Count)
}

func TestBuildPanelRejectsBadInput(t *testing.T) {
	_, err := BuildPanel(nil, PanelOptions{Granularity: "weekly"})
	assert.Error(t, err)

	_, err = BuildPanel([]schema.Event{{Entity: "a"}}, PanelOptions{Granularity: schema.Monthly})
	assert.Error(t, err, "zero timestamp must be rejected")
}

func TestBuildPanelDateFilter(t *testing.T) {
	events := []schema.Event{
		ev("a", time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), 1),
		ev("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1),
		ev("a", time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), 1),
		ev("a", time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), 1),
	}

	rows, err := BuildPanel(events, PanelOptions{
		Granularity: schema.Monthly,
		MinDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxDate:     time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), // exclusive
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, schema.Period("2024-01"), rows[0].Period)
	assert.Equal(t, schema.Period("2024-06"), rows[1].Period)
}

func TestBuildPanelMinObservations(t *testing.T) {
	events := []schema.Event{
		ev("seen-twice", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1),
		ev("seen-twice", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 1),
		ev("seen-once", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1),
	}

	rows, err := BuildPanel(events, PanelOptions{Granularity: schema.Quarterly, MinObservations: 2})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, "seen-twice", row.Entity)
	}
}

func TestBuildPanelMinTotalCount(t *testing.T) {
	events := []schema.Event{
		ev("big", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10),
		ev("small", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3),
	}

	rows, err := BuildPanel(events, PanelOptions{Granularity: schema.Yearly, MinTotalCount: 5})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "big", rows[0].Entity)
}

func TestBuildPanelDeclineWindow(t *testing.T) {
	events := []schema.Event{
		ev("active", time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), 1),
		ev("gone", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1),
	}

	rows, err := BuildPanel(events, PanelOptions{Granularity: schema.Quarterly, DeclineWindow: 2})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "active", rows[0].Entity, "entity last seen 3 periods before the latest is dropped")

	// Disabled window keeps everyone
	rows, err = BuildPanel(events, PanelOptions{Granularity: schema.Quarterly})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestBuildPanelMetricMeans(t *testing.T) {
	events := []schema.Event{
		{Entity: "a", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Values: map[string]float64{"amount": 10}},
		{Entity: "a", Timestamp: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Values: map[string]float64{"amount": 30}},
		{Entity: "a", Timestamp: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}, // missing value is excluded from the mean
	}

	rows, err := BuildPanel(events, PanelOptions{Granularity: schema.Monthly, XMetricCol: "amount", YMetricCol: "days"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].XMetric)
	assert.InDelta(t, 20.0, *rows[0].XMetric, 1e-9)
	assert.Nil(t, rows[0].YMetric, "column absent from every event yields no metric")
	assert.Equal(t, 3.0, rows[0].Count)
}

func TestBuildPanelDeterministic(t *testing.T) {
	events := []schema.Event{
		ev("b", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 1),
		ev("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1),
		ev("c", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 1),
	}
	first, err := BuildPanel(events, PanelOptions{Granularity: schema.Monthly})
	require.NoError(t, err)

	reversed := []schema.Event{events[2], events[1], events[0]}
	second, err := BuildPanel(reversed, PanelOptions{Granularity: schema.Monthly})
	require.NoError(t, err)

	assert.Equal(t, first, second, "panel is a pure function of the event set")
}
