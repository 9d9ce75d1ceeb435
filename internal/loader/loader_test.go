package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorityx/priorityx/internal/contract"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func baseConfig(path string) *contract.Config {
	return &contract.Config{
		InputPath: path,
		EntityCol: "service",
		TimeCol:   "occurred_at",
		CountCol:  "count",
	}
}

func TestLoadCSV(t *testing.T) {
	path := writeTempFile(t, "events.csv", `service,occurred_at,count,region,amount
checkout,2024-01-15T10:00:00Z,3,emea,12.5
billing,2024-02-01 08:30:00,1,,
search,2024-03-10,2,apac,7
`)

	events, err := NewFileSource().Load(context.Background(), baseConfig(path))
	require.NoError(t, err)
	require.Len(t, events, 3)

	first := events[0]
	assert.Equal(t, "checkout", first.Entity)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 3.0, first.Weight)
	assert.Equal(t, map[string]string{"region": "emea"}, first.Attrs)
	assert.Equal(t, map[string]float64{"amount": 12.5}, first.Values)

	// Empty cells never become attributes.
	assert.Empty(t, events[1].Attrs)
	assert.Empty(t, events[1].Values)

	// Date-only timestamps are accepted.
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), events[2].Timestamp)
}

func TestLoadCSVWithoutCountColumn(t *testing.T) {
	path := writeTempFile(t, "events.csv", `service,occurred_at
checkout,2024-01-15
`)

	cfg := baseConfig(path)
	cfg.CountCol = ""
	events, err := NewFileSource().Load(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Zero(t, events[0].Weight)
}

func TestLoadCSVErrors(t *testing.T) {
	t.Run("missing entity column", func(t *testing.T) {
		path := writeTempFile(t, "events.csv", "name,occurred_at,count\na,2024-01-01,1\n")
		_, err := NewFileSource().Load(context.Background(), baseConfig(path))
		var cfgErr *contract.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "entity-col", cfgErr.Field)
	})

	t.Run("missing time column", func(t *testing.T) {
		path := writeTempFile(t, "events.csv", "service,ts,count\na,2024-01-01,1\n")
		_, err := NewFileSource().Load(context.Background(), baseConfig(path))
		var cfgErr *contract.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "time-col", cfgErr.Field)
	})

	t.Run("bad timestamp", func(t *testing.T) {
		path := writeTempFile(t, "events.csv", "service,occurred_at,count\na,last tuesday,1\n")
		_, err := NewFileSource().Load(context.Background(), baseConfig(path))
		var cfgErr *contract.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "time-col", cfgErr.Field)
		assert.Contains(t, cfgErr.Detail, "line 2")
	})

	t.Run("bad count", func(t *testing.T) {
		path := writeTempFile(t, "events.csv", "service,occurred_at,count\na,2024-01-01,many\n")
		_, err := NewFileSource().Load(context.Background(), baseConfig(path))
		var cfgErr *contract.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "count-col", cfgErr.Field)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeTempFile(t, "events.json", "{}")
		_, err := NewFileSource().Load(context.Background(), baseConfig(path))
		var cfgErr *contract.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, cfgErr.Detail, ".json")
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewFileSource().Load(context.Background(), &contract.Config{})
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		path := writeTempFile(t, "events.csv", "service,occurred_at,count\na,2024-01-01,1\n")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewFileSource().Load(ctx, baseConfig(path))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

type parquetEvent struct {
	Service    string  `parquet:"service"`
	OccurredAt int64   `parquet:"occurred_at"`
	Count      float64 `parquet:"count"`
	Region     string  `parquet:"region"`
	Amount     float64 `parquet:"amount"`
}

func TestLoadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.parquet")
	file, err := os.Create(path)
	require.NoError(t, err)

	writer := parquet.NewGenericWriter[parquetEvent](file)
	_, err = writer.Write([]parquetEvent{
		{
			Service:    "checkout",
			OccurredAt: time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC).UnixMilli(),
			Count:      3,
			Region:     "emea",
			Amount:     12.5,
		},
		{
			Service:    "billing",
			OccurredAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli(),
			Count:      1,
			Region:     "apac",
			Amount:     7,
		},
	})
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, file.Close())

	events, err := NewFileSource().Load(context.Background(), baseConfig(path))
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	assert.Equal(t, "checkout", first.Entity)
	assert.Equal(t, time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC), first.Timestamp)
	assert.Equal(t, 3.0, first.Weight)
	assert.Equal(t, "emea", first.Attrs["region"])
	assert.Equal(t, 12.5, first.Values["amount"])
}

func TestParseTimestamp(t *testing.T) {
	for _, value := range []string{
		"2024-06-01T12:30:00Z",
		"2024-06-01 12:30:00",
		"2024-06-01",
	} {
		ts, ok := parseTimestamp(value)
		assert.True(t, ok, value)
		assert.Equal(t, 2024, ts.Year())
	}

	_, ok := parseTimestamp("06/01/2024")
	assert.False(t, ok)
}
