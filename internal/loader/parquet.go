package loader

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// parquetBatchSize bounds memory while streaming row batches.
const parquetBatchSize = 1024

// loadParquet reads a Parquet file into events. Rows are decoded
// dynamically so attribute columns need no predeclared struct.
func loadParquet(ctx context.Context, cfg *contract.Config) ([]schema.Event, error) {
	file, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, contract.NewConfigurationError("input", "cannot open %s: %v", cfg.InputPath, err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, contract.NewConfigurationError("input", "cannot stat %s: %v", cfg.InputPath, err)
	}
	pf, err := parquet.OpenFile(file, stat.Size())
	if err != nil {
		return nil, contract.NewConfigurationError("input", "cannot read parquet file: %v", err)
	}

	reader := parquet.NewGenericReader[map[string]any](pf, pf.Schema())
	defer func() { _ = reader.Close() }()

	var events []schema.Event
	rows := make([]map[string]any, parquetBatchSize)
	line := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i] = make(map[string]any)
		}
		n, err := reader.Read(rows)
		for i := 0; i < n; i++ {
			line++
			ev, convErr := eventFromRow(cfg, rows[i], line)
			if convErr != nil {
				return nil, convErr
			}
			events = append(events, ev)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, contract.NewConfigurationError("input", "parquet read error: %v", err)
		}
	}
	return events, nil
}

// eventFromRow maps one decoded parquet row onto an event.
func eventFromRow(cfg *contract.Config, row map[string]any, line int) (schema.Event, error) {
	entity, ok := asString(row[cfg.EntityCol])
	if !ok {
		return schema.Event{}, contract.NewConfigurationError("entity-col", "row %d: column %q missing or not a string", line, cfg.EntityCol)
	}
	ts, ok := asTimestamp(row[cfg.TimeCol])
	if !ok {
		return schema.Event{}, contract.NewConfigurationError("time-col", "row %d: column %q missing or not a timestamp", line, cfg.TimeCol)
	}

	ev := schema.Event{
		Entity:    entity,
		Timestamp: ts,
		Attrs:     make(map[string]string),
		Values:    make(map[string]float64),
	}
	if cfg.CountCol != "" {
		weight, ok := asFloat(row[cfg.CountCol])
		if !ok {
			return schema.Event{}, contract.NewConfigurationError("count-col", "row %d: column %q missing or not numeric", line, cfg.CountCol)
		}
		ev.Weight = weight
	}

	for name, value := range row {
		if name == cfg.EntityCol || name == cfg.TimeCol || name == cfg.CountCol || value == nil {
			continue
		}
		if v, ok := asFloat(value); ok {
			ev.Values[name] = v
		} else if s, ok := asString(value); ok && s != "" {
			ev.Attrs[name] = s
		}
	}
	return ev, nil
}

// asString coerces a decoded parquet value to a string.
func asString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

// asFloat coerces a decoded parquet value to a float64.
func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

// asTimestamp coerces a decoded parquet value to a time. Integer values are
// treated as epoch milliseconds; strings go through the shared formats.
func asTimestamp(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case string:
		return parseTimestamp(v)
	case []byte:
		return parseTimestamp(string(v))
	default:
		return time.Time{}, false
	}
}
