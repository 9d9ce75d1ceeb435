package loader

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// loadCSV reads a header-first CSV file into events.
func loadCSV(ctx context.Context, cfg *contract.Config) ([]schema.Event, error) {
	file, err := os.Open(cfg.InputPath)
	if err != nil {
		return nil, contract.NewConfigurationError("input", "cannot open %s: %v", cfg.InputPath, err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, contract.NewConfigurationError("input", "cannot read CSV header: %v", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[name] = i
	}
	entityIdx, ok := colIndex[cfg.EntityCol]
	if !ok {
		return nil, contract.NewConfigurationError("entity-col", "column %q not found in %s", cfg.EntityCol, cfg.InputPath)
	}
	timeIdx, ok := colIndex[cfg.TimeCol]
	if !ok {
		return nil, contract.NewConfigurationError("time-col", "column %q not found in %s", cfg.TimeCol, cfg.InputPath)
	}
	countIdx := -1
	if cfg.CountCol != "" {
		if countIdx, ok = colIndex[cfg.CountCol]; !ok {
			return nil, contract.NewConfigurationError("count-col", "column %q not found in %s", cfg.CountCol, cfg.InputPath)
		}
	}

	var events []schema.Event
	line := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, contract.NewConfigurationError("input", "CSV parse error: %v", err)
		}
		line++

		ev, err := eventFromRecord(cfg, header, record, entityIdx, timeIdx, countIdx, line)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// eventFromRecord maps one CSV record onto an event.
func eventFromRecord(cfg *contract.Config, header, record []string, entityIdx, timeIdx, countIdx, line int) (schema.Event, error) {
	ts, ok := parseTimestamp(record[timeIdx])
	if !ok {
		return schema.Event{}, contract.NewConfigurationError("time-col", "line %d: unparseable timestamp %q", line, record[timeIdx])
	}

	ev := schema.Event{
		Entity:    record[entityIdx],
		Timestamp: ts,
		Attrs:     make(map[string]string),
		Values:    make(map[string]float64),
	}
	if countIdx >= 0 {
		weight, err := strconv.ParseFloat(record[countIdx], 64)
		if err != nil {
			return schema.Event{}, contract.NewConfigurationError("count-col", "line %d: unparseable count %q", line, record[countIdx])
		}
		ev.Weight = weight
	}

	for i, name := range header {
		if i == entityIdx || i == timeIdx || i == countIdx || i >= len(record) {
			continue
		}
		cell := record[i]
		if cell == "" {
			continue
		}
		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			ev.Values[name] = v
		} else {
			ev.Attrs[name] = cell
		}
	}
	return ev, nil
}
