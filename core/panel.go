package core

import (
	"sort"
	"time"

	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// PanelOptions controls panel aggregation and filtering.
type PanelOptions struct {
	Granularity     schema.Granularity
	MinObservations int       // Drop entities seen in fewer distinct periods
	MinTotalCount   float64   // Drop entities whose summed count is below this
	DeclineWindow   int       // Drop entities last seen more than N periods before the latest (0 = disabled)
	MinDate         time.Time // Inclusive lower bound, zero = open
	MaxDate         time.Time // Exclusive upper bound, zero = open
	XMetricCol      string    // Numeric attribute averaged into PanelRow.XMetric
	YMetricCol      string    // Numeric attribute averaged into PanelRow.YMetric
}

// panelCell accumulates one (entity, period) aggregate.
type panelCell struct {
	count float64
	xSum  float64
	xN    int
	ySum  float64
	yN    int
}

// BuildPanel turns raw events into an entity-by-period aggregate table.
// Count is the summed event weight per cell; metric columns aggregate to
// their mean. Filters apply in order: date filter, min observations,
// min total count, decline window. The output is a pure function of the
// input, sorted by entity then period.
func BuildPanel(events []schema.Event, opts PanelOptions) ([]schema.PanelRow, error) {
	if _, ok := schema.ValidGranularities[opts.Granularity]; !ok {
		return nil, contract.NewConfigurationError("granularity", "unknown granularity %q", opts.Granularity)
	}

	minDate, maxDate := opts.MinDate, opts.MaxDate

	// --- 1. Date filter + aggregation ---
	cells := make(map[string]map[schema.Period]*panelCell)
	for i := range events {
		ev := &events[i]
		if ev.Timestamp.IsZero() {
			return nil, contract.NewConfigurationError("timestamp", "event for entity %q has no parseable timestamp", ev.Entity)
		}
		if !minDate.IsZero() && ev.Timestamp.Before(minDate) {
			continue
		}
		if !maxDate.IsZero() && !ev.Timestamp.Before(maxDate) {
			continue
		}

		period := schema.PeriodOf(ev.Timestamp, opts.Granularity)
		byPeriod, ok := cells[ev.Entity]
		if !ok {
			byPeriod = make(map[schema.Period]*panelCell)
			cells[ev.Entity] = byPeriod
		}
		cell, ok := byPeriod[period]
		if !ok {
			cell = &panelCell{}
			byPeriod[period] = cell
		}

		cell.count += eventWeight(ev)
		if opts.XMetricCol != "" {
			if v, ok := ev.Values[opts.XMetricCol]; ok {
				cell.xSum += v
				cell.xN++
			}
		}
		if opts.YMetricCol != "" {
			if v, ok := ev.Values[opts.YMetricCol]; ok {
				cell.ySum += v
				cell.yN++
			}
		}
	}

	// --- 2. Entity-level filters ---
	latest := latestPeriodIndex(cells)
	entities := make([]string, 0, len(cells))
	for entity, byPeriod := range cells {
		if opts.MinObservations > 0 && len(byPeriod) < opts.MinObservations {
			continue
		}

		var total float64
		lastIdx := 0
		for period, cell := range byPeriod {
			total += cell.count
			if idx, err := schema.PeriodIndex(period); err == nil && idx > lastIdx {
				lastIdx = idx
			}
		}
		if opts.MinTotalCount > 0 && total < opts.MinTotalCount {
			continue
		}
		if opts.DeclineWindow > 0 && latest-lastIdx > opts.DeclineWindow {
			continue
		}

		entities = append(entities, entity)
	}
	sort.Strings(entities)

	// --- 3. Deterministic row assembly ---
	var rows []schema.PanelRow
	for _, entity := range entities {
		byPeriod := cells[entity]
		periods := make([]schema.Period, 0, len(byPeriod))
		for period := range byPeriod {
			periods = append(periods, period)
		}
		sort.Slice(periods, func(i, j int) bool {
			return schema.ComparePeriods(periods[i], periods[j]) < 0
		})

		for _, period := range periods {
			cell := byPeriod[period]
			row := schema.PanelRow{Entity: entity, Period: period, Count: cell.count}
			if cell.xN > 0 {
				mean := cell.xSum / float64(cell.xN)
				row.XMetric = &mean
			}
			if cell.yN > 0 {
				mean := cell.ySum / float64(cell.yN)
				row.YMetric = &mean
			}
			rows = append(rows, row)
		}
	}

	return rows, nil
}

// eventWeight returns an event's count contribution, defaulting to 1.
func eventWeight(ev *schema.Event) float64 {
	if ev.Weight == 0 {
		return 1
	}
	return ev.Weight
}

// latestPeriodIndex finds the newest period index across all entities.
func latestPeriodIndex(cells map[string]map[schema.Period]*panelCell) int {
	latest := 0
	for _, byPeriod := range cells {
		for period := range byPeriod {
			if idx, err := schema.PeriodIndex(period); err == nil && idx > latest {
				latest = idx
			}
		}
	}
	return latest
}
