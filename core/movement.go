package core

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// TrackOptions controls a movement tracking run.
type TrackOptions struct {
	Granularity   schema.Granularity
	Periods       []schema.Period // Explicit window; nil auto-detects the full range
	MinTotalCount float64         // Per-period entity count floor
	Cumulative    bool            // Accumulate events to each period's end instead of windowing
	Workers       int             // Concurrent per-period fits (each fit only sees its own panel)
	Fit           schema.FitOptions
}

// periodFit holds the outcome of scoring one period.
type periodFit struct {
	period schema.Period
	points []schema.ScoredPoint
	diag   *schema.Diagnostic
}

// TrackMovement builds one panel per period, obtains scores from the
// provider, and assembles per-entity trajectories with quadrants and
// inter-period deltas.
//
// Periods are fitted on a worker pool (each period's fit is independent
// given its panel) but merged back in chronological order before delta
// computation, so deltas only ever depend on the immediately preceding
// period. A period whose fit fails or does not converge is dropped for all
// entities and recorded as a diagnostic; tracking continues.
func TrackMovement(ctx context.Context, events []schema.Event, opts TrackOptions, provider contract.ScoreProvider) ([]schema.MovementRecord, *schema.RunMeta, error) {
	if _, ok := schema.ValidGranularities[opts.Granularity]; !ok {
		return nil, nil, contract.NewConfigurationError("granularity", "unknown granularity %q", opts.Granularity)
	}

	meta := &schema.RunMeta{
		RunID:       uuid.NewString(),
		Granularity: opts.Granularity,
		Cumulative:  opts.Cumulative,
	}
	if len(events) == 0 {
		return nil, meta, nil
	}

	periods := opts.Periods
	if len(periods) == 0 {
		var err error
		periods, err = detectPeriodRange(events, opts.Granularity)
		if err != nil {
			return nil, nil, err
		}
	}
	meta.Periods = periods

	// --- 1. Score each period (parallel fits, unique slot per period) ---
	fits := make([]periodFit, len(periods))
	workers := max(opts.Workers, 1)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, period := range periods {
		if ctx.Err() != nil {
			break // Abandon between period iterations
		}
		wg.Add(1)
		go func(idx int, p schema.Period) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			fits[idx] = fitPeriod(ctx, events, p, opts, provider)
		}(i, period)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, meta, err
	}

	// --- 2. Merge in period order ---
	byEntity := make(map[string][]schema.MovementPoint)
	for _, fit := range fits {
		if fit.diag != nil {
			meta.Diagnostics = append(meta.Diagnostics, *fit.diag)
			continue
		}
		for _, pt := range fit.points {
			byEntity[pt.Entity] = append(byEntity[pt.Entity], schema.MovementPoint{
				ScoredPoint: pt,
				Quadrant:    Classify(pt.XScore, pt.YScore, 0, 0),
			})
		}
	}

	// --- 3. Deltas between chronologically adjacent present periods ---
	entities := make([]string, 0, len(byEntity))
	for entity := range byEntity {
		entities = append(entities, entity)
	}
	sort.Strings(entities)

	records := make([]schema.MovementRecord, 0, len(entities))
	for _, entity := range entities {
		points := byEntity[entity]
		computeDeltas(points)
		records = append(records, schema.MovementRecord{Entity: entity, Points: points})
	}

	return records, meta, nil
}

// fitPeriod builds the panel for one period and invokes the provider.
func fitPeriod(ctx context.Context, events []schema.Event, period schema.Period, opts TrackOptions, provider contract.ScoreProvider) periodFit {
	panel := buildPeriodPanel(events, period, opts)
	if len(panel) == 0 {
		diag := schema.Diagnostic{Period: period, Kind: "insufficient_data", Message: "no entities met the period count floor"}
		return periodFit{period: period, diag: &diag}
	}

	result, err := provider.Fit(ctx, panel, opts.Fit)
	if err != nil {
		diag := contract.ModelFitDiagnostic(period, []string{err.Error()})
		return periodFit{period: period, diag: &diag}
	}
	if !result.Status.Converged {
		diag := contract.ModelFitDiagnostic(period, result.Status.Warnings)
		return periodFit{period: period, diag: &diag}
	}

	// The fit may have seen trailing context; only the target period's
	// points belong to this slot.
	points := make([]schema.ScoredPoint, 0, len(result.Points))
	for _, pt := range result.Points {
		if pt.Period == period {
			points = append(points, pt)
		}
	}
	if len(points) == 0 {
		diag := contract.ModelFitDiagnostic(period, []string{"fit produced no points for the period"})
		return periodFit{period: period, diag: &diag}
	}

	return periodFit{period: period, points: points}
}

// buildPeriodPanel aggregates the events visible to one period's fit: the
// period's own span plus the immediately preceding period when windowed
// (the provider needs the trailing period for its growth axis), or
// everything up to the period's end when cumulative. Rows below the count
// floor are dropped from the target period only.
func buildPeriodPanel(events []schema.Event, period schema.Period, opts TrackOptions) []schema.PanelRow {
	_, end, err := schema.PeriodSpan(period)
	if err != nil {
		return nil
	}

	counts := make(map[string]map[schema.Period]float64)
	for i := range events {
		ev := &events[i]
		evPeriod := schema.PeriodOf(ev.Timestamp, opts.Granularity)
		if opts.Cumulative {
			if !ev.Timestamp.Before(end) {
				continue
			}
		} else if evPeriod != period {
			if dist, err := schema.PeriodDistance(evPeriod, period); err != nil || dist != 1 {
				continue
			}
		}
		if counts[ev.Entity] == nil {
			counts[ev.Entity] = make(map[schema.Period]float64)
		}
		counts[ev.Entity][evPeriod] += eventWeight(ev)
	}

	entities := make([]string, 0, len(counts))
	for entity, byPeriod := range counts {
		if opts.MinTotalCount > 0 && byPeriod[period] < opts.MinTotalCount {
			continue
		}
		entities = append(entities, entity)
	}
	sort.Strings(entities)

	var panel []schema.PanelRow
	for _, entity := range entities {
		byPeriod := counts[entity]
		periods := make([]schema.Period, 0, len(byPeriod))
		for p := range byPeriod {
			periods = append(periods, p)
		}
		sort.Slice(periods, func(i, j int) bool {
			return schema.ComparePeriods(periods[i], periods[j]) < 0
		})
		for _, p := range periods {
			panel = append(panel, schema.PanelRow{Entity: entity, Period: p, Count: byPeriod[p]})
		}
	}
	return panel
}

// computeDeltas fills in deltas for points whose previous point is exactly
// one period earlier. Percent change stays nil when the base count is zero.
func computeDeltas(points []schema.MovementPoint) {
	for i := 1; i < len(points); i++ {
		prev := &points[i-1]
		cur := &points[i]
		dist, err := schema.PeriodDistance(prev.Period, cur.Period)
		if err != nil || dist != 1 {
			continue
		}
		cur.HasDelta = true
		cur.XDelta = cur.XScore - prev.XScore
		cur.YDelta = cur.YScore - prev.YScore
		cur.CountDelta = cur.Count - prev.Count
		if prev.Count != 0 {
			pct := (cur.Count - prev.Count) / prev.Count * 100
			cur.PercentChange = &pct
		}
	}
}

// detectPeriodRange enumerates every period between the earliest and
// latest event timestamps.
func detectPeriodRange(events []schema.Event, g schema.Granularity) ([]schema.Period, error) {
	first := events[0].Timestamp
	last := events[0].Timestamp
	for i := range events {
		ts := events[i].Timestamp
		if ts.IsZero() {
			return nil, contract.NewConfigurationError("timestamp", "event for entity %q has no parseable timestamp", events[i].Entity)
		}
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	return schema.PeriodsBetween(schema.PeriodOf(first, g), schema.PeriodOf(last, g))
}
