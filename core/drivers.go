package core

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// Auto-detection bounds for candidate subcategory columns. A categorical
// attribute qualifies when its distinct-value count falls in this range.
const (
	autoDetectMinCardinality = 2
	autoDetectMaxCardinality = 25
)

// ColumnDetector chooses candidate subcategory columns from raw events.
// It is a pluggable strategy so tests can substitute a deterministic one.
type ColumnDetector func(events []schema.Event) []string

// DriverOptions configures one driver analysis.
type DriverOptions struct {
	Entity          string
	PeriodFrom      schema.Period
	PeriodTo        schema.Period
	SubcategoryCols []string // Empty triggers auto-detection
	NumericCols     map[string]contract.BinSpec
	TopN            int     // 0 = unbounded
	MinDelta        float64 // Minimum |delta| for a categorical value to rank
	Priority        PriorityOptions
	Detect          ColumnDetector // Nil uses DetectSubcategoryColumns
}

// AnalyzeDrivers attributes a transition's count delta to categorical
// subcategories and numeric bins of the underlying raw events, and bundles
// the result with magnitude aggregates, spike markers, and the priority
// verdict for the transition.
//
// It returns an InsufficientDataError when either period has zero matching
// raw events for the entity; the caller may retry with relaxed thresholds.
func AnalyzeDrivers(records []schema.MovementRecord, events []schema.Event, opts DriverOptions) (*schema.DriverAnalysis, error) {
	pointFrom, pointTo, err := findTransitionPoints(records, opts)
	if err != nil {
		return nil, err
	}

	eventsFrom, err := sliceEntityPeriod(events, opts.Entity, opts.PeriodFrom)
	if err != nil {
		return nil, err
	}
	eventsTo, err := sliceEntityPeriod(events, opts.Entity, opts.PeriodTo)
	if err != nil {
		return nil, err
	}

	analysis := &schema.DriverAnalysis{
		Transition:         summarizeTransition(pointFrom, pointTo, opts),
		Magnitude:          computeMagnitude(pointFrom, pointTo, eventsFrom, eventsTo, opts),
		SubcategoryDrivers: make(map[string]schema.ColumnDrivers),
		NumericDrivers:     make(map[string]schema.ColumnDrivers),
	}

	meta := schema.DriverMeta{RunID: uuid.NewString()}

	// --- Subcategory breakdowns ---
	cols := opts.SubcategoryCols
	if len(cols) == 0 {
		detect := opts.Detect
		if detect == nil {
			detect = DetectSubcategoryColumns
		}
		cols = detect(append(append([]schema.Event{}, eventsFrom...), eventsTo...))
		meta.SubcategoryAutoDetected = true
	}
	meta.SubcategoryColumnsUsed = cols
	for _, col := range cols {
		analysis.SubcategoryDrivers[col] = categoricalDrivers(col, eventsFrom, eventsTo, opts)
	}

	// --- Numeric breakdowns (a bad bin spec fails that column only) ---
	numericCols := make([]string, 0, len(opts.NumericCols))
	for col := range opts.NumericCols {
		numericCols = append(numericCols, col)
	}
	sort.Strings(numericCols)
	for _, col := range numericCols {
		drivers, err := numericDrivers(col, opts.NumericCols[col], eventsFrom, eventsTo, opts)
		if err != nil {
			meta.Diagnostics = append(meta.Diagnostics, schema.Diagnostic{
				Period: opts.PeriodTo, Kind: "bin_spec", Message: err.Error(),
			})
			continue
		}
		analysis.NumericDrivers[col] = drivers
		meta.NumericColumnsUsed = append(meta.NumericColumnsUsed, col)
	}

	// --- Spikes and priority ---
	xDelta := pointTo.XScore - pointFrom.XScore
	yDelta := pointTo.YScore - pointFrom.YScore
	if math.Abs(xDelta) >= SpikeThreshold {
		analysis.SpikeDrivers = append(analysis.SpikeDrivers, schema.SpikeDriver{Axis: schema.SpikeX, Delta: xDelta})
	}
	if math.Abs(yDelta) >= SpikeThreshold {
		analysis.SpikeDrivers = append(analysis.SpikeDrivers, schema.SpikeDriver{Axis: schema.SpikeY, Delta: yDelta})
	}

	tier, reason, spike := ClassifyPriority(
		pointFrom.Quadrant, pointTo.Quadrant,
		pointTo.XScore, pointTo.YScore,
		xDelta, yDelta,
		pointTo.Count-pointFrom.Count,
		analysis.Magnitude.VolumeChange.PercentChange,
		opts.Priority,
	)
	analysis.Priority = schema.PriorityBlock{
		Priority:     tier,
		PriorityName: schema.PriorityName(tier),
		Reason:       reason,
		SpikeAxis:    spike,
	}

	analysis.Meta = meta
	return analysis, nil
}

// findTransitionPoints locates the entity's movement points at both
// periods of the transition.
func findTransitionPoints(records []schema.MovementRecord, opts DriverOptions) (from, to schema.MovementPoint, err error) {
	for _, rec := range records {
		if rec.Entity != opts.Entity {
			continue
		}
		var foundFrom, foundTo bool
		for _, pt := range rec.Points {
			switch pt.Period {
			case opts.PeriodFrom:
				from, foundFrom = pt, true
			case opts.PeriodTo:
				to, foundTo = pt, true
			}
		}
		if foundFrom && foundTo {
			return from, to, nil
		}
		return from, to, &contract.InsufficientDataError{
			Entity: opts.Entity,
			Detail: fmt.Sprintf("movement data missing for %s or %s", opts.PeriodFrom, opts.PeriodTo),
		}
	}
	return from, to, &contract.InsufficientDataError{Entity: opts.Entity, Detail: "entity not present in movement data"}
}

// sliceEntityPeriod filters raw events to one entity within one period's
// calendar span.
func sliceEntityPeriod(events []schema.Event, entity string, period schema.Period) ([]schema.Event, error) {
	start, end, err := schema.PeriodSpan(period)
	if err != nil {
		return nil, contract.NewConfigurationError("period", "%v", err)
	}

	var slice []schema.Event
	for i := range events {
		ev := events[i]
		if ev.Entity != entity {
			continue
		}
		if ev.Timestamp.Before(start) || !ev.Timestamp.Before(end) {
			continue
		}
		slice = append(slice, ev)
	}
	if len(slice) == 0 {
		return nil, &contract.InsufficientDataError{Entity: entity, Period: period, Detail: "no matching raw events"}
	}
	return slice, nil
}

// summarizeTransition restates the movement between the two points.
func summarizeTransition(from, to schema.MovementPoint, opts DriverOptions) schema.TransitionSummary {
	return schema.TransitionSummary{
		Entity:          opts.Entity,
		PeriodFrom:      opts.PeriodFrom,
		PeriodTo:        opts.PeriodTo,
		QuadrantFrom:    from.Quadrant,
		QuadrantTo:      to.Quadrant,
		QuadrantChanged: from.Quadrant != to.Quadrant,
		RiskLevelChange: schema.RiskRank[to.Quadrant] - schema.RiskRank[from.Quadrant],
	}
}

// computeMagnitude aggregates cumulative counts, weekly-average rates, and
// raw per-period counts for the transition.
func computeMagnitude(from, to schema.MovementPoint, eventsFrom, eventsTo []schema.Event, opts DriverOptions) schema.Magnitude {
	mag := schema.Magnitude{
		VolumeChange: schema.VolumeChange{
			CountFrom:     from.Count,
			CountTo:       to.Count,
			AbsoluteDelta: to.Count - from.Count,
		},
		GrowthChange: schema.GrowthChange{
			WeeklyAvgFrom: weeklyAverage(eventsFrom, opts.PeriodFrom),
			WeeklyAvgTo:   weeklyAverage(eventsTo, opts.PeriodTo),
		},
		PeriodCounts: schema.PeriodCounts{
			EventsFrom: totalWeight(eventsFrom),
			EventsTo:   totalWeight(eventsTo),
		},
	}
	mag.GrowthChange.WeeklyAvgDelta = mag.GrowthChange.WeeklyAvgTo - mag.GrowthChange.WeeklyAvgFrom
	if from.Count != 0 {
		pct := (to.Count - from.Count) / from.Count * 100
		mag.VolumeChange.PercentChange = &pct
	}
	return mag
}

// weeklyAverage converts a period's raw event weight into a per-week rate.
func weeklyAverage(events []schema.Event, period schema.Period) float64 {
	start, end, err := schema.PeriodSpan(period)
	if err != nil {
		return 0
	}
	weeks := end.Sub(start).Hours() / 24 / 7
	if weeks <= 0 {
		return 0
	}
	return totalWeight(events) / weeks
}

// totalWeight sums event weights.
func totalWeight(events []schema.Event) float64 {
	var total float64
	for i := range events {
		total += eventWeight(&events[i])
	}
	return total
}

// categoricalDrivers computes per-value count deltas for one categorical
// column, keeps values at or above the delta floor, ranks by absolute
// delta descending, and truncates to top N.
func categoricalDrivers(col string, eventsFrom, eventsTo []schema.Event, opts DriverOptions) schema.ColumnDrivers {
	countsFrom := countByValue(eventsFrom, col)
	countsTo := countByValue(eventsTo, col)

	values := make(map[string]struct{})
	for v := range countsFrom {
		values[v] = struct{}{}
	}
	for v := range countsTo {
		values[v] = struct{}{}
	}

	var totalDelta, totalAbs float64
	entries := make([]schema.DriverEntry, 0, len(values))
	for v := range values {
		delta := countsTo[v] - countsFrom[v]
		totalDelta += delta
		totalAbs += math.Abs(delta)
		entries = append(entries, schema.DriverEntry{
			Name:      v,
			CountFrom: countsFrom[v],
			CountTo:   countsTo[v],
			Delta:     delta,
			Direction: direction(delta),
		})
	}

	kept := entries[:0]
	for _, e := range entries {
		if math.Abs(e.Delta) >= opts.MinDelta {
			kept = append(kept, e)
		}
	}
	sortDrivers(kept)
	kept = truncateDrivers(kept, opts.TopN)

	return finishColumn(kept, totalDelta, totalAbs, nil)
}

// countByValue sums event weight per distinct value of a column. Events
// missing the column fall into an explicit "(missing)" bucket so delta
// conservation holds across all rows.
func countByValue(events []schema.Event, col string) map[string]float64 {
	counts := make(map[string]float64)
	for i := range events {
		ev := &events[i]
		value, ok := ev.Attrs[col]
		if !ok {
			value = "(missing)"
		}
		counts[value] += eventWeight(ev)
	}
	return counts
}

// numericDrivers bins one numeric column and computes per-bin deltas.
// Explicit edges are used verbatim (left-closed/right-open, last bin
// closed); a positive integer N derives N quantile bins over the union of
// both periods' values, recomputed per call.
func numericDrivers(col string, spec contract.BinSpec, eventsFrom, eventsTo []schema.Event, opts DriverOptions) (schema.ColumnDrivers, error) {
	edges, err := resolveBinEdges(col, spec, eventsFrom, eventsTo)
	if err != nil {
		return schema.ColumnDrivers{}, err
	}

	countsFrom := countByBin(eventsFrom, col, edges)
	countsTo := countByBin(eventsTo, col, edges)

	var totalDelta, totalAbs float64
	entries := make([]schema.DriverEntry, 0, len(edges)-1)
	for i := 0; i < len(edges)-1; i++ {
		delta := countsTo[i] - countsFrom[i]
		totalDelta += delta
		totalAbs += math.Abs(delta)
		entries = append(entries, schema.DriverEntry{
			Name:      binLabel(edges, i),
			CountFrom: countsFrom[i],
			CountTo:   countsTo[i],
			Delta:     delta,
			Direction: direction(delta),
		})
	}

	sortDrivers(entries)
	entries = truncateDrivers(entries, opts.TopN)

	return finishColumn(entries, totalDelta, totalAbs, edges), nil
}

// resolveBinEdges validates a bin spec and materializes its edges.
func resolveBinEdges(col string, spec contract.BinSpec, eventsFrom, eventsTo []schema.Event) ([]float64, error) {
	hasEdges := len(spec.Edges) > 0
	hasQuantiles := spec.Quantiles != 0

	switch {
	case hasEdges && hasQuantiles:
		return nil, &contract.AmbiguousBinSpecError{Column: col, Detail: "both edge list and quantile count supplied"}
	case hasEdges:
		if len(spec.Edges) < 2 {
			return nil, &contract.AmbiguousBinSpecError{Column: col, Detail: "edge list needs at least two edges"}
		}
		for i := 1; i < len(spec.Edges); i++ {
			if spec.Edges[i] <= spec.Edges[i-1] {
				return nil, &contract.AmbiguousBinSpecError{Column: col, Detail: "edges must be strictly increasing"}
			}
		}
		return spec.Edges, nil
	case spec.Quantiles > 0:
		values := collectValues(eventsFrom, col)
		values = append(values, collectValues(eventsTo, col)...)
		if len(values) == 0 {
			return nil, &contract.AmbiguousBinSpecError{Column: col, Detail: "no numeric values to derive quantile bins from"}
		}
		return quantileEdges(values, spec.Quantiles), nil
	default:
		return nil, &contract.AmbiguousBinSpecError{Column: col, Detail: "spec is neither an edge list nor a positive integer"}
	}
}

// collectValues gathers a column's numeric values across events.
func collectValues(events []schema.Event, col string) []float64 {
	var values []float64
	for i := range events {
		if v, ok := events[i].Values[col]; ok {
			values = append(values, v)
		}
	}
	return values
}

// quantileEdges returns n+1 empirical quantile edges over the sample,
// evenly spaced in probability from 0 to 1, deduplicated to keep bins
// well-formed on heavily tied data.
func quantileEdges(values []float64, n int) []float64 {
	sorted := append([]float64{}, values...)
	sort.Float64s(sorted)

	edges := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		q := float64(i) / float64(n)
		edges = append(edges, quantile(sorted, q))
	}

	dedup := edges[:1]
	for _, e := range edges[1:] {
		if e > dedup[len(dedup)-1] {
			dedup = append(dedup, e)
		}
	}
	return dedup
}

// quantile computes the empirical quantile with linear interpolation over
// a sorted sample.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// countByBin sums event weight per bin index. Bins are left-closed and
// right-open, except the last which is closed; out-of-range values are
// excluded.
func countByBin(events []schema.Event, col string, edges []float64) map[int]float64 {
	counts := make(map[int]float64)
	for i := range events {
		ev := &events[i]
		v, ok := ev.Values[col]
		if !ok {
			continue
		}
		idx, ok := binIndex(edges, v)
		if !ok {
			continue
		}
		counts[idx] += eventWeight(ev)
	}
	return counts
}

// binIndex locates the bin a value falls into, if any.
func binIndex(edges []float64, v float64) (int, bool) {
	last := len(edges) - 1
	if v < edges[0] || v > edges[last] {
		return 0, false
	}
	if v == edges[last] {
		return last - 1, true
	}
	for i := 0; i < last; i++ {
		if v >= edges[i] && v < edges[i+1] {
			return i, true
		}
	}
	return 0, false
}

// binLabel renders a bin's interval notation.
func binLabel(edges []float64, i int) string {
	if i == len(edges)-2 {
		return fmt.Sprintf("[%g, %g]", edges[i], edges[i+1])
	}
	return fmt.Sprintf("[%g, %g)", edges[i], edges[i+1])
}

// DetectSubcategoryColumns is the default column detection strategy: it
// keeps categorical attributes whose distinct-value count over the
// supplied events is low enough to be a meaningful breakdown, sorted by
// name for determinism.
func DetectSubcategoryColumns(events []schema.Event) []string {
	cardinality := make(map[string]map[string]struct{})
	for i := range events {
		for col, value := range events[i].Attrs {
			if cardinality[col] == nil {
				cardinality[col] = make(map[string]struct{})
			}
			cardinality[col][value] = struct{}{}
		}
	}

	var cols []string
	for col, values := range cardinality {
		if len(values) >= autoDetectMinCardinality && len(values) <= autoDetectMaxCardinality {
			cols = append(cols, col)
		}
	}
	sort.Strings(cols)
	return cols
}

// direction renders a delta's sign.
func direction(delta float64) string {
	switch {
	case delta > 0:
		return "up"
	case delta < 0:
		return "down"
	default:
		return "flat"
	}
}

// sortDrivers orders entries by absolute delta descending, breaking ties
// by name for determinism.
func sortDrivers(entries []schema.DriverEntry) {
	sort.Slice(entries, func(i, j int) bool {
		ai, aj := math.Abs(entries[i].Delta), math.Abs(entries[j].Delta)
		if ai != aj {
			return ai > aj
		}
		return entries[i].Name < entries[j].Name
	})
}

// truncateDrivers keeps the top n entries; n = 0 keeps all.
func truncateDrivers(entries []schema.DriverEntry, n int) []schema.DriverEntry {
	if n > 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}

// finishColumn fills per-entry shares and the column totals.
func finishColumn(entries []schema.DriverEntry, totalDelta, totalAbs float64, edges []float64) schema.ColumnDrivers {
	var keptAbs float64
	for i := range entries {
		keptAbs += math.Abs(entries[i].Delta)
		if totalAbs != 0 {
			share := math.Abs(entries[i].Delta) / totalAbs * 100
			entries[i].PercentOfChange = &share
		}
	}

	col := schema.ColumnDrivers{TopDrivers: entries, TotalDelta: totalDelta, BinEdges: edges}
	if totalAbs != 0 {
		pct := keptAbs / totalAbs * 100
		col.TopNExplainPct = &pct
	}
	return col
}
