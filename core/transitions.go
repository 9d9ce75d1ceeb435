package core

import "github.com/priorityx/priorityx/schema"

// ExtractTransitions scans each movement record's chronologically ordered
// points and emits one TransitionRecord per adjacent pair whose quadrants
// differ. Pairs separated by a period gap carry no deltas and are skipped
// (gaps are not bridged). Quadrant-stable pairs never emit a record, no
// matter how far the scores moved; spike markers attach only to emitted
// transitions.
//
// With focusRiskIncreasing, only transitions toward a higher risk rank
// (schema.RiskRank: Q3 < Q2 = Q4 < Q1) are retained.
func ExtractTransitions(records []schema.MovementRecord, focusRiskIncreasing bool) []schema.TransitionRecord {
	var transitions []schema.TransitionRecord

	for _, rec := range records {
		for i := 1; i < len(rec.Points); i++ {
			prev := rec.Points[i-1]
			cur := rec.Points[i]
			if !cur.HasDelta {
				continue
			}
			if cur.Quadrant == prev.Quadrant {
				continue
			}
			if focusRiskIncreasing && schema.RiskRank[cur.Quadrant] <= schema.RiskRank[prev.Quadrant] {
				continue
			}

			transitions = append(transitions, schema.TransitionRecord{
				Entity:        rec.Entity,
				PeriodFrom:    prev.Period,
				PeriodTo:      cur.Period,
				QuadrantFrom:  prev.Quadrant,
				QuadrantTo:    cur.Quadrant,
				X:             cur.XScore,
				Y:             cur.YScore,
				XDelta:        cur.XDelta,
				YDelta:        cur.YDelta,
				CountDelta:    cur.CountDelta,
				PercentChange: cur.PercentChange,
			})
		}
	}

	return transitions
}

// EnrichPriorities runs the priority classifier over every transition and
// fills in the tier, reason, and spike axis in place.
func EnrichPriorities(transitions []schema.TransitionRecord, opts PriorityOptions) {
	for i := range transitions {
		tr := &transitions[i]
		tier, reason, spike := ClassifyPriority(
			tr.QuadrantFrom, tr.QuadrantTo,
			tr.X, tr.Y, tr.XDelta, tr.YDelta, tr.CountDelta,
			tr.PercentChange, opts,
		)
		tr.Priority = tier
		tr.Reason = reason
		tr.SpikeAxis = spike
	}
}
