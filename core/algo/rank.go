// Package algo holds small pure ranking helpers shared by the pipeline.
package algo

import (
	"math"
	"sort"

	"github.com/priorityx/priorityx/schema"
)

// RankTransitions sorts transitions by tier (Crisis first), then by the
// magnitude of movement in score space descending, and returns the top
// 'limit' records. If limit is zero or exceeds the number of records, all
// records are returned in sorted order.
func RankTransitions(transitions []schema.TransitionRecord, limit int) []schema.TransitionRecord {
	sort.Slice(transitions, func(i, j int) bool {
		a, b := transitions[i], transitions[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		return math.Hypot(a.XDelta, a.YDelta) > math.Hypot(b.XDelta, b.YDelta)
	})
	if limit > 0 && len(transitions) > limit {
		return transitions[:limit]
	}
	return transitions
}

// RankMatrix sorts single-window quadrant results by risk rank descending
// (Q1 first), then by count descending within a quadrant, and returns the
// top 'limit' rows.
func RankMatrix(results []schema.QuadrantResult, limit int) []schema.QuadrantResult {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if schema.RiskRank[a.Quadrant] != schema.RiskRank[b.Quadrant] {
			return schema.RiskRank[a.Quadrant] > schema.RiskRank[b.Quadrant]
		}
		return a.Count > b.Count
	})
	if limit > 0 && len(results) > limit {
		return results[:limit]
	}
	return results
}
