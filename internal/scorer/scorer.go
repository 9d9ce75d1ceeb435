// Package scorer provides the default deterministic Score Provider.
//
// The provider turns an entity-by-period panel into centered (x, y) scores:
// x captures relative volume (log-scaled count, standardized across entities
// within each period) and y captures relative growth (log-count change
// against the entity's previous period in the panel, standardized the same
// way). Scores are centered, so quadrant references are zero. The fit is a
// pure function of the panel, so a fixed seed trivially reproduces a run.
package scorer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// Provider is the built-in Score Provider.
type Provider struct{}

var _ contract.ScoreProvider = (*Provider)(nil) // Compile-time check

// New creates the default provider.
func New() *Provider {
	return &Provider{}
}

// rawScore is one (entity, period) observation before standardization.
type rawScore struct {
	entity string
	period schema.Period
	count  float64
	x      float64
	y      float64
	hasY   bool
}

// Fit estimates scores for every entity in the panel. Periods with fewer
// than two entities or zero variance cannot be standardized; they produce
// no points and a warning. The fit converges as long as at least one period
// yields points.
func (p *Provider) Fit(ctx context.Context, panel []schema.PanelRow, opts schema.FitOptions) (*schema.FitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(panel) == 0 {
		return nil, errors.New("empty panel")
	}

	raws := rawScores(panel)

	byPeriod := make(map[schema.Period][]rawScore)
	for _, r := range raws {
		byPeriod[r.period] = append(byPeriod[r.period], r)
	}
	periods := make([]schema.Period, 0, len(byPeriod))
	for period := range byPeriod {
		periods = append(periods, period)
	}
	sort.Slice(periods, func(i, j int) bool {
		return schema.ComparePeriods(periods[i], periods[j]) < 0
	})

	result := &schema.FitResult{}
	for _, period := range periods {
		points, warning := standardizePeriod(byPeriod[period])
		if warning != "" {
			result.Status.Warnings = append(result.Status.Warnings, warning)
			continue
		}
		result.Points = append(result.Points, points...)
	}

	result.Status.Converged = len(result.Points) > 0
	if !result.Status.Converged {
		result.Status.Warnings = append(result.Status.Warnings, "no period could be standardized")
	}
	return result, nil
}

// rawScores computes the pre-standardization volume and growth values. A
// mapped metric column overrides the derived value on its axis.
func rawScores(panel []schema.PanelRow) []rawScore {
	// Previous-period counts per entity, for the growth axis.
	logCount := make(map[string]map[schema.Period]float64)
	for _, row := range panel {
		if logCount[row.Entity] == nil {
			logCount[row.Entity] = make(map[schema.Period]float64)
		}
		logCount[row.Entity][row.Period] = math.Log1p(row.Count)
	}

	raws := make([]rawScore, 0, len(panel))
	for _, row := range panel {
		r := rawScore{
			entity: row.Entity,
			period: row.Period,
			count:  row.Count,
			x:      math.Log1p(row.Count),
		}
		if row.XMetric != nil {
			r.x = *row.XMetric
		}

		switch {
		case row.YMetric != nil:
			r.y = *row.YMetric
			r.hasY = true
		default:
			for prev, lc := range logCount[row.Entity] {
				if dist, err := schema.PeriodDistance(prev, row.Period); err == nil && dist == 1 {
					r.y = math.Log1p(row.Count) - lc
					r.hasY = true
					break
				}
			}
		}
		raws = append(raws, r)
	}
	return raws
}

// standardizePeriod z-scores one period's raw values across its entities.
// Entities without a growth observation center at zero on the y axis.
func standardizePeriod(raws []rawScore) ([]schema.ScoredPoint, string) {
	if len(raws) < 2 {
		return nil, fmt.Sprintf("period %s: need at least 2 entities to standardize, have %d", raws[0].period, len(raws))
	}

	xs := make([]float64, 0, len(raws))
	var ys []float64
	for _, r := range raws {
		xs = append(xs, r.x)
		if r.hasY {
			ys = append(ys, r.y)
		}
	}

	xMean, xStd := meanStd(xs)
	if xStd == 0 {
		return nil, fmt.Sprintf("period %s: zero variance on the volume axis", raws[0].period)
	}
	yMean, yStd := meanStd(ys)

	points := make([]schema.ScoredPoint, 0, len(raws))
	for _, r := range raws {
		pt := schema.ScoredPoint{
			Entity: r.entity,
			Period: r.period,
			XScore: (r.x - xMean) / xStd,
			Count:  r.count,
		}
		if r.hasY && yStd != 0 {
			pt.YScore = (r.y - yMean) / yStd
		}
		points = append(points, pt)
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Entity < points[j].Entity })
	return points, ""
}

// meanStd computes the mean and population standard deviation.
func meanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}
