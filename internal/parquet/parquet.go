// Package parquet exports pipeline result tables to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/priorityx/priorityx/schema"
)

// MatrixRow is the flattened form of one priority matrix entry.
type MatrixRow struct {
	// Rank is the 1-based position after ranking
	Rank int32 `parquet:"rank,snappy"`

	// Entity is the entity identifier
	Entity string `parquet:"entity,snappy"`

	// XScore is the position on the x axis
	XScore float64 `parquet:"x_score,snappy"`

	// YScore is the position on the y axis
	YScore float64 `parquet:"y_score,snappy"`

	// Count is the period event count
	Count float64 `parquet:"count,snappy"`

	// Quadrant is Q1 through Q4
	Quadrant string `parquet:"quadrant,snappy"`
}

// MovementRow is the flattened form of one trajectory point.
type MovementRow struct {
	// Entity is the entity identifier
	Entity string `parquet:"entity,snappy"`

	// Period is the canonical period label
	Period string `parquet:"period,snappy"`

	// XScore is the position on the x axis
	XScore float64 `parquet:"x_score,snappy"`

	// YScore is the position on the y axis
	YScore float64 `parquet:"y_score,snappy"`

	// Count is the period event count
	Count float64 `parquet:"count,snappy"`

	// Quadrant is Q1 through Q4
	Quadrant string `parquet:"quadrant,snappy"`

	// XDelta is the x movement against the previous period (nullable)
	XDelta *float64 `parquet:"x_delta,optional,snappy"`

	// YDelta is the y movement against the previous period (nullable)
	YDelta *float64 `parquet:"y_delta,optional,snappy"`

	// CountDelta is the count movement against the previous period (nullable)
	CountDelta *float64 `parquet:"count_delta,optional,snappy"`

	// PercentChange is the relative count movement (nullable)
	PercentChange *float64 `parquet:"percent_change,optional,snappy"`
}

// TransitionRow is the flattened form of one quadrant transition.
type TransitionRow struct {
	// Rank is the 1-based position after ranking
	Rank int32 `parquet:"rank,snappy"`

	// Entity is the entity identifier
	Entity string `parquet:"entity,snappy"`

	// PeriodFrom is the transition's earlier period
	PeriodFrom string `parquet:"period_from,snappy"`

	// PeriodTo is the transition's later period
	PeriodTo string `parquet:"period_to,snappy"`

	// QuadrantFrom is the quadrant left behind
	QuadrantFrom string `parquet:"from_quadrant,snappy"`

	// QuadrantTo is the quadrant entered
	QuadrantTo string `parquet:"to_quadrant,snappy"`

	// X is the x score at PeriodTo
	X float64 `parquet:"x,snappy"`

	// Y is the y score at PeriodTo
	Y float64 `parquet:"y,snappy"`

	// XDelta is the x movement across the transition
	XDelta float64 `parquet:"x_delta,snappy"`

	// YDelta is the y movement across the transition
	YDelta float64 `parquet:"y_delta,snappy"`

	// CountDelta is the count movement across the transition
	CountDelta float64 `parquet:"count_delta,snappy"`

	// PercentChange is the relative count movement (nullable)
	PercentChange *float64 `parquet:"percent_change,optional,snappy"`

	// Priority is tier 1 (Critical) through 4 (Low)
	Priority int32 `parquet:"priority,snappy"`

	// Reason is the label of the classifier clause that fired
	Reason string `parquet:"reason,snappy"`

	// SpikeAxis marks axes past the spike threshold
	SpikeAxis string `parquet:"spike_axis,snappy"`
}

// WriteMatrixParquet writes ranked matrix results to a Parquet file.
func WriteMatrixParquet(results []schema.QuadrantResult, outputPath string) error {
	rows := make([]MatrixRow, len(results))
	for i, r := range results {
		rows[i] = MatrixRow{
			Rank:     int32(i + 1),
			Entity:   r.Entity,
			XScore:   r.XScore,
			YScore:   r.YScore,
			Count:    r.Count,
			Quadrant: string(r.Quadrant),
		}
	}
	return writeParquet(rows, outputPath)
}

// WriteMovementParquet writes per-entity trajectories to a Parquet file.
func WriteMovementParquet(records []schema.MovementRecord, outputPath string) error {
	var rows []MovementRow
	for _, rec := range records {
		for _, pt := range rec.Points {
			row := MovementRow{
				Entity:   rec.Entity,
				Period:   string(pt.Period),
				XScore:   pt.XScore,
				YScore:   pt.YScore,
				Count:    pt.Count,
				Quadrant: string(pt.Quadrant),
			}
			if pt.HasDelta {
				xd, yd, cd := pt.XDelta, pt.YDelta, pt.CountDelta
				row.XDelta = &xd
				row.YDelta = &yd
				row.CountDelta = &cd
				row.PercentChange = pt.PercentChange
			}
			rows = append(rows, row)
		}
	}
	return writeParquet(rows, outputPath)
}

// WriteTransitionsParquet writes ranked transitions to a Parquet file.
func WriteTransitionsParquet(transitions []schema.TransitionRecord, outputPath string) error {
	rows := make([]TransitionRow, len(transitions))
	for i, tr := range transitions {
		rows[i] = TransitionRow{
			Rank:          int32(i + 1),
			Entity:        tr.Entity,
			PeriodFrom:    string(tr.PeriodFrom),
			PeriodTo:      string(tr.PeriodTo),
			QuadrantFrom:  string(tr.QuadrantFrom),
			QuadrantTo:    string(tr.QuadrantTo),
			X:             tr.X,
			Y:             tr.Y,
			XDelta:        tr.XDelta,
			YDelta:        tr.YDelta,
			CountDelta:    tr.CountDelta,
			PercentChange: tr.PercentChange,
			Priority:      int32(tr.Priority),
			Reason:        tr.Reason,
			SpikeAxis:     string(tr.SpikeAxis),
		}
	}
	return writeParquet(rows, outputPath)
}

// writeParquet writes one row slice with struct schema inference.
func writeParquet[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the row struct tags
	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}
