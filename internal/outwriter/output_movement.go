package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/priorityx/priorityx/internal/contract"
	pqexport "github.com/priorityx/priorityx/internal/parquet"
	"github.com/priorityx/priorityx/schema"
)

// PrintMovementResults outputs per-entity trajectories, dispatching based
// on the output format configured.
func PrintMovementResults(records []schema.MovementRecord, meta *schema.RunMeta, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPct := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMovementJSON(w, records, meta)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMovementCSV(w, records, fmtFloat, fmtPct)
		}, "CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return contract.NewConfigurationError("output-file", "parquet output requires --output-file")
		}
		return pqexport.WriteMovementParquet(records, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMovementTable(w, records, meta, cfg, fmtFloat, fmtPct, duration)
		}, "table")
	}
}

// writeMovementTable generates and writes the human-readable table.
func writeMovementTable(w io.Writer, records []schema.MovementRecord, meta *schema.RunMeta, cfg *contract.Config, fmtFloat func(float64) string, fmtPct func(*float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Entity", "Period", "X", "Y", "Count", "Quadrant", "dX", "dY", "dCount", "%Change"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	points := 0
	for _, rec := range records {
		for _, pt := range rec.Points {
			points++
			row := []string{
				truncateEntity(rec.Entity, cfg),
				string(pt.Period),
				fmtFloat(pt.XScore),
				fmtFloat(pt.YScore),
				fmtFloat(pt.Count),
				string(pt.Quadrant),
			}
			if pt.HasDelta {
				row = append(row, fmtFloat(pt.XDelta), fmtFloat(pt.YDelta), fmtFloat(pt.CountDelta), fmtPct(pt.PercentChange))
			} else {
				row = append(row, "-", "-", "-", "-")
			}
			data = append(data, row)
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Tracked %d entities across %d periods (%d points)\n", len(records), len(meta.Periods), points); err != nil {
		return err
	}
	for _, diag := range meta.Diagnostics {
		if _, err := fmt.Fprintf(w, "Diagnostic [%s] %s: %s\n", diag.Kind, diag.Period, diag.Message); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeMovementCSV writes the trajectories in CSV format.
func writeMovementCSV(w io.Writer, records []schema.MovementRecord, fmtFloat func(float64) string, fmtPct func(*float64) string) error {
	header := []string{"entity", "period", "x_score", "y_score", "count", "quadrant", "x_delta", "y_delta", "count_delta", "percent_change"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, rec := range records {
			for _, pt := range rec.Points {
				row := []string{
					rec.Entity,
					string(pt.Period),
					fmtFloat(pt.XScore),
					fmtFloat(pt.YScore),
					fmtFloat(pt.Count),
					string(pt.Quadrant),
				}
				if pt.HasDelta {
					row = append(row, fmtFloat(pt.XDelta), fmtFloat(pt.YDelta), fmtFloat(pt.CountDelta), fmtPct(pt.PercentChange))
				} else {
					row = append(row, "", "", "", "")
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// writeMovementJSON writes the trajectories plus run metadata in JSON format.
func writeMovementJSON(w io.Writer, records []schema.MovementRecord, meta *schema.RunMeta) error {
	type jsonMovement struct {
		Records []schema.MovementRecord `json:"records"`
		Meta    *schema.RunMeta         `json:"meta"`
	}
	return writeJSON(w, jsonMovement{Records: records, Meta: meta})
}
