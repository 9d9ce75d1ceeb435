package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

// PrintDriverResults outputs one transition's driver analysis, dispatching
// based on the output format configured. The analysis is a nested document,
// so parquet is not offered for this mode.
func PrintDriverResults(analysis *schema.DriverAnalysis, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPct := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, analysis)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDriversCSV(w, analysis, fmtFloat, fmtPct)
		}, "CSV")
	case schema.ParquetOut:
		return contract.NewConfigurationError("output", "parquet output is not supported for driver analysis, use json")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeDriversText(w, analysis, cfg, fmtFloat, fmtPct, duration)
		}, "report")
	}
}

// sortedColumns returns a column map's keys in stable order.
func sortedColumns(m map[string]schema.ColumnDrivers) []string {
	cols := make([]string, 0, len(m))
	for col := range m {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// writeDriversText renders the human-readable driver report.
func writeDriversText(w io.Writer, analysis *schema.DriverAnalysis, cfg *contract.Config, fmtFloat func(float64) string, fmtPct func(*float64) string, duration time.Duration) error {
	tr := analysis.Transition
	if _, err := fmt.Fprintf(w, "Transition %s: %s (%s) -> %s (%s), risk change %+d\n",
		tr.Entity, tr.QuadrantFrom, tr.PeriodFrom, tr.QuadrantTo, tr.PeriodTo, tr.RiskLevelChange); err != nil {
		return err
	}

	mag := analysis.Magnitude
	if _, err := fmt.Fprintf(w, "Volume: %s -> %s (delta %s, %s), weekly avg %s -> %s\n",
		fmtFloat(mag.VolumeChange.CountFrom), fmtFloat(mag.VolumeChange.CountTo),
		fmtFloat(mag.VolumeChange.AbsoluteDelta), fmtPct(mag.VolumeChange.PercentChange),
		fmtFloat(mag.GrowthChange.WeeklyAvgFrom), fmtFloat(mag.GrowthChange.WeeklyAvgTo)); err != nil {
		return err
	}

	pr := analysis.Priority
	if _, err := fmt.Fprintf(w, "Priority: %s (%s), spike axis %s\n\n",
		tierLabel(pr.Priority, cfg.UseColors), pr.Reason, pr.SpikeAxis); err != nil {
		return err
	}

	writeSection := func(title string, columns map[string]schema.ColumnDrivers) error {
		for _, col := range sortedColumns(columns) {
			drivers := columns[col]
			if _, err := fmt.Fprintf(w, "%s %q (total delta %s, top-n explains %s):\n",
				title, col, fmtFloat(drivers.TotalDelta), fmtPct(drivers.TopNExplainPct)); err != nil {
				return err
			}

			table := tablewriter.NewWriter(w)
			table.Header([]string{"Driver", "From", "To", "Delta", "Share", "Direction"})
			table.Configure(func(tcfg *tablewriter.Config) {
				tcfg.Row.Alignment.Global = tw.AlignRight
			})
			var data [][]string
			for _, d := range drivers.TopDrivers {
				data = append(data, []string{
					d.Name,
					fmtFloat(d.CountFrom),
					fmtFloat(d.CountTo),
					fmtFloat(d.Delta),
					fmtPct(d.PercentOfChange),
					d.Direction,
				})
			}
			if err := table.Bulk(data); err != nil {
				return err
			}
			if err := table.Render(); err != nil {
				return err
			}
		}
		return nil
	}

	if err := writeSection("Subcategory", analysis.SubcategoryDrivers); err != nil {
		return err
	}
	if err := writeSection("Numeric", analysis.NumericDrivers); err != nil {
		return err
	}

	for _, diag := range analysis.Meta.Diagnostics {
		if _, err := fmt.Fprintf(w, "Diagnostic [%s]: %s\n", diag.Kind, diag.Message); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Completed in %v. Run %s\n", duration, analysis.Meta.RunID); err != nil {
		return err
	}
	return nil
}

// writeDriversCSV flattens the per-column breakdowns into one CSV table.
func writeDriversCSV(w io.Writer, analysis *schema.DriverAnalysis, fmtFloat func(float64) string, fmtPct func(*float64) string) error {
	header := []string{"column_kind", "column", "driver", "count_from", "count_to", "delta", "percent_of_change", "direction"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		writeColumns := func(kind string, columns map[string]schema.ColumnDrivers) error {
			for _, col := range sortedColumns(columns) {
				for _, d := range columns[col].TopDrivers {
					rec := []string{
						kind,
						col,
						d.Name,
						fmtFloat(d.CountFrom),
						fmtFloat(d.CountTo),
						fmtFloat(d.Delta),
						fmtPct(d.PercentOfChange),
						d.Direction,
					}
					if err := cw.Write(rec); err != nil {
						return err
					}
				}
			}
			return nil
		}
		if err := writeColumns("subcategory", analysis.SubcategoryDrivers); err != nil {
			return err
		}
		return writeColumns("numeric", analysis.NumericDrivers)
	})
}
