package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/priorityx/priorityx/internal/contract"
	pqexport "github.com/priorityx/priorityx/internal/parquet"
	"github.com/priorityx/priorityx/schema"
)

// PrintMatrixResults outputs the single-window priority matrix, dispatching
// based on the output format configured.
func PrintMatrixResults(results []schema.QuadrantResult, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMatrixJSON(w, results)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMatrixCSV(w, results, fmtFloat)
		}, "CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return contract.NewConfigurationError("output-file", "parquet output requires --output-file")
		}
		return pqexport.WriteMatrixParquet(results, cfg.OutputFile)
	default:
		// Default to human-readable table
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMatrixTable(w, results, cfg, fmtFloat, duration)
		}, "table")
	}
}

// writeMatrixTable generates and writes the human-readable table.
func writeMatrixTable(w io.Writer, results []schema.QuadrantResult, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Entity", "X", "Y", "Count", "Quadrant"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, r := range results {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			truncateEntity(r.Entity, cfg),
			fmtFloat(r.XScore),
			fmtFloat(r.YScore),
			fmtFloat(r.Count),
			string(r.Quadrant),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	counts := make(map[schema.Quadrant]int)
	for _, r := range results {
		counts[r.Quadrant]++
	}
	if _, err := fmt.Fprintf(w, "Showing %d entities (Q1: %d, Q2: %d, Q3: %d, Q4: %d)\n",
		len(results), counts[schema.Q1], counts[schema.Q2], counts[schema.Q3], counts[schema.Q4]); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Completed in %v with %d workers. Cache backend: %s\n", duration, cfg.Workers, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeMatrixCSV writes the matrix in CSV format.
func writeMatrixCSV(w io.Writer, results []schema.QuadrantResult, fmtFloat func(float64) string) error {
	header := []string{"rank", "entity", "x_score", "y_score", "count", "quadrant"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, r := range results {
			rec := []string{
				strconv.Itoa(i + 1),
				r.Entity,
				fmtFloat(r.XScore),
				fmtFloat(r.YScore),
				fmtFloat(r.Count),
				string(r.Quadrant),
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeMatrixJSON writes the matrix in JSON format.
func writeMatrixJSON(w io.Writer, results []schema.QuadrantResult) error {
	type jsonMatrixRow struct {
		Rank     int             `json:"rank"`
		Entity   string          `json:"entity"`
		XScore   float64         `json:"x_score"`
		YScore   float64         `json:"y_score"`
		Count    float64         `json:"count"`
		Quadrant schema.Quadrant `json:"quadrant"`
	}

	output := make([]jsonMatrixRow, len(results))
	for i, r := range results {
		output[i] = jsonMatrixRow{
			Rank:     i + 1,
			Entity:   r.Entity,
			XScore:   r.XScore,
			YScore:   r.YScore,
			Count:    r.Count,
			Quadrant: r.Quadrant,
		}
	}
	return writeJSON(w, output)
}
