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

// PrintTransitionResults outputs ranked quadrant transitions, dispatching
// based on the output format configured.
func PrintTransitionResults(transitions []schema.TransitionRecord, meta *schema.RunMeta, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, fmtPct := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTransitionsJSON(w, transitions, meta)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTransitionsCSV(w, transitions, fmtFloat, fmtPct)
		}, "CSV")
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return contract.NewConfigurationError("output-file", "parquet output requires --output-file")
		}
		return pqexport.WriteTransitionsParquet(transitions, cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTransitionsTable(w, transitions, meta, cfg, fmtFloat, duration)
		}, "table")
	}
}

// writeTransitionsTable generates and writes the human-readable table.
func writeTransitionsTable(w io.Writer, transitions []schema.TransitionRecord, meta *schema.RunMeta, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Entity", "From", "To", "Move", "dX", "dY", "Spike", "Priority", "Reason"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, tr := range transitions {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			truncateEntity(tr.Entity, cfg),
			string(tr.PeriodFrom),
			string(tr.PeriodTo),
			fmt.Sprintf("%s>%s", tr.QuadrantFrom, tr.QuadrantTo),
			fmtFloat(tr.XDelta),
			fmtFloat(tr.YDelta),
			string(tr.SpikeAxis),
			tierLabel(tr.Priority, cfg.UseColors),
			tr.Reason,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	tiers := make(map[int]int)
	for _, tr := range transitions {
		tiers[tr.Priority]++
	}
	if _, err := fmt.Fprintf(w, "Showing %d transitions (Critical: %d, Investigate: %d, Monitor: %d, Low: %d)\n",
		len(transitions), tiers[schema.PriorityCritical], tiers[schema.PriorityInvestigate], tiers[schema.PriorityMonitor], tiers[schema.PriorityLow]); err != nil {
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

// writeTransitionsCSV writes the transitions in CSV format.
func writeTransitionsCSV(w io.Writer, transitions []schema.TransitionRecord, fmtFloat func(float64) string, fmtPct func(*float64) string) error {
	header := []string{
		"rank", "entity", "period_from", "period_to", "from_quadrant", "to_quadrant",
		"x", "y", "x_delta", "y_delta", "count_delta", "percent_change",
		"spike_axis", "priority", "priority_name", "reason",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, tr := range transitions {
			rec := []string{
				strconv.Itoa(i + 1),
				tr.Entity,
				string(tr.PeriodFrom),
				string(tr.PeriodTo),
				string(tr.QuadrantFrom),
				string(tr.QuadrantTo),
				fmtFloat(tr.X),
				fmtFloat(tr.Y),
				fmtFloat(tr.XDelta),
				fmtFloat(tr.YDelta),
				fmtFloat(tr.CountDelta),
				fmtPct(tr.PercentChange),
				string(tr.SpikeAxis),
				strconv.Itoa(tr.Priority),
				contract.GetPlainLabel(tr.Priority),
				tr.Reason,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// writeTransitionsJSON writes the transitions plus run metadata in JSON format.
func writeTransitionsJSON(w io.Writer, transitions []schema.TransitionRecord, meta *schema.RunMeta) error {
	type jsonTransition struct {
		Rank         int    `json:"rank"`
		PriorityName string `json:"priority_name"`
		schema.TransitionRecord
	}
	type jsonOutput struct {
		Transitions []jsonTransition `json:"transitions"`
		Meta        *schema.RunMeta  `json:"meta"`
	}

	output := jsonOutput{Meta: meta, Transitions: make([]jsonTransition, len(transitions))}
	for i, tr := range transitions {
		output.Transitions[i] = jsonTransition{
			Rank:             i + 1,
			PriorityName:     contract.GetPlainLabel(tr.Priority),
			TransitionRecord: tr,
		}
	}
	return writeJSON(w, output)
}
