package cmd

import (
	"github.com/spf13/cobra"

	"github.com/priorityx/priorityx/core"
	"github.com/priorityx/priorityx/internal/contract"
)

// matrixCmd performs single-window quadrant classification.
var matrixCmd = &cobra.Command{
	Use:   "matrix [events-file]",
	Short: "Show each entity's quadrant position over the whole window.",
	Long: `Build one panel over the configured window, fit the scoring model,
and place every surviving entity into a quadrant.

Quadrants read as:
- Q1: high volume, high growth (the priority corner)
- Q2: low volume, high growth (emerging)
- Q3: low volume, low growth (quiet)
- Q4: high volume, low growth (established)

Entities are ranked by quadrant risk, then by count.

Examples:
  # Classify entities from a CSV export
  priorityx matrix events.csv --entity-col merchant --time-col created_at

  # Sum a value column instead of counting rows
  priorityx matrix events.parquet --entity-col merchant --time-col created_at --count-col amount

  # Export the full matrix to CSV for tracking
  priorityx matrix events.csv --entity-col merchant --time-col created_at --output csv --output-file matrix.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMatrix(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run matrix analysis", err)
		}
	},
}
