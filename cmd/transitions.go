package cmd

import (
	"github.com/spf13/cobra"

	"github.com/priorityx/priorityx/core"
	"github.com/priorityx/priorityx/internal/contract"
)

// transitionsCmd extracts and prioritizes quadrant transitions.
var transitionsCmd = &cobra.Command{
	Use:   "transitions [events-file]",
	Short: "Show quadrant transitions ranked by priority tier.",
	Long: `Extract every adjacent-period quadrant change from the movement
trajectories and classify each one into a priority tier:

  1 Critical     - spike-sized movement on either axis
  2 Investigate  - large movement or a strong entry into Q1
  3 Monitor      - movement hugging a quadrant boundary
  4 Low          - everything else

Transitions are ranked tier first, then by movement magnitude.

Examples:
  # All transitions, highest priority first
  priorityx transitions events.csv --entity-col merchant --time-col created_at

  # Only transitions toward riskier quadrants
  priorityx transitions events.csv --entity-col merchant --time-col created_at --risk-increasing

  # Export to parquet for downstream analysis
  priorityx transitions events.csv --entity-col merchant --time-col created_at --output parquet --output-file transitions.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTransitions(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run transition extraction", err)
		}
	},
}
