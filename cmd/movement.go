package cmd

import (
	"github.com/spf13/cobra"

	"github.com/priorityx/priorityx/core"
	"github.com/priorityx/priorityx/internal/contract"
)

// movementCmd tracks per-entity quadrant trajectories.
var movementCmd = &cobra.Command{
	Use:   "movement [events-file]",
	Short: "Track each entity's quadrant trajectory across periods.",
	Long: `Fit the scoring model period by period and report every entity's
position, quadrant, and per-period deltas.

Deltas are reported only between adjacent periods; an entity that skips a
period starts fresh on its return. Results are cached, so repeated runs
over the same events and parameters are fast.

Examples:
  # Quarterly trajectories
  priorityx movement events.csv --entity-col merchant --time-col created_at

  # Accumulate history up to each period's end
  priorityx movement events.csv --entity-col merchant --time-col created_at --cumulative

  # Monthly trajectories as JSON
  priorityx movement events.csv --entity-col merchant --time-col created_at --granularity monthly --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteMovement(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run movement tracking", err)
		}
	},
}
