package cmd

import (
	"github.com/spf13/cobra"

	"github.com/priorityx/priorityx/core"
	"github.com/priorityx/priorityx/internal/contract"
)

// driversCmd explains one entity's transition with driver attribution.
var driversCmd = &cobra.Command{
	Use:   "drivers [events-file]",
	Short: "Explain one quadrant transition through its event drivers.",
	Long: `Attribute a single entity's count change between two periods to the
categorical and numeric columns of its raw events.

For each categorical column, per-value counts in both periods are compared
and the largest movers are reported with their share of the total change.
Numeric columns are binned (explicit edges or quantiles) and treated the
same way. Columns left unspecified are auto-detected by cardinality.

Examples:
  # Explain a merchant's Q3 -> Q1 move
  priorityx drivers events.csv --entity-col merchant --time-col created_at \
    --entity acme --from 2024-Q2 --to 2024-Q3

  # Restrict to chosen columns and bin a numeric one
  priorityx drivers events.csv --entity-col merchant --time-col created_at \
    --entity acme --from 2024-Q2 --to 2024-Q3 \
    --subcategory-cols channel,region --numeric-cols 'amount:0,100,1000,10000'`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteDrivers(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run driver analysis", err)
		}
	},
}
