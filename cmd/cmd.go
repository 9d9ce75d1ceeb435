// Package cmd defines the command-line interface for priorityx.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/priorityx/priorityx/internal/contract"
	"github.com/priorityx/priorityx/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(movementCmd)
	rootCmd.AddCommand(transitionsCmd)
	rootCmd.AddCommand(driversCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("entity-col", "", "Column holding the entity identifier")
	rootCmd.PersistentFlags().String("time-col", "", "Column holding the event timestamp")
	rootCmd.PersistentFlags().String("count-col", "", "Optional column summed as the period count (default: event count)")
	rootCmd.PersistentFlags().String("x-metric", "", "Optional column averaged per period as the x metric")
	rootCmd.PersistentFlags().String("y-metric", "", "Optional column averaged per period as the y metric")
	rootCmd.PersistentFlags().String("granularity", string(schema.Quarterly), "Period granularity: yearly, semiannual, quarterly, monthly")
	rootCmd.PersistentFlags().Int("min-observations", contract.DefaultMinObservations, "Drop entities observed in fewer distinct periods")
	rootCmd.PersistentFlags().Float64("min-total-count", contract.DefaultMinTotalCount, "Drop entities whose summed count is below this")
	rootCmd.PersistentFlags().Int("decline-window", 0, "Drop entities last seen more than N periods before the window end (0 = off)")
	rootCmd.PersistentFlags().String("min-date", "", "Ignore events before this date (ISO8601 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("max-date", "", "Ignore events after this date (ISO8601 or YYYY-MM-DD)")
	rootCmd.PersistentFlags().String("x-effect", "", "Model effect applied to the x axis")
	rootCmd.PersistentFlags().String("y-effect", "", "Model effect applied to the y axis")
	rootCmd.PersistentFlags().String("family", "", "Model family override for scoring")
	rootCmd.PersistentFlags().Int64("seed", 0, "Random seed for reproducible fits")
	rootCmd.PersistentFlags().Float64("strong-margin", contract.DefaultStrongPositionMargin, "Margin past both references for a strong Q1 entry")
	rootCmd.PersistentFlags().Float64("boundary-margin", contract.DefaultBoundaryMargin, "Band around a quadrant boundary for the Monitor tier")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of movementCmd to Viper
	movementCmd.Flags().Bool("cumulative", false, "Accumulate events to each period's end instead of windowing")
	if err := viper.BindPFlags(movementCmd.Flags()); err != nil {
		contract.LogFatal("Error binding movement flags", err)
	}

	// Bind all flags of transitionsCmd to Viper
	transitionsCmd.Flags().Bool("risk-increasing", false, "Keep only transitions toward a riskier quadrant")
	if err := viper.BindPFlags(transitionsCmd.Flags()); err != nil {
		contract.LogFatal("Error binding transitions flags", err)
	}

	// Bind all flags of driversCmd to Viper
	driversCmd.Flags().String("entity", "", "Entity whose transition to explain")
	driversCmd.Flags().String("from", "", "Earlier period of the transition (e.g. 2024-Q2)")
	driversCmd.Flags().String("to", "", "Later period of the transition (e.g. 2024-Q3)")
	driversCmd.Flags().String("subcategory-cols", "", "Comma-separated categorical columns (empty auto-detects)")
	driversCmd.Flags().String("numeric-cols", "", "Numeric column bins, e.g. 'amount:0,1e6,5e6;days:4'")
	driversCmd.Flags().Int("top-n", contract.DefaultTopN, "Maximum drivers reported per column")
	driversCmd.Flags().Float64("min-delta", contract.DefaultMinDelta, "Drop drivers whose absolute delta is below this")
	if err := viper.BindPFlags(driversCmd.Flags()); err != nil {
		contract.LogFatal("Error binding drivers flags", err)
	}

	// Bind all flags of cacheMigrateCmd to Viper
	cacheMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(cacheMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding cache migrate flags", err)
	}
}
