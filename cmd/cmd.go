// Package cmd defines the command-line interface for kpiaudit.
package cmd

import (
	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(historyCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("as-of", "", "Reference date for ISO catalog dates (YYYY-MM-DD, RFC3339 or time ago)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().StringP("department", "d", "", "Comma-separated list of departments to audit")
	rootCmd.PersistentFlags().Bool("detail", false, "Print flags, recency and reasons for each metric")
	rootCmd.PersistentFlags().Int("fresh-cycles", contract.DefaultFreshCycles, "Review cycles within which a decision counts as recent")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of results to display in the impact ranking")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("review-cycle", contract.DefaultReviewCycle, "Length of one review cycle (e.g. '3 months', '90 days')")
	rootCmd.PersistentFlags().Int64("run-id", 0, "Stored audit run to read with --source store (0 = latest)")
	rootCmd.PersistentFlags().Bool("save", false, "Record this audit in the history store")
	rootCmd.PersistentFlags().String("source", string(schema.FileSource), "Catalog source: file or store")
	rootCmd.PersistentFlags().Int("stale-cycles", contract.DefaultStaleCycles, "Review cycles after which a metric counts as stale")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "History backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("thresholds-override", "", "Classification thresholds (format: 'vanity:3,value:3')")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of topCmd to Viper
	topCmd.Flags().IntP("top", "n", contract.DefaultTopN, "Number of high-value metrics to show per department")
	if err := viper.BindPFlags(topCmd.Flags()); err != nil {
		contract.LogFatal("Error binding top flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
