package cmd

import (
	"fmt"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/internal/iocache"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyBackend reads and validates the history backend settings.
func historyBackend() (schema.DatabaseBackend, string, error) {
	if err := readConfigFile(); err != nil {
		return "", "", err
	}
	connStr := viper.GetString("store-db-connect")
	backend, err := contract.ValidateBackend(viper.GetString("store-backend"), connStr)
	if err != nil {
		return "", "", err
	}
	return backend, connStr, nil
}

// historySetup loads minimal configuration needed for history operations.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	if err := iocache.InitStores(backend, connStr); err != nil {
		return fmt.Errorf("failed to initialize audit history: %w", err)
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMigrateSetup loads the backend without opening the store, so that
// migrations can run against a fresh database.
func historyMigrateSetup(_ *cobra.Command, _ []string) error {
	backend, connStr, err := historyBackend()
	if err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = iocache.GetHistoryDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr
	return nil
}

// historyCmd focused on audit history management.
//
// Note: History subcommands use minimal initialization (historySetup) instead of
// the full sharedSetup used by audit commands. This avoids catalog validation
// and complex config processing for simple history operations.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage saved audit runs and exports",
	Long: `Manage the audit history recorded with --save.

Each saved audit stores:
- Run metadata (UUID, timestamp, configuration, duration)
- Every metric with its flags, recency, scores, reasons and label

Saved runs can be re-audited with --source store and exported for BI tools.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show audit history statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all saved audits
  migrate - Run database schema migrations

Examples:
  # Check history status
  kpiaudit history status

  # Export for analysis in pandas/DuckDB
  kpiaudit history export --output-file kpi-history`,
}

// historyClearCmd clears the audit history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all saved audit runs",
	Long: `Delete all saved audit runs and metric results.

WARNING: This action cannot be undone. Consider exporting data first.

Examples:
  # Export before clearing
  kpiaudit history export --output-file backup
  kpiaudit history clear`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(cfg.StoreBackend, cfg.StoreDBConnect, cfg.StoreDBConnect); err != nil {
			contract.LogFatal("Failed to clear audit history", err)
		}
		fmt.Println("Audit history cleared successfully.")
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display audit history statistics and connection details",
	Long: `Show detailed information about saved audits.

Displays:
- Backend type and connection status
- Total number of saved runs
- Last and oldest run timestamps
- Total metrics stored across all runs
- Database table sizes

Examples:
  # Check history status
  kpiaudit history status

  # Check a PostgreSQL history store
  KPIAUDIT_STORE_BACKEND=postgresql KPIAUDIT_STORE_DB_CONNECT="host=localhost dbname=kpi" kpiaudit history status`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := iocache.Manager.GetAuditStore()
		if store == nil {
			contract.LogFatal("Failed to get audit history status", fmt.Errorf("audit history store is not available"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get audit history status", err)
		}
		iocache.PrintHistoryStatus(status)
	},
}

// historyExportCmd exports the audit history to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved audits to Parquet for BI tools and analytics",
	Long: `Export all saved audit data to Parquet format for use with analytics tools.

Exports two datasets next to the --output-file prefix:
- <prefix>.audit_runs.parquet - metadata about each saved audit
- <prefix>.metric_results.parquet - every classified metric per run

Requires: --output-file parameter

Examples:
  # Export all data
  kpiaudit history export --output-file kpi-history

  # Use with DuckDB for analysis
  duckdb -c "SELECT department, avg(vanity_score) FROM read_parquet('kpi-history.metric_results.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(iocache.Manager.GetAuditStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export audit history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the audit history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  kpiaudit history migrate

  # Migrate to specific version
  kpiaudit history migrate --target-version 2

  # Rollback to initial state
  kpiaudit history migrate --target-version 0`,
	PreRunE: historyMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
