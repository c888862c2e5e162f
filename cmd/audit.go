package cmd

import (
	"github.com/huangsam/kpiaudit/core"
	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/spf13/cobra"
)

// auditCmd classifies every metric of a catalog.
var auditCmd = &cobra.Command{
	Use:   "audit [csv-path]",
	Short: "Classify every metric as vanity, high-value or neutral.",
	Long: `Score each metric of a KPI catalog against the vanity and value rules.

Every metric receives:
- A vanity score with one reason per rule that fired
- A value score with one reason per rule that fired
- An impact score (value minus vanity)
- A single label: Vanity, High-Value or Neutral

A metric that crosses the vanity threshold is never labeled High-Value,
even when its value score is high. Results keep the catalog order.

Examples:
  # Audit a catalog with the default rules
  kpiaudit audit kpi_catalog.csv

  # Show flags, recency and reasons
  kpiaudit audit kpi_catalog.csv --detail

  # Audit only two departments and save the run to history
  kpiaudit audit kpi_catalog.csv --department "Sales,Marketing" --save

  # Re-audit the latest saved run with stricter thresholds
  kpiaudit audit --source store --thresholds-override "vanity:4"

  # Export the audit for a BI tool
  kpiaudit audit kpi_catalog.csv --output parquet --output-file audit.parquet`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteAudit(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot run audit", err)
		}
	},
}

// topCmd shows the best metrics of every department.
var topCmd = &cobra.Command{
	Use:   "top [csv-path]",
	Short: "Show the top high-value metrics of each department.",
	Long: `List up to N high-value metrics per department, best first.

Metrics are ordered by value score, then by how recently they informed a
decision, then by name. Departments without any high-value metric are still
listed so gaps are visible.

Examples:
  # Top three metrics per department
  kpiaudit top kpi_catalog.csv

  # Top five metrics as JSON
  kpiaudit top kpi_catalog.csv --top 5 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteTop(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot rank metrics", err)
		}
	},
}

// removeCmd recommends dashboard metrics to retire.
var removeCmd = &cobra.Command{
	Use:   "remove [csv-path]",
	Short: "Recommend vanity metrics to remove from dashboards.",
	Long: `List every vanity metric that is still shown on a dashboard.

Metrics are ordered by vanity score, then department, then name, so the
clearest removals come first. Hidden vanity metrics are not listed since
removing them frees no dashboard space.

Examples:
  # Removal list with reasons
  kpiaudit remove kpi_catalog.csv

  # Removal list for one department as CSV
  kpiaudit remove kpi_catalog.csv --department Marketing --output csv --output-file remove.csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRemove(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot recommend removals", err)
		}
	},
}

// impactCmd ranks metrics by net impact.
var impactCmd = &cobra.Command{
	Use:   "impact [csv-path]",
	Short: "Rank metrics by net impact (value minus vanity).",
	Long: `Rank the whole catalog by impact score, highest first.

Ties are broken by department, then by name.

Examples:
  # Ten most impactful metrics
  kpiaudit impact kpi_catalog.csv --limit 10

  # Full ranking as JSON
  kpiaudit impact kpi_catalog.csv --limit 1000 --output json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteImpact(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot rank impact", err)
		}
	},
}

// summaryCmd aggregates the audit.
var summaryCmd = &cobra.Command{
	Use:   "summary [csv-path]",
	Short: "Summarize the audit by department with cross-tabs.",
	Long: `Aggregate the audit into an executive summary.

Shows:
- Catalog-wide counts and vanity/high-value percentages
- The dashboard reduction if every removal is applied
- A per-department breakdown
- Visibility x usage and executive request x usage cross-tabs
- Score distributions (with --detail)

Examples:
  # Executive summary
  kpiaudit summary kpi_catalog.csv --detail

  # Department breakdown as CSV
  kpiaudit summary kpi_catalog.csv --output csv`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSummary(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot summarize audit", err)
		}
	},
}

// rulesCmd displays the active rule tables.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Display the vanity and value rules with their weights",
	Long: `Show the rule tables used to classify metrics.

Includes custom weights and thresholds from .kpiaudit.yaml and the recency
windows derived from the review cycle. A rule with weight 0 is disabled.

No catalog is read - this is purely informational.

Examples:
  # Show default rules
  kpiaudit rules

  # View with custom weights from config file
  kpiaudit rules --config .kpiaudit.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: settingsSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRules(rootCtx, cfg, storeManager); err != nil {
			contract.LogFatal("Cannot display rules", err)
		}
	},
}
