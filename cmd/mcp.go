package cmd

import (
	"github.com/huangsam/kpiaudit/internal/mcp"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the KPI audit MCP server",
	Long: `Launch an MCP server on stdio that lets AI agents audit KPI catalogs via standard tools.

Tools:
  audit_metrics              - classify every metric of a catalog
  top_metrics_by_department  - best high-value metrics per department
  metrics_to_remove          - visible vanity metrics, most removable first
  impact_ranking             - metrics ranked by value minus vanity
  audit_summary              - overview, department breakdown and cross-tabs

Each tool takes a csv_path argument. Rule weights, thresholds and the review
cycle come from the usual flags, environment and .kpiaudit.yaml.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Headers are suppressed per request so stdio stays clean for the protocol.
		if err := settingsSetup(cmd, args); err != nil {
			return err
		}
		cfg.Source = schema.FileSource
		return initHistory()
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, storeManager)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
