// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the KPI audit MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"KPI Audit Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	csvPath := mcp.WithString("csv_path", mcp.Description("Path to the KPI catalog CSV file."), mcp.Required())
	department := mcp.WithString("department", mcp.Description("Comma-separated departments to keep (case-insensitive)."))

	// --- 1. Tool: audit_metrics ---
	s.AddTool(mcp.NewTool("audit_metrics",
		mcp.WithDescription("Classify every metric of a KPI catalog as vanity, high-value or neutral with scores and reasons."),
		csvPath,
		department,
	), h.handleAuditMetrics)

	// --- 2. Tool: top_metrics_by_department ---
	s.AddTool(mcp.NewTool("top_metrics_by_department",
		mcp.WithDescription("List the top high-value metrics of each department."),
		csvPath,
		department,
		mcp.WithNumber("top", mcp.Description("Maximum metrics per department. Defaults to 3.")),
	), h.handleTopMetrics)

	// --- 3. Tool: metrics_to_remove ---
	s.AddTool(mcp.NewTool("metrics_to_remove",
		mcp.WithDescription("List vanity metrics still shown on dashboards, most removable first."),
		csvPath,
		department,
	), h.handleMetricsToRemove)

	// --- 4. Tool: impact_ranking ---
	s.AddTool(mcp.NewTool("impact_ranking",
		mcp.WithDescription("Rank metrics by net impact, the value score minus the vanity score."),
		csvPath,
		department,
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleImpactRanking)

	// --- 5. Tool: audit_summary ---
	s.AddTool(mcp.NewTool("audit_summary",
		mcp.WithDescription("Summarize a KPI catalog with overview counts, department breakdowns and cross-tabs."),
		csvPath,
		department,
	), h.handleAuditSummary)

	return s
}

// StartMCPServer starts the KPI audit MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
