package mcp_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/huangsam/kpiaudit/internal/contract"
	mcp_internal "github.com/huangsam/kpiaudit/internal/mcp"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogPath = "../ingest/testdata/catalog.csv"

func newBaseConfig() *contract.Config {
	return &contract.Config{
		Source:          schema.FileSource,
		TopN:            contract.DefaultTopN,
		ResultLimit:     contract.DefaultResultLimit,
		Workers:         2,
		Precision:       contract.DefaultPrecision,
		Output:          schema.JSONOut,
		ReviewCycleDays: 90,
		StaleCycles:     contract.DefaultStaleCycles,
		FreshCycles:     contract.DefaultFreshCycles,
		StoreBackend:    schema.NoneBackend,
	}
}

// callTool invokes a registered tool and returns its result.
func callTool(t *testing.T, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	s := mcp_internal.NewMCPServer(newBaseConfig(), nil)
	tool := s.GetTool(name)
	require.NotNil(t, tool, "Tool %s should exist", name)

	req := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err, "The MCP handler should not return a raw error for tool logic failures")
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestMCPServerHandlers_ValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		tool     string
		args     map[string]any
		contains string
	}{
		{
			name:     "audit_metrics missing csv_path",
			tool:     "audit_metrics",
			args:     map[string]any{},
			contains: "csv_path is required",
		},
		{
			name:     "top_metrics_by_department zero top",
			tool:     "top_metrics_by_department",
			args:     map[string]any{"csv_path": catalogPath, "top": 0.0},
			contains: "invalid parameters",
		},
		{
			name:     "impact_ranking negative limit",
			tool:     "impact_ranking",
			args:     map[string]any{"csv_path": catalogPath, "limit": -1.0},
			contains: "invalid parameters",
		},
		{
			name:     "metrics_to_remove missing file",
			tool:     "metrics_to_remove",
			args:     map[string]any{"csv_path": "does-not-exist.csv"},
			contains: "removal failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, tt.tool, tt.args)
			assert.True(t, res.IsError, "The response should indicate an error state")
			assert.Contains(t, resultText(t, res), tt.contains)
		})
	}
}

func TestMCPServerHandlers_AuditMetrics(t *testing.T) {
	res := callTool(t, "audit_metrics", map[string]any{"csv_path": catalogPath})
	require.False(t, res.IsError, resultText(t, res))

	var output schema.AuditOutput
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &output))
	require.Len(t, output.Metrics, 9)
	assert.Equal(t, "Page Views", output.Metrics[0].MetricName)
	for _, m := range output.Metrics {
		assert.False(t, m.IsVanity && m.IsHighValue, m.MetricName)
	}
}

func TestMCPServerHandlers_DepartmentFilter(t *testing.T) {
	res := callTool(t, "audit_metrics", map[string]any{"csv_path": catalogPath, "department": "sales"})
	require.False(t, res.IsError, resultText(t, res))

	var output schema.AuditOutput
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &output))
	require.Len(t, output.Metrics, 3)
	for _, m := range output.Metrics {
		assert.Equal(t, "Sales", m.Department)
	}
}

func TestMCPServerHandlers_TopMetrics(t *testing.T) {
	res := callTool(t, "top_metrics_by_department", map[string]any{"csv_path": catalogPath, "top": 1.0})
	require.False(t, res.IsError, resultText(t, res))

	var top []schema.DepartmentTop
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &top))
	require.Len(t, top, 3)

	byDept := make(map[string][]schema.EnrichedMetric, len(top))
	for _, d := range top {
		byDept[d.Department] = d.Metrics
	}
	assert.Empty(t, byDept["HR"])
	require.Len(t, byDept["Marketing"], 1)
	assert.Equal(t, "CAC", byDept["Marketing"][0].MetricName)
	require.Len(t, byDept["Sales"], 1)
	assert.Equal(t, "Win Rate", byDept["Sales"][0].MetricName)
}

func TestMCPServerHandlers_MetricsToRemove(t *testing.T) {
	res := callTool(t, "metrics_to_remove", map[string]any{"csv_path": catalogPath})
	require.False(t, res.IsError, resultText(t, res))

	var removals []schema.EnrichedMetric
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &removals))
	require.Len(t, removals, 4)
	for i, m := range removals {
		assert.True(t, m.IsVanity)
		assert.True(t, m.VisibleInDashboard)
		assert.Equal(t, i+1, m.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, removals[i-1].VanityScore, m.VanityScore)
		}
	}
}

func TestMCPServerHandlers_ImpactRanking(t *testing.T) {
	res := callTool(t, "impact_ranking", map[string]any{"csv_path": catalogPath, "limit": 2.0})
	require.False(t, res.IsError, resultText(t, res))

	var ranked []schema.EnrichedMetric
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, "Win Rate", ranked[0].MetricName)
	assert.GreaterOrEqual(t, ranked[0].ImpactScore, ranked[1].ImpactScore)
}

func TestMCPServerHandlers_AuditSummary(t *testing.T) {
	res := callTool(t, "audit_summary", map[string]any{"csv_path": catalogPath})
	require.False(t, res.IsError, resultText(t, res))

	var summary schema.AuditSummary
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &summary))
	assert.Equal(t, 9, summary.Overview.TotalMetrics)
	assert.Equal(t, 3, summary.Overview.Departments)
	assert.Equal(t, 4, summary.Overview.RemovableCount)
	assert.Equal(t, 9, summary.VisibilityUsage.Total)
}
