package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/huangsam/kpiaudit/core"
	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

var errMissingCSVPath = fmt.Errorf("%w: csv_path is required", schema.ErrInvalidArgument)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// configFor clones the base config and applies the arguments shared by every tool.
func (h *toolHandler) configFor(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	cfg.InputPath = request.GetString("csv_path", "")
	if cfg.InputPath == "" {
		return nil, errMissingCSVPath
	}
	cfg.Source = schema.FileSource
	if d := request.GetString("department", ""); d != "" {
		cfg.Departments = contract.ParseDepartments(d)
	}
	return cfg, nil
}

// hasArgument reports whether the caller passed name explicitly.
func hasArgument(request mcp.CallToolRequest, name string) bool {
	_, ok := request.GetArguments()[name]
	return ok
}

// jsonResult renders data as an indented JSON text result.
func jsonResult(data any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// failure turns an audit error into a tool error so the transport stays healthy.
func failure(action string, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, schema.ErrInvalidArgument) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err)), nil
	}
	return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err)), nil
}

func (h *toolHandler) handleAuditMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return failure("audit", err)
	}

	output, _, err := core.GetAuditResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return failure("audit", err)
	}
	return jsonResult(output)
}

func (h *toolHandler) handleTopMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return failure("ranking", err)
	}
	if hasArgument(request, "top") {
		cfg.TopN = request.GetInt("top", 0)
	}

	top, _, err := core.GetTopResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return failure("ranking", err)
	}
	return jsonResult(top)
}

func (h *toolHandler) handleMetricsToRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return failure("removal", err)
	}

	removals, _, err := core.GetRemovalResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return failure("removal", err)
	}
	return jsonResult(schema.EnrichMetrics(removals))
}

func (h *toolHandler) handleImpactRanking(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return failure("impact ranking", err)
	}
	if hasArgument(request, "limit") {
		cfg.ResultLimit = request.GetInt("limit", 0)
	}

	ranked, _, err := core.GetImpactResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return failure("impact ranking", err)
	}
	return jsonResult(schema.EnrichMetrics(ranked))
}

func (h *toolHandler) handleAuditSummary(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.configFor(request)
	if err != nil {
		return failure("summary", err)
	}

	summary, _, err := core.GetSummaryResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return failure("summary", err)
	}
	return jsonResult(summary)
}
