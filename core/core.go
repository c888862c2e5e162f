// Package core has core logic for auditing, ranking and tracking metric catalogs.
package core

import (
	"context"
	"time"

	"github.com/huangsam/kpiaudit/core/algo"
	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/internal/outwriter"
	"github.com/huangsam/kpiaudit/schema"
)

// ExecutorFunc defines the function signature for executing different audit views.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// GetAuditResults classifies the whole catalog, in catalog order.
func GetAuditResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.AuditOutput, time.Duration, error) {
	start := time.Now()
	output, err := runAudit(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	return output, time.Since(start), nil
}

// GetTopResults returns the top high-value metrics of every department.
func GetTopResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.DepartmentTop, time.Duration, error) {
	start := time.Now()
	output, err := runAudit(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	top, err := algo.TopMetricsByDepartment(output.Metrics, cfg.TopN)
	if err != nil {
		return nil, 0, err
	}
	return schema.EnrichDepartments(top, algo.SortedDepartments(output.Metrics)), time.Since(start), nil
}

// GetRemovalResults returns the visible vanity metrics that should leave dashboards.
func GetRemovalResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.AnnotatedMetric, time.Duration, error) {
	start := time.Now()
	output, err := runAudit(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	return algo.MetricsToRemove(output.Metrics), time.Since(start), nil
}

// GetImpactResults returns metrics ranked by net impact, capped by the result limit.
func GetImpactResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) ([]schema.AnnotatedMetric, time.Duration, error) {
	start := time.Now()
	output, err := runAudit(ctx, cfg, mgr)
	if err != nil {
		return nil, 0, err
	}
	ranked, err := algo.RankByImpact(output.Metrics, cfg.ResultLimit)
	if err != nil {
		return nil, 0, err
	}
	return ranked, time.Since(start), nil
}

// GetSummaryResults returns the catalog-wide and per-department aggregates.
func GetSummaryResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (schema.AuditSummary, time.Duration, error) {
	start := time.Now()
	output, err := runAudit(ctx, cfg, mgr)
	if err != nil {
		return schema.AuditSummary{}, 0, err
	}
	return algo.Summarize(output.Metrics), time.Since(start), nil
}

// ExecuteAudit runs the full audit and prints every classified metric.
func ExecuteAudit(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	output, duration, err := GetAuditResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintAuditResults(output.Metrics, cfg, duration)
}

// ExecuteTop prints the top high-value metrics per department.
func ExecuteTop(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	top, duration, err := GetTopResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintTopResults(top, cfg, duration)
}

// ExecuteRemove prints the removal recommendations.
func ExecuteRemove(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	removals, duration, err := GetRemovalResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintRemovalResults(removals, cfg, duration)
}

// ExecuteImpact prints metrics ranked by impact.
func ExecuteImpact(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	ranked, duration, err := GetImpactResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintImpactResults(ranked, cfg, duration)
}

// ExecuteSummary prints the audit summary.
func ExecuteSummary(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	summary, duration, err := GetSummaryResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	return outwriter.PrintSummaryResults(summary, cfg, duration)
}

// ExecuteRules prints the active rule tables without reading a catalog.
func ExecuteRules(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.PrintRuleDefinitions(RuleSetFromConfig(cfg), cfg)
}
