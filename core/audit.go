package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/kpiaudit/core/algo"
	"github.com/huangsam/kpiaudit/internal"
	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/internal/ingest"
	"github.com/huangsam/kpiaudit/schema"
	"golang.org/x/sync/errgroup"
)

// errNoStore is returned when an operation needs audit history but none is configured.
var errNoStore = errors.New("audit history store is not available")

// RuleSetFromConfig builds the classifier rules from validated configuration.
// Unset fields fall back to their defaults.
func RuleSetFromConfig(cfg *contract.Config) algo.RuleSet {
	policy := algo.DefaultRecencyPolicy()
	if cfg.ReviewCycleDays > 0 {
		policy.ReviewCycleDays = cfg.ReviewCycleDays
	}
	if cfg.StaleCycles > 0 {
		policy.StaleCycles = cfg.StaleCycles
	}
	if cfg.FreshCycles > 0 {
		policy.FreshCycles = cfg.FreshCycles
	}
	return algo.NewRuleSet(cfg.ComputedWeights, cfg.Thresholds, policy)
}

// Annotate classifies records across a bounded pool of workers. Each worker owns
// a contiguous window of the output, so results keep the input order.
func Annotate(ctx context.Context, records []schema.MetricRecord, rs algo.RuleSet, workers int) ([]schema.AnnotatedMetric, error) {
	if err := algo.ValidateRecords(records); err != nil {
		return nil, err
	}
	out := make([]schema.AnnotatedMetric, len(records))
	if len(records) == 0 {
		return out, nil
	}

	workers = max(1, min(workers, len(records)))
	chunk := (len(records) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(records); start += chunk {
		end := min(start+chunk, len(records))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			part, err := algo.Classify(records[start:end], rs)
			if err != nil {
				return err
			}
			copy(out[start:end], part)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// storeOf returns the audit store of a manager, tolerating a nil manager.
func storeOf(mgr contract.StoreManager) contract.AuditStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetAuditStore()
}

// loadCatalog reads base records from the configured source.
func loadCatalog(cfg *contract.Config, mgr contract.StoreManager) ([]schema.MetricRecord, []schema.IngestWarning, error) {
	if cfg.Source == schema.StoreSource {
		store := storeOf(mgr)
		if store == nil {
			return nil, nil, errNoStore
		}
		_, metrics, err := store.LoadRun(cfg.RunID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load audit run: %w", err)
		}
		records := make([]schema.MetricRecord, len(metrics))
		for i, m := range metrics {
			records[i] = m.MetricRecord
		}
		if len(cfg.Departments) > 0 {
			records = ingest.FilterRecords(records, cfg.Departments)
		}
		return records, nil, nil
	}

	table, err := ingest.LoadFile(cfg.InputPath, ingest.Options{AsOf: cfg.AsOf, Departments: cfg.Departments})
	if err != nil {
		return nil, nil, err
	}
	return table.Records, table.Warnings, nil
}

// runAudit performs the common load, classify and track steps shared by every view.
func runAudit(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (*schema.AuditOutput, error) {
	quiet := shouldSuppressHeader(ctx)
	if !quiet {
		internal.LogAuditHeader(cfg)
	}

	// --- 1. Load Phase ---
	records, warnings, err := loadCatalog(cfg, mgr)
	if err != nil {
		return nil, err
	}
	if !quiet {
		internal.LogIngestWarnings(cfg, warnings)
	}

	// --- 2. Classification Phase ---
	metrics, err := Annotate(ctx, records, RuleSetFromConfig(cfg), cfg.Workers)
	if err != nil {
		return nil, err
	}

	output := &schema.AuditOutput{
		Source:   internal.SourceName(cfg),
		Metrics:  metrics,
		Warnings: warnings,
	}

	// --- 3. Tracking Phase (if requested) ---
	if cfg.Save {
		trackAudit(cfg, mgr, output)
		if !quiet && output.RunID > 0 {
			internal.LogSavedRun(cfg, output.RunID, output.RunUUID)
		}
	}

	return output, nil
}

// trackAudit records the audit in history. Failures are logged and never abort the audit.
func trackAudit(cfg *contract.Config, mgr contract.StoreManager, output *schema.AuditOutput) {
	store := storeOf(mgr)
	if store == nil {
		contract.LogWarn("Audit tracking skipped", errNoStore)
		return
	}

	run := schema.AuditRun{
		RunUUID: uuid.NewString(),
		Source:  output.Source,
		Started: time.Now(),
	}
	runID, err := store.BeginAudit(run, cfg.ConfigParams())
	if err != nil {
		contract.LogWarn("Audit tracking initialization failed", err)
		return
	}
	if err := store.RecordMetricResults(runID, output.Metrics); err != nil {
		contract.LogWarn("Failed to record metric results", err)
	}
	if err := store.EndAudit(runID, time.Now(), len(output.Metrics)); err != nil {
		contract.LogWarn("Failed to finalize audit tracking", err)
	}

	output.RunID = runID
	output.RunUUID = run.RunUUID
}
