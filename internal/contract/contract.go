// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/kpiaudit/schema"
)

// StoreManager defines the interface for reaching the audit history store.
// This allows the persistence layer to be mocked for testing.
type StoreManager interface {
	GetAuditStore() AuditStore
}

// AuditStore defines the interface for tracking audit runs and storing classified metrics.
type AuditStore interface {
	// BeginAudit creates a new audit run and returns its numeric ID
	BeginAudit(run schema.AuditRun, configParams map[string]any) (int64, error)

	// RecordMetricResults stores every classified metric of a run in one transaction
	RecordMetricResults(runID int64, metrics []schema.AnnotatedMetric) error

	// EndAudit updates the audit run with completion data
	EndAudit(runID int64, endTime time.Time, totalMetrics int) error

	// LoadRun returns the classified metrics of a run; zero selects the latest run
	LoadRun(runID int64) (schema.AuditRunRecord, []schema.AnnotatedMetric, error)

	// GetStatus returns status information about the audit store
	GetStatus() (schema.AuditStatus, error)

	// GetAllRuns returns every recorded audit run
	GetAllRuns() ([]schema.AuditRunRecord, error)

	// GetAllMetricResults returns every recorded metric result
	GetAllMetricResults() ([]schema.MetricResultRecord, error)

	// Close closes the underlying connection
	Close() error
}
