package schema

import "time"

// AuditStatus represents the status of the audit history store.
type AuditStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunUUID   string           `json:"last_run_uuid"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalMetrics  int              `json:"total_metrics"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
