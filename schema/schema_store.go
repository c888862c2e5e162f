package schema

import "time"

// AuditRunRecord represents a row from the kpiaudit_runs table.
type AuditRunRecord struct {
	RunID         int64
	RunUUID       string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalMetrics  int32
	Source        string
	ConfigParams  *string
}

// MetricResultRecord represents a row from the kpiaudit_metric_results table.
type MetricResultRecord struct {
	RunID                int64
	Position             int32 // Catalog order within the run
	Department           string
	MetricName           string
	VisibleInDashboard   bool
	UsedInDecisionMaking bool
	ExecutiveRequested   bool
	LastReviewed         string
	LastReviewedDays     *int32
	LastUsedForDecision  string
	LastUsedDays         *int32
	InterpretationNotes  string
	VanityScore          float64
	VanityReasons        string // JSON array
	IsVanity             bool
	ValueScore           float64
	ValueReasons         string // JSON array
	IsHighValue          bool
	ImpactScore          float64
	Label                string
}

// AuditRun is what a single audit hands to the history store.
type AuditRun struct {
	RunID   int64
	RunUUID string
	Source  string
	Started time.Time
}
