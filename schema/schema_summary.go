package schema

// Overview is the catalog-wide headline of an audit.
type Overview struct {
	TotalMetrics          int     `json:"total_metrics"`
	Departments           int     `json:"departments"`
	VisibleCount          int     `json:"visible_count"`
	DecisionCount         int     `json:"decision_count"`
	VanityCount           int     `json:"vanity_count"`
	HighValueCount        int     `json:"high_value_count"`
	VanityPct             float64 `json:"vanity_pct"`
	HighValuePct          float64 `json:"high_value_pct"`
	RemovableCount        int     `json:"removable_count"`
	DashboardReductionPct float64 `json:"dashboard_reduction_pct"`
}

// DepartmentSummary breaks the overview down for one department.
type DepartmentSummary struct {
	Department     string  `json:"department"`
	TotalMetrics   int     `json:"total_metrics"`
	VisibleCount   int     `json:"visible_count"`
	DecisionCount  int     `json:"decision_count"`
	VanityCount    int     `json:"vanity_count"`
	HighValueCount int     `json:"high_value_count"`
	RemovableCount int     `json:"removable_count"`
	VanityPct      float64 `json:"vanity_pct"`
	HighValuePct   float64 `json:"high_value_pct"`
	ReductionPct   float64 `json:"reduction_pct"`
}

// CrossTab counts records across two boolean fields.
// Counts is indexed [row][column] with 0 for No and 1 for Yes.
type CrossTab struct {
	RowField    string    `json:"row_field"`
	ColumnField string    `json:"column_field"`
	Counts      [2][2]int `json:"counts"`
	RowTotals   [2]int    `json:"row_totals"`
	ColTotals   [2]int    `json:"col_totals"`
	Total       int       `json:"total"`
}

// ScoreBucket is one bar of a score distribution.
type ScoreBucket struct {
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// AuditSummary bundles every aggregate view of an audit.
type AuditSummary struct {
	Overview           Overview            `json:"overview"`
	Departments        []DepartmentSummary `json:"departments"`
	VisibilityUsage    CrossTab            `json:"visibility_usage"`
	ExecutiveUsage     CrossTab            `json:"executive_usage"`
	ValueDistribution  []ScoreBucket       `json:"value_distribution"`
	VanityDistribution []ScoreBucket       `json:"vanity_distribution"`
}
