package schema

// EnrichedMetric adds presentation data to an AnnotatedMetric.
type EnrichedMetric struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	AnnotatedMetric
}

// DepartmentTop is one department's slice of the top-metrics view.
type DepartmentTop struct {
	Department string           `json:"department"`
	Metrics    []EnrichedMetric `json:"metrics"`
}

// GetPlainLabel returns the verdict label for an annotated metric.
func GetPlainLabel(m AnnotatedMetric) string {
	switch {
	case m.IsVanity:
		return VanityLabel
	case m.IsHighValue:
		return HighValueLabel
	default:
		return NeutralLabel
	}
}

// DashboardStatus tells whether a recommended metric is already shown or should be added to a dashboard.
func DashboardStatus(m AnnotatedMetric) string {
	if m.VisibleInDashboard {
		return OnDashboardStatus
	}
	return PromoteStatus
}

// EnrichMetrics adds rank and label to a list of annotated metrics.
func EnrichMetrics(metrics []AnnotatedMetric) []EnrichedMetric {
	output := make([]EnrichedMetric, len(metrics))
	for i, m := range metrics {
		output[i] = EnrichedMetric{
			Rank:            i + 1,
			Label:           GetPlainLabel(m),
			AnnotatedMetric: m,
		}
	}
	return output
}

// EnrichDepartments flattens a department mapping into ordered, enriched sections.
// departments controls the order; every listed department appears even when empty.
func EnrichDepartments(top map[string][]AnnotatedMetric, departments []string) []DepartmentTop {
	output := make([]DepartmentTop, 0, len(departments))
	for _, dept := range departments {
		output = append(output, DepartmentTop{
			Department: dept,
			Metrics:    EnrichMetrics(top[dept]),
		})
	}
	return output
}

// AuditOutput is the classified catalog produced by one audit.
type AuditOutput struct {
	RunID    int64             `json:"run_id,omitempty"`
	RunUUID  string            `json:"run_uuid,omitempty"`
	Source   string            `json:"source"`
	Metrics  []AnnotatedMetric `json:"metrics"`
	Warnings []IngestWarning   `json:"warnings,omitempty"`
}
