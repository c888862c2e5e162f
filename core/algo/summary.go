package algo

import (
	"slices"

	"github.com/huangsam/kpiaudit/schema"
)

// Summarize derives the overview, per-department breakdown, cross-tabs and score
// distributions from an annotated table.
func Summarize(metrics []schema.AnnotatedMetric) schema.AuditSummary {
	removable := MetricsToRemove(metrics)
	departments := SortedDepartments(metrics)

	ov := schema.Overview{
		TotalMetrics:   len(metrics),
		Departments:    len(departments),
		RemovableCount: len(removable),
	}
	perDept := make(map[string]*schema.DepartmentSummary, len(departments))
	for _, d := range departments {
		perDept[d] = &schema.DepartmentSummary{Department: d}
	}
	for _, r := range removable {
		perDept[r.Department].RemovableCount++
	}

	visibility := schema.CrossTab{RowField: "Visible_in_Dashboard", ColumnField: "Used_in_Decision_Making"}
	executive := schema.CrossTab{RowField: "Executive_Requested", ColumnField: "Used_in_Decision_Making"}

	for _, m := range metrics {
		ds := perDept[m.Department]
		ds.TotalMetrics++
		if m.VisibleInDashboard {
			ov.VisibleCount++
			ds.VisibleCount++
		}
		if m.UsedInDecisionMaking {
			ov.DecisionCount++
			ds.DecisionCount++
		}
		if m.IsVanity {
			ov.VanityCount++
			ds.VanityCount++
		}
		if m.IsHighValue {
			ov.HighValueCount++
			ds.HighValueCount++
		}
		addToCrossTab(&visibility, m.VisibleInDashboard, m.UsedInDecisionMaking)
		addToCrossTab(&executive, m.ExecutiveRequested, m.UsedInDecisionMaking)
	}

	ov.VanityPct = percent(ov.VanityCount, ov.TotalMetrics)
	ov.HighValuePct = percent(ov.HighValueCount, ov.TotalMetrics)
	ov.DashboardReductionPct = percent(ov.RemovableCount, ov.VisibleCount)

	summaries := make([]schema.DepartmentSummary, 0, len(departments))
	for _, d := range departments {
		ds := perDept[d]
		ds.VanityPct = percent(ds.VanityCount, ds.TotalMetrics)
		ds.HighValuePct = percent(ds.HighValueCount, ds.TotalMetrics)
		ds.ReductionPct = percent(ds.RemovableCount, ds.VisibleCount)
		summaries = append(summaries, *ds)
	}

	return schema.AuditSummary{
		Overview:           ov,
		Departments:        summaries,
		VisibilityUsage:    visibility,
		ExecutiveUsage:     executive,
		ValueDistribution:  distribution(metrics, func(m schema.AnnotatedMetric) float64 { return m.ValueScore }),
		VanityDistribution: distribution(metrics, func(m schema.AnnotatedMetric) float64 { return m.VanityScore }),
	}
}

func addToCrossTab(ct *schema.CrossTab, row, col bool) {
	r, c := boolIndex(row), boolIndex(col)
	ct.Counts[r][c]++
	ct.RowTotals[r]++
	ct.ColTotals[c]++
	ct.Total++
}

func boolIndex(b bool) int {
	if b {
		return 1
	}
	return 0
}

// percent returns part/whole as a percentage, or 0 when whole is 0.
func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// distribution counts how many metrics share each distinct score, in ascending score order.
func distribution(metrics []schema.AnnotatedMetric, score func(schema.AnnotatedMetric) float64) []schema.ScoreBucket {
	counts := make(map[float64]int)
	for _, m := range metrics {
		counts[score(m)]++
	}
	buckets := make([]schema.ScoreBucket, 0, len(counts))
	for s, c := range counts {
		buckets = append(buckets, schema.ScoreBucket{Score: s, Count: c})
	}
	slices.SortFunc(buckets, func(a, b schema.ScoreBucket) int {
		switch {
		case a.Score < b.Score:
			return -1
		case a.Score > b.Score:
			return 1
		default:
			return 0
		}
	})
	return buckets
}
