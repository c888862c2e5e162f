package algo

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/huangsam/kpiaudit/schema"
)

// DefaultTopN is the number of metrics kept per department when nothing is configured.
const DefaultTopN = 3

// compareTopMetrics orders by value score descending, then by more recent decision use,
// then by metric name ascending.
func compareTopMetrics(a, b schema.AnnotatedMetric) int {
	if c := cmp.Compare(b.ValueScore, a.ValueScore); c != 0 {
		return c
	}
	switch {
	case a.LastUsedForDecision.MoreRecentThan(b.LastUsedForDecision):
		return -1
	case b.LastUsedForDecision.MoreRecentThan(a.LastUsedForDecision):
		return 1
	}
	return cmp.Compare(a.MetricName, b.MetricName)
}

// compareRemovals orders by vanity score descending, then department and metric name ascending.
func compareRemovals(a, b schema.AnnotatedMetric) int {
	if c := cmp.Compare(b.VanityScore, a.VanityScore); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Department, b.Department); c != 0 {
		return c
	}
	return cmp.Compare(a.MetricName, b.MetricName)
}

// TopMetricsByDepartment returns up to n high-value metrics for every department in the input.
// Departments without a qualifying metric map to an empty slice rather than being omitted.
func TopMetricsByDepartment(metrics []schema.AnnotatedMetric, n int) (map[string][]schema.AnnotatedMetric, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be greater than 0 (received %d)", schema.ErrInvalidArgument, n)
	}

	grouped := make(map[string][]schema.AnnotatedMetric)
	for _, m := range metrics {
		if _, ok := grouped[m.Department]; !ok {
			grouped[m.Department] = []schema.AnnotatedMetric{}
		}
		if m.IsHighValue {
			grouped[m.Department] = append(grouped[m.Department], m)
		}
	}

	for dept, candidates := range grouped {
		slices.SortStableFunc(candidates, compareTopMetrics)
		if len(candidates) > n {
			candidates = candidates[:n]
		}
		grouped[dept] = candidates
	}
	return grouped, nil
}

// MetricsToRemove returns visible vanity metrics, worst first.
func MetricsToRemove(metrics []schema.AnnotatedMetric) []schema.AnnotatedMetric {
	removals := []schema.AnnotatedMetric{}
	for _, m := range metrics {
		if m.IsVanity && m.VisibleInDashboard {
			removals = append(removals, m)
		}
	}
	slices.SortStableFunc(removals, compareRemovals)
	return removals
}

// SortedDepartments returns the distinct departments of the input in ascending order.
func SortedDepartments(metrics []schema.AnnotatedMetric) []string {
	seen := make(map[string]struct{})
	var departments []string
	for _, m := range metrics {
		if _, ok := seen[m.Department]; ok {
			continue
		}
		seen[m.Department] = struct{}{}
		departments = append(departments, m.Department)
	}
	slices.Sort(departments)
	return departments
}
