package algo

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/huangsam/kpiaudit/schema"
)

// ScoreImpact sets ImpactScore to ValueScore minus VanityScore on a copy of the input.
// It never changes any verdict.
func ScoreImpact(metrics []schema.AnnotatedMetric) []schema.AnnotatedMetric {
	out := make([]schema.AnnotatedMetric, len(metrics))
	for i, m := range metrics {
		m.ImpactScore = m.ValueScore - m.VanityScore
		out[i] = m
	}
	return out
}

// RankByImpact sorts metrics across departments by impact score descending and keeps the first limit.
func RankByImpact(metrics []schema.AnnotatedMetric, limit int) ([]schema.AnnotatedMetric, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be greater than 0 (received %d)", schema.ErrInvalidArgument, limit)
	}
	ranked := slices.Clone(metrics)
	slices.SortStableFunc(ranked, func(a, b schema.AnnotatedMetric) int {
		if c := cmp.Compare(b.ImpactScore, a.ImpactScore); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Department, b.Department); c != 0 {
			return c
		}
		return cmp.Compare(a.MetricName, b.MetricName)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = []schema.AnnotatedMetric{}
	}
	return ranked, nil
}
