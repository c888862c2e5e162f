package algo

import (
	"testing"

	"github.com/huangsam/kpiaudit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	summary := Summarize(classifiedCatalog(t))

	ov := summary.Overview
	assert.Equal(t, 9, ov.TotalMetrics)
	assert.Equal(t, 3, ov.Departments)
	assert.Equal(t, 6, ov.VisibleCount)
	assert.Equal(t, 4, ov.DecisionCount)
	assert.Equal(t, 5, ov.VanityCount)
	assert.Equal(t, 4, ov.HighValueCount)
	assert.Equal(t, 4, ov.RemovableCount)
	assert.InDelta(t, 55.56, ov.VanityPct, 0.01)
	assert.InDelta(t, 44.44, ov.HighValuePct, 0.01)
	assert.InDelta(t, 66.67, ov.DashboardReductionPct, 0.01)

	require.Len(t, summary.Departments, 3)
	hr := summary.Departments[0]
	assert.Equal(t, "HR", hr.Department)
	assert.Equal(t, 2, hr.TotalMetrics)
	assert.Equal(t, 1, hr.VisibleCount)
	assert.Equal(t, 2, hr.VanityCount)
	assert.Equal(t, 1, hr.RemovableCount)
	assert.InDelta(t, 100.0, hr.ReductionPct, 0.001)

	vis := summary.VisibilityUsage
	assert.Equal(t, [2][2]int{{1, 2}, {4, 2}}, vis.Counts)
	assert.Equal(t, [2]int{3, 6}, vis.RowTotals)
	assert.Equal(t, [2]int{5, 4}, vis.ColTotals)
	assert.Equal(t, 9, vis.Total)

	assert.Equal(t, []schema.ScoreBucket{
		{Score: 0, Count: 5},
		{Score: 5, Count: 1},
		{Score: 6, Count: 1},
		{Score: 7, Count: 1},
		{Score: 8, Count: 1},
	}, summary.ValueDistribution)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Equal(t, 0, summary.Overview.TotalMetrics)
	assert.Equal(t, 0.0, summary.Overview.DashboardReductionPct)
	assert.Empty(t, summary.Departments)
	assert.Empty(t, summary.ValueDistribution)
}
