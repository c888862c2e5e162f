package algo

import (
	"testing"

	"github.com/huangsam/kpiaudit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifiedCatalog(t *testing.T) []schema.AnnotatedMetric {
	t.Helper()
	out, err := Classify(sampleCatalog(), DefaultRuleSet())
	require.NoError(t, err)
	return out
}

func names(metrics []schema.AnnotatedMetric) []string {
	out := make([]string, len(metrics))
	for i, m := range metrics {
		out[i] = m.MetricName
	}
	return out
}

func TestTopMetricsByDepartment(t *testing.T) {
	metrics := classifiedCatalog(t)

	top, err := TopMetricsByDepartment(metrics, 3)
	require.NoError(t, err)

	require.Len(t, top, 3)
	assert.Equal(t, []string{"CAC", "Conversion Rate"}, names(top["Marketing"]))
	assert.Equal(t, []string{"Win Rate", "Pipeline Velocity"}, names(top["Sales"]))

	hr, ok := top["HR"]
	assert.True(t, ok, "departments without high-value metrics must still be present")
	assert.NotNil(t, hr)
	assert.Empty(t, hr)
}

func TestTopMetricsByDepartmentTruncates(t *testing.T) {
	top, err := TopMetricsByDepartment(classifiedCatalog(t), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"CAC"}, names(top["Marketing"]))
	assert.Equal(t, []string{"Win Rate"}, names(top["Sales"]))
}

func TestTopMetricsByDepartmentSingleRecordNotPadded(t *testing.T) {
	metrics, err := Classify([]schema.MetricRecord{
		record("Ops", "Only", false, true, false, thisWeek, thisWeek),
		record("Ops", "Noise", true, false, false, never, never),
	}, DefaultRuleSet())
	require.NoError(t, err)

	top, err := TopMetricsByDepartment(metrics, 3)
	require.NoError(t, err)
	assert.Len(t, top["Ops"], 1)
}

func TestTopMetricsByDepartmentInvalidN(t *testing.T) {
	for _, n := range []int{0, -1} {
		top, err := TopMetricsByDepartment(classifiedCatalog(t), n)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "n must be greater than 0")
		assert.Nil(t, top)
	}
}

func TestTopMetricsByDepartmentEmptyInput(t *testing.T) {
	top, err := TopMetricsByDepartment(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestTopMetricsByDepartmentTieBreaks(t *testing.T) {
	hv := func(name string, score float64, used schema.Recency) schema.AnnotatedMetric {
		return schema.AnnotatedMetric{
			MetricRecord: schema.MetricRecord{Department: "D", MetricName: name, LastUsedForDecision: used},
			ValueScore:   score,
			IsHighValue:  true,
		}
	}
	metrics := []schema.AnnotatedMetric{
		hv("zeta", 5, lastMonth),
		hv("alpha", 5, never),
		hv("beta", 5, thisWeek),
		hv("gamma", 6, lastYear),
		hv("delta", 5, thisWeek),
	}

	top, err := TopMetricsByDepartment(metrics, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma", "beta", "delta", "zeta", "alpha"}, names(top["D"]))

	// Input order is left untouched.
	assert.Equal(t, "zeta", metrics[0].MetricName)
}

func TestTopMetricsByDepartmentBound(t *testing.T) {
	metrics := classifiedCatalog(t)
	for n := 1; n <= 5; n++ {
		top, err := TopMetricsByDepartment(metrics, n)
		require.NoError(t, err)
		for dept, ranked := range top {
			highValue := 0
			for _, m := range metrics {
				if m.Department == dept && m.IsHighValue {
					highValue++
				}
			}
			assert.LessOrEqual(t, len(ranked), n)
			assert.LessOrEqual(t, len(ranked), highValue)
			for i := 1; i < len(ranked); i++ {
				assert.GreaterOrEqual(t, ranked[i-1].ValueScore, ranked[i].ValueScore)
			}
		}
	}
}

func TestMetricsToRemove(t *testing.T) {
	removals := MetricsToRemove(classifiedCatalog(t))
	assert.Equal(t, []string{"Page Views", "Headcount", "Social Followers", "Calls Logged"}, names(removals))
	for _, m := range removals {
		assert.True(t, m.IsVanity)
		assert.True(t, m.VisibleInDashboard)
	}
}

func TestMetricsToRemoveTieBreaks(t *testing.T) {
	vanity := func(dept, name string) schema.AnnotatedMetric {
		return schema.AnnotatedMetric{
			MetricRecord: schema.MetricRecord{Department: dept, MetricName: name, VisibleInDashboard: true},
			VanityScore:  5,
			IsVanity:     true,
		}
	}
	got := MetricsToRemove([]schema.AnnotatedMetric{
		vanity("Sales", "b"),
		vanity("HR", "z"),
		vanity("Sales", "a"),
		{MetricRecord: schema.MetricRecord{Department: "HR", MetricName: "hidden"}, VanityScore: 8, IsVanity: true},
	})
	require.Len(t, got, 3)
	assert.Equal(t, "HR/z", got[0].Key().String())
	assert.Equal(t, "Sales/a", got[1].Key().String())
	assert.Equal(t, "Sales/b", got[2].Key().String())
}

func TestMetricsToRemoveEmpty(t *testing.T) {
	got := MetricsToRemove(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSortedDepartments(t *testing.T) {
	metrics := classifiedCatalog(t)
	assert.Equal(t, []string{"HR", "Marketing", "Sales"}, SortedDepartments(metrics))
}
