package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/huangsam/kpiaudit/core/algo"
	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/internal/iocache"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const catalogPath = "../internal/ingest/testdata/catalog.csv"

func testConfig() *contract.Config {
	return &contract.Config{
		InputPath:       catalogPath,
		Source:          schema.FileSource,
		TopN:            contract.DefaultTopN,
		ResultLimit:     contract.DefaultResultLimit,
		Workers:         4,
		Precision:       contract.DefaultPrecision,
		Output:          schema.JSONOut,
		ReviewCycleDays: algo.DefaultReviewCycleDays,
		StaleCycles:     contract.DefaultStaleCycles,
		FreshCycles:     contract.DefaultFreshCycles,
		StoreBackend:    schema.NoneBackend,
	}
}

func quietCtx() context.Context {
	return WithSuppressHeader(context.Background())
}

// syntheticRecords builds n records cycling through every flag combination.
func syntheticRecords(n int) []schema.MetricRecord {
	recencies := []schema.Recency{
		schema.Never("never"),
		schema.DaysAgo("this week", 7),
		schema.DaysAgo("last month", 30),
		schema.DaysAgo("last year", 365),
	}
	records := make([]schema.MetricRecord, n)
	for i := range records {
		records[i] = schema.MetricRecord{
			Department:           fmt.Sprintf("Dept%d", i%5),
			MetricName:           fmt.Sprintf("Metric%04d", i),
			VisibleInDashboard:   i%2 == 0,
			UsedInDecisionMaking: i%3 == 0,
			ExecutiveRequested:   i%5 == 0,
			LastReviewed:         recencies[i%len(recencies)],
			LastUsedForDecision:  recencies[(i/2)%len(recencies)],
		}
	}
	return records
}

func TestAnnotateMatchesSequentialClassification(t *testing.T) {
	records := syntheticRecords(257)
	rs := algo.DefaultRuleSet()

	want, err := algo.Classify(records, rs)
	require.NoError(t, err)

	for _, workers := range []int{1, 2, 3, 8, 1000} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			got, err := Annotate(context.Background(), records, rs, workers)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestAnnotateEdgeCases(t *testing.T) {
	t.Run("empty table", func(t *testing.T) {
		got, err := Annotate(context.Background(), nil, algo.DefaultRuleSet(), 4)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("invalid record", func(t *testing.T) {
		records := []schema.MetricRecord{{Department: "Sales"}}
		_, err := Annotate(context.Background(), records, algo.DefaultRuleSet(), 4)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Annotate(ctx, syntheticRecords(10), algo.DefaultRuleSet(), 2)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRuleSetFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.ReviewCycleDays = 30
	cfg.StaleCycles = 3
	cfg.Thresholds = map[schema.RuleKind]float64{schema.VanityKind: 5}
	cfg.ComputedWeights = map[schema.RuleKind]map[schema.RuleKey]float64{
		schema.ValueKind: {schema.RuleHiddenGem: 4},
	}

	rs := RuleSetFromConfig(cfg)
	assert.Equal(t, 90, rs.Policy.StaleAfterDays())
	assert.Equal(t, 30, rs.Policy.FreshWithinDays())
	assert.Equal(t, 5.0, rs.VanityThreshold)
	assert.Equal(t, schema.DefaultValueThreshold, rs.ValueThreshold)
	for _, r := range rs.Value {
		if r.Key == schema.RuleHiddenGem {
			assert.Equal(t, 4.0, r.Weight)
		}
	}

	defaults := RuleSetFromConfig(&contract.Config{})
	assert.Equal(t, algo.DefaultRecencyPolicy(), defaults.Policy)
}

func TestGetAuditResultsFromFile(t *testing.T) {
	output, _, err := GetAuditResults(quietCtx(), testConfig(), nil)
	require.NoError(t, err)

	require.Len(t, output.Metrics, 9)
	assert.Equal(t, "catalog.csv", output.Source)
	assert.Zero(t, output.RunID)
	assert.Equal(t, "Page Views", output.Metrics[0].MetricName)
	assert.Equal(t, "Badge Swipes", output.Metrics[8].MetricName)
}

func TestGetTopResults(t *testing.T) {
	cfg := testConfig()
	cfg.TopN = 2

	top, _, err := GetTopResults(quietCtx(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "HR", top[0].Department)
	assert.Empty(t, top[0].Metrics)
	assert.Equal(t, "Marketing", top[1].Department)
	require.Len(t, top[1].Metrics, 2)
	assert.Equal(t, "CAC", top[1].Metrics[0].MetricName)
	assert.Equal(t, 1, top[1].Metrics[0].Rank)

	cfg.TopN = 0
	_, _, err = GetTopResults(quietCtx(), cfg, nil)
	assert.ErrorIs(t, err, schema.ErrInvalidArgument)
}

func TestGetRemovalResults(t *testing.T) {
	removals, _, err := GetRemovalResults(quietCtx(), testConfig(), nil)
	require.NoError(t, err)
	require.Len(t, removals, 4)
	for _, m := range removals {
		assert.True(t, m.IsVanity && m.VisibleInDashboard)
	}
}

func TestGetImpactResults(t *testing.T) {
	cfg := testConfig()
	cfg.ResultLimit = 3

	ranked, _, err := GetImpactResults(quietCtx(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "Win Rate", ranked[0].MetricName)

	cfg.ResultLimit = 0
	_, _, err = GetImpactResults(quietCtx(), cfg, nil)
	assert.ErrorIs(t, err, schema.ErrInvalidArgument)
}

func TestGetSummaryResults(t *testing.T) {
	summary, _, err := GetSummaryResults(quietCtx(), testConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, 9, summary.Overview.TotalMetrics)
	assert.Equal(t, 4, summary.Overview.RemovableCount)
	assert.Len(t, summary.Departments, 3)
}

func TestGetAuditResultsMissingFile(t *testing.T) {
	cfg := testConfig()
	cfg.InputPath = "testdata/missing.csv"
	_, _, err := GetAuditResults(quietCtx(), cfg, nil)
	assert.Error(t, err)
}

func TestStoreSource(t *testing.T) {
	stored := []schema.AnnotatedMetric{
		{
			MetricRecord: schema.MetricRecord{
				Department:           "Sales",
				MetricName:           "Win Rate",
				UsedInDecisionMaking: true,
				LastReviewed:         schema.DaysAgo("last month", 30),
				LastUsedForDecision:  schema.DaysAgo("last month", 30),
			},
			// Stale verdicts are recomputed from the base record.
			IsVanity: true,
		},
		{
			MetricRecord: schema.MetricRecord{
				Department:         "HR",
				MetricName:         "Headcount",
				VisibleInDashboard: true,
				LastReviewed:       schema.Never("never"),
			},
		},
	}

	t.Run("reclassifies the stored run", func(t *testing.T) {
		store := &iocache.MockAuditStore{}
		store.On("LoadRun", int64(7)).Return(schema.AuditRunRecord{RunID: 7}, stored, nil)
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetAuditStore").Return(store)

		cfg := testConfig()
		cfg.Source = schema.StoreSource
		cfg.RunID = 7

		output, _, err := GetAuditResults(quietCtx(), cfg, mgr)
		require.NoError(t, err)
		require.Len(t, output.Metrics, 2)
		assert.Equal(t, "history (run 7)", output.Source)
		assert.False(t, output.Metrics[0].IsVanity)
		assert.True(t, output.Metrics[0].IsHighValue)
		assert.True(t, output.Metrics[1].IsVanity)
		store.AssertExpectations(t)
	})

	t.Run("department filter", func(t *testing.T) {
		store := &iocache.MockAuditStore{}
		store.On("LoadRun", int64(0)).Return(schema.AuditRunRecord{RunID: 3}, stored, nil)
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetAuditStore").Return(store)

		cfg := testConfig()
		cfg.Source = schema.StoreSource
		cfg.Departments = []string{"hr"}

		output, _, err := GetAuditResults(quietCtx(), cfg, mgr)
		require.NoError(t, err)
		require.Len(t, output.Metrics, 1)
		assert.Equal(t, "Headcount", output.Metrics[0].MetricName)
	})

	t.Run("load failure", func(t *testing.T) {
		store := &iocache.MockAuditStore{}
		store.On("LoadRun", int64(0)).Return(schema.AuditRunRecord{}, nil, iocache.ErrNoRuns)
		mgr := &iocache.MockStoreManager{}
		mgr.On("GetAuditStore").Return(store)

		cfg := testConfig()
		cfg.Source = schema.StoreSource

		_, _, err := GetAuditResults(quietCtx(), cfg, mgr)
		assert.ErrorIs(t, err, iocache.ErrNoRuns)
	})

	t.Run("no store", func(t *testing.T) {
		cfg := testConfig()
		cfg.Source = schema.StoreSource
		_, _, err := GetAuditResults(quietCtx(), cfg, nil)
		assert.ErrorIs(t, err, errNoStore)
	})
}

func TestSaveTracksRun(t *testing.T) {
	store := &iocache.MockAuditStore{}
	store.On("BeginAudit", mock.MatchedBy(func(run schema.AuditRun) bool {
		return run.RunUUID != "" && run.Source == "catalog.csv"
	}), mock.Anything).Return(int64(42), nil)
	store.On("RecordMetricResults", int64(42), mock.MatchedBy(func(m []schema.AnnotatedMetric) bool {
		return len(m) == 9
	})).Return(nil)
	store.On("EndAudit", int64(42), mock.Anything, 9).Return(nil)
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetAuditStore").Return(store)

	cfg := testConfig()
	cfg.Save = true

	output, _, err := GetAuditResults(quietCtx(), cfg, mgr)
	require.NoError(t, err)
	assert.Equal(t, int64(42), output.RunID)
	assert.NotEmpty(t, output.RunUUID)
	store.AssertExpectations(t)
}

func TestSaveFailureDoesNotAbortAudit(t *testing.T) {
	store := &iocache.MockAuditStore{}
	store.On("BeginAudit", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetAuditStore").Return(store)

	cfg := testConfig()
	cfg.Save = true

	output, _, err := GetAuditResults(quietCtx(), cfg, mgr)
	require.NoError(t, err)
	assert.Len(t, output.Metrics, 9)
	assert.Zero(t, output.RunID)
	store.AssertNotCalled(t, "RecordMetricResults", mock.Anything, mock.Anything)
}

func BenchmarkAnnotate(b *testing.B) {
	records := syntheticRecords(10000)
	rs := algo.DefaultRuleSet()
	ctx := context.Background()

	for b.Loop() {
		if _, err := Annotate(ctx, records, rs, 8); err != nil {
			b.Fatal(err)
		}
	}
}
