package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/kpiaudit/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		model   any
		columns []string
	}{
		{
			name:    "audit runs",
			model:   new(AuditRun),
			columns: []string{"run_id", "run_uuid", "start_time", "end_time", "run_duration_ms", "total_metrics", "source", "config_params"},
		},
		{
			name:  "metric results",
			model: new(MetricResult),
			columns: []string{
				"run_id", "metric_position", "department", "metric_name",
				"visible_in_dashboard", "used_in_decision_making", "executive_requested",
				"last_reviewed", "last_reviewed_days", "last_used_for_decision", "last_used_days",
				"interpretation_notes", "vanity_score", "vanity_reasons", "is_vanity",
				"value_score", "value_reasons", "is_high_value", "impact_score", "label",
			},
		},
		{
			name:    "audited metrics",
			model:   new(AuditedMetric),
			columns: []string{"rank", "department", "metric_name", "label", "vanity_score", "value_score", "impact_score"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := parquet.SchemaOf(tt.model)
			for _, col := range tt.columns {
				_, ok := s.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteAuditRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "audit_runs.parquet")
	data := SampleAuditRuns()
	require.NoError(t, WriteAuditRunsParquet(data, outputPath))

	got := readAll[AuditRun](t, outputPath)
	require.Len(t, got, len(data))
	for i := range data {
		assert.Equal(t, data[i].RunID, got[i].RunID)
		assert.Equal(t, data[i].RunUUID, got[i].RunUUID)
		assert.Equal(t, data[i].TotalMetrics, got[i].TotalMetrics)
		assert.WithinDuration(t, data[i].StartTime, got[i].StartTime, time.Microsecond)
		if data[i].EndTime == nil {
			assert.Nil(t, got[i].EndTime)
		} else {
			require.NotNil(t, got[i].EndTime)
			assert.WithinDuration(t, *data[i].EndTime, *got[i].EndTime, time.Microsecond)
		}
		if data[i].ConfigParams == nil {
			assert.Nil(t, got[i].ConfigParams)
		} else {
			require.NotNil(t, got[i].ConfigParams)
			assert.Equal(t, *data[i].ConfigParams, *got[i].ConfigParams)
		}
	}
}

func TestWriteMetricResultsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "metric_results.parquet")
	data := SampleMetricResults()
	require.NoError(t, WriteMetricResultsParquet(data, outputPath))

	got := readAll[MetricResult](t, outputPath)
	assert.Equal(t, data, got)
}

func TestWriteParquetEmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAuditRunsParquet([]AuditRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Empty(t, readAll[AuditRun](t, outputPath))
}

func TestWriteParquetInvalidPath(t *testing.T) {
	err := WriteAuditRunsParquet(SampleAuditRuns(), filepath.Join(t.TempDir(), "missing", "out.parquet"))
	assert.ErrorContains(t, err, "failed to create output file")
}

func TestConvertRecords(t *testing.T) {
	duration := int32(42)
	runs := ConvertAuditRunRecords([]schema.AuditRunRecord{{RunID: 7, RunUUID: "u", RunDurationMs: &duration, TotalMetrics: 9, Source: "s"}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(7), runs[0].RunID)
	assert.Equal(t, &duration, runs[0].RunDurationMs)
	assert.Equal(t, "s", runs[0].Source)

	results := ConvertMetricResultRecords([]schema.MetricResultRecord{{RunID: 7, Position: 3, Department: "HR", MetricName: "Headcount", Label: schema.NeutralLabel}})
	require.Len(t, results, 1)
	assert.Equal(t, int32(3), results[0].Position)
	assert.Equal(t, schema.NeutralLabel, results[0].Label)
}

func TestWriteAuditedMetricsParquet(t *testing.T) {
	metrics := schema.EnrichMetrics([]schema.AnnotatedMetric{
		{
			MetricRecord: schema.MetricRecord{
				Department:          "Sales",
				MetricName:          "Win Rate",
				LastReviewed:        schema.DaysAgo("This week", 7),
				LastUsedForDecision: schema.Never(""),
			},
			ValueScore:   6,
			ValueReasons: []string{"a", "b"},
			IsHighValue:  true,
			ImpactScore:  6,
		},
	})
	outputPath := filepath.Join(t.TempDir(), "audit.parquet")
	require.NoError(t, WriteAuditedMetricsParquet(metrics, outputPath))

	got := readAll[AuditedMetric](t, outputPath)
	require.Len(t, got, 1)
	assert.Equal(t, int32(1), got[0].Rank)
	assert.Equal(t, schema.HighValueLabel, got[0].Label)
	assert.Equal(t, "a; b", got[0].ValueReasons)
	assert.Equal(t, "This week", got[0].LastReviewed)
	assert.Equal(t, "never", got[0].LastUsedForDecision)
}
