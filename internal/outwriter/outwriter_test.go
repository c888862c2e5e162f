package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig returns a deterministic config for rendering tests.
func testConfig(output schema.OutputMode) *contract.Config {
	return &contract.Config{
		Output:       output,
		Precision:    1,
		Width:        120,
		Workers:      2,
		TopN:         3,
		StoreBackend: schema.SQLiteBackend,
	}
}

func sampleAnnotated() []schema.AnnotatedMetric {
	return []schema.AnnotatedMetric{
		{
			MetricRecord: schema.MetricRecord{
				Department:          "Marketing",
				MetricName:          "Page Views",
				VisibleInDashboard:  true,
				LastReviewed:        schema.DaysAgo("1 year ago", 365),
				LastUsedForDecision: schema.Never("Never"),
			},
			VanityScore:   4,
			VanityReasons: []string{"Displayed but not used for decisions.", "Has not been reviewed recently."},
			IsVanity:      true,
			ImpactScore:   -4,
		},
		{
			MetricRecord: schema.MetricRecord{
				Department:           "Sales",
				MetricName:           "Win Rate",
				VisibleInDashboard:   true,
				UsedInDecisionMaking: true,
				LastReviewed:         schema.DaysAgo("1 week ago", 7),
				LastUsedForDecision:  schema.DaysAgo("1 week ago", 7),
			},
			ValueScore:   5,
			ValueReasons: []string{"Actively used in decision-making.", "Recently used for a decision."},
			IsHighValue:  true,
			ImpactScore:  5,
		},
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, schema.EnrichMetrics(sampleAnnotated())))

	var result []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	require.Len(t, result, 2)
	assert.Equal(t, float64(1), result[0]["rank"])
	assert.Equal(t, "Vanity", result[0]["label"])
	assert.Equal(t, "Page Views", result[0]["metric_name"])
	assert.Equal(t, "High-Value", result[1]["label"])
	assert.Contains(t, buf.String(), "\n  {")
}

func TestWriteMetricsCSV(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig(schema.CSVOut)
	require.NoError(t, writeMetricsCSV(&buf, schema.EnrichMetrics(sampleAnnotated()), cfg))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, metricsCSVHeader, records[0])

	row := records[1]
	assert.Equal(t, "1", row[0])
	assert.Equal(t, "Marketing", row[1])
	assert.Equal(t, "Vanity", row[3])
	assert.Equal(t, "Yes", row[4])
	assert.Equal(t, "No", row[5])
	assert.Equal(t, "Never", row[8])
	assert.Equal(t, "4.0", row[9])
	assert.Equal(t, "Displayed but not used for decisions. | Has not been reviewed recently.", row[10])
	assert.Equal(t, "true", row[11])
	assert.Equal(t, "-4.0", row[15])
}

func TestWriteAuditTable(t *testing.T) {
	tests := []struct {
		name   string
		detail bool
		want   []string
	}{
		{
			name: "compact",
			want: []string{"Page Views", "Win Rate", "Vanity", "High-Value", "Audited 2 metrics (1 vanity, 1 high-value, 0 neutral)"},
		},
		{
			name:   "detail",
			detail: true,
			want:   []string{"1 year ago", "Never", "Audited 2 metrics"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(schema.TextOut)
			cfg.Detail = tt.detail
			cfg.Width = 240

			var buf bytes.Buffer
			require.NoError(t, writeAuditTable(&buf, schema.EnrichMetrics(sampleAnnotated()), cfg, 1500*time.Millisecond))
			for _, s := range tt.want {
				assert.Contains(t, buf.String(), s)
			}
			assert.Contains(t, buf.String(), "with 2 workers. History: not saved")
		})
	}
}

func TestWriteRemovalTable(t *testing.T) {
	cfg := testConfig(schema.TextOut)

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeRemovalTable(&buf, nil, cfg, time.Second))
		assert.Contains(t, buf.String(), "Nothing to remove")
	})

	t.Run("with removals", func(t *testing.T) {
		var buf bytes.Buffer
		removals := schema.EnrichMetrics(sampleAnnotated()[:1])
		require.NoError(t, writeRemovalTable(&buf, removals, cfg, time.Second))
		assert.Contains(t, buf.String(), "Page Views")
		assert.Contains(t, buf.String(), "Recommend removing 1 metrics from dashboards")
	})
}

func TestWriteImpactTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeImpactTable(&buf, schema.EnrichMetrics(sampleAnnotated()), testConfig(schema.TextOut), time.Second))
	assert.Contains(t, buf.String(), "-4.0")
	assert.Contains(t, buf.String(), "Showing top 2 metrics by impact")
}

func TestWriteTopOutputs(t *testing.T) {
	metrics := sampleAnnotated()
	hidden := metrics[1]
	hidden.MetricName = "Churn Drivers"
	hidden.VisibleInDashboard = false
	hidden.ValueScore = 4
	top := schema.EnrichDepartments(
		map[string][]schema.AnnotatedMetric{"Sales": {metrics[1], hidden}},
		[]string{"Marketing", "Sales"},
	)

	t.Run("csv keeps empty departments", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeTopCSV(&buf, top, testConfig(schema.CSVOut)))
		records, err := csv.NewReader(&buf).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 4)
		assert.Equal(t, "dashboard", records[0][5])
		assert.Equal(t, []string{"Marketing", "", "", "", "", "", ""}, records[1])
		assert.Equal(t, "Sales", records[2][0])
		assert.Equal(t, "Win Rate", records[2][2])
		assert.Equal(t, "5.0", records[2][3])
		assert.Equal(t, schema.OnDashboardStatus, records[2][5])
		assert.Equal(t, "Churn Drivers", records[3][2])
		assert.Equal(t, schema.PromoteStatus, records[3][5])
	})

	t.Run("tables", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, writeTopTables(&buf, top, testConfig(schema.TextOut), time.Second))
		out := buf.String()
		assert.Contains(t, out, "🏢 Marketing")
		assert.Contains(t, out, "No high-value metrics")
		assert.Contains(t, out, "Win Rate")
		assert.Contains(t, out, schema.OnDashboardStatus)
		assert.Contains(t, out, schema.PromoteStatus)
		assert.Contains(t, out, "1 high-value metrics are not on a dashboard yet")
		assert.Contains(t, out, "Showing up to 3 metrics for 2 departments (1 without high-value metrics)")
	})
}

func TestPrintAuditResultsToFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "audit.json")
	cfg := testConfig(schema.JSONOut)
	cfg.OutputFile = out

	require.NoError(t, PrintAuditResults(sampleAnnotated(), cfg, time.Second))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var result []schema.EnrichedMetric
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result, 2)
	assert.Equal(t, "Win Rate", result[1].MetricName)
	assert.Equal(t, 2, result[1].Rank)
}

func TestPrintParquet(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		err := PrintRemovalResults(sampleAnnotated(), testConfig(schema.ParquetOut), time.Second)
		assert.ErrorContains(t, err, "--output-file")
	})

	t.Run("writes file", func(t *testing.T) {
		cfg := testConfig(schema.ParquetOut)
		cfg.OutputFile = filepath.Join(t.TempDir(), "impact.parquet")
		require.NoError(t, PrintImpactResults(sampleAnnotated(), cfg, time.Second))
		info, err := os.Stat(cfg.OutputFile)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	})

	t.Run("summary is unsupported", func(t *testing.T) {
		err := PrintSummaryResults(schema.AuditSummary{}, testConfig(schema.ParquetOut), time.Second)
		assert.ErrorIs(t, err, schema.ErrInvalidArgument)
	})
}

func TestLabelFor(t *testing.T) {
	m := sampleAnnotated()[0]
	cfg := testConfig(schema.TextOut)
	assert.Equal(t, "Vanity", labelFor(m, cfg))

	cfg.UseColors = true
	assert.True(t, strings.Contains(labelFor(m, cfg), "Vanity"))
}

func TestHistoryNote(t *testing.T) {
	cfg := testConfig(schema.TextOut)
	assert.Equal(t, "not saved", historyNote(cfg))
	cfg.Save = true
	assert.Equal(t, "sqlite", historyNote(cfg))
}

func TestGetMaxTableNameWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		detail   bool
		expected int
	}{
		{"narrow terminal clamps low", 40, false, 15},
		{"medium terminal", 100, false, 40},
		{"wide terminal clamps high", 300, false, 50},
		{"detail mode takes more room", 150, true, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width, Detail: tt.detail}
			assert.Equal(t, tt.expected, GetMaxTableNameWidth(cfg))
		})
	}
}

func TestGetMaxReasonWidth(t *testing.T) {
	assert.Equal(t, 25, GetMaxReasonWidth(&contract.Config{Width: 40}))
	assert.Equal(t, 60, GetMaxReasonWidth(&contract.Config{Width: 300}))
}
