// Package parquet provides data structures and functions for exporting kpiaudit
// results to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/kpiaudit/schema"
	"github.com/parquet-go/parquet-go"
)

// AuditRun represents a single audit run with metadata.
// This struct maps to the kpiaudit_runs database table.
type AuditRun struct {
	// RunID is the store-assigned identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique identifier printed when the run was saved
	RunUUID string `parquet:"run_uuid,snappy"`

	// StartTime is when the audit began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the audit completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalMetrics is the number of metrics classified in this run
	TotalMetrics int32 `parquet:"total_metrics,snappy"`

	// Source names the catalog the run was read from
	Source string `parquet:"source,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// MetricResult is one classified metric of a stored audit run.
// This struct maps to the kpiaudit_metric_results database table.
type MetricResult struct {
	RunID                int64   `parquet:"run_id,snappy"`
	Position             int32   `parquet:"metric_position,snappy"`
	Department           string  `parquet:"department,snappy,dict"`
	MetricName           string  `parquet:"metric_name,snappy"`
	VisibleInDashboard   bool    `parquet:"visible_in_dashboard"`
	UsedInDecisionMaking bool    `parquet:"used_in_decision_making"`
	ExecutiveRequested   bool    `parquet:"executive_requested"`
	LastReviewed         string  `parquet:"last_reviewed,snappy,dict"`
	LastReviewedDays     *int32  `parquet:"last_reviewed_days,optional,snappy"`
	LastUsedForDecision  string  `parquet:"last_used_for_decision,snappy,dict"`
	LastUsedDays         *int32  `parquet:"last_used_days,optional,snappy"`
	InterpretationNotes  string  `parquet:"interpretation_notes,snappy"`
	VanityScore          float64 `parquet:"vanity_score,snappy"`
	VanityReasons        string  `parquet:"vanity_reasons,snappy"` // JSON array
	IsVanity             bool    `parquet:"is_vanity"`
	ValueScore           float64 `parquet:"value_score,snappy"`
	ValueReasons         string  `parquet:"value_reasons,snappy"` // JSON array
	IsHighValue          bool    `parquet:"is_high_value"`
	ImpactScore          float64 `parquet:"impact_score,snappy"`
	Label                string  `parquet:"label,snappy,dict"`
}

// AuditedMetric is the flat row written by the parquet output mode of a live audit.
type AuditedMetric struct {
	Rank                 int32   `parquet:"rank"`
	Department           string  `parquet:"department,snappy,dict"`
	MetricName           string  `parquet:"metric_name,snappy"`
	Label                string  `parquet:"label,snappy,dict"`
	VisibleInDashboard   bool    `parquet:"visible_in_dashboard"`
	UsedInDecisionMaking bool    `parquet:"used_in_decision_making"`
	ExecutiveRequested   bool    `parquet:"executive_requested"`
	LastReviewed         string  `parquet:"last_reviewed,snappy"`
	LastUsedForDecision  string  `parquet:"last_used_for_decision,snappy"`
	VanityScore          float64 `parquet:"vanity_score,snappy"`
	VanityReasons        string  `parquet:"vanity_reasons,snappy"`
	ValueScore           float64 `parquet:"value_score,snappy"`
	ValueReasons         string  `parquet:"value_reasons,snappy"`
	ImpactScore          float64 `parquet:"impact_score,snappy"`
}

// writeParquet writes rows of any tagged struct type to a new file at outputPath.
func writeParquet[T any](data []T, outputPath string) (err error) {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// WriteAuditRunsParquet writes a slice of AuditRun structs to a Parquet file.
func WriteAuditRunsParquet(data []AuditRun, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteMetricResultsParquet writes a slice of MetricResult structs to a Parquet file.
func WriteMetricResultsParquet(data []MetricResult, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteAuditedMetricsParquet writes the metrics of a live audit to a Parquet file.
func WriteAuditedMetricsParquet(metrics []schema.EnrichedMetric, outputPath string) error {
	return writeParquet(ConvertEnrichedMetrics(metrics), outputPath)
}

// ConvertAuditRunRecords converts schema.AuditRunRecord to AuditRun for Parquet export.
func ConvertAuditRunRecords(records []schema.AuditRunRecord) []AuditRun {
	result := make([]AuditRun, len(records))
	for i, record := range records {
		result[i] = AuditRun{
			RunID:         record.RunID,
			RunUUID:       record.RunUUID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalMetrics:  record.TotalMetrics,
			Source:        record.Source,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertMetricResultRecords converts schema.MetricResultRecord to MetricResult for Parquet export.
func ConvertMetricResultRecords(records []schema.MetricResultRecord) []MetricResult {
	result := make([]MetricResult, len(records))
	for i, r := range records {
		result[i] = MetricResult{
			RunID:                r.RunID,
			Position:             r.Position,
			Department:           r.Department,
			MetricName:           r.MetricName,
			VisibleInDashboard:   r.VisibleInDashboard,
			UsedInDecisionMaking: r.UsedInDecisionMaking,
			ExecutiveRequested:   r.ExecutiveRequested,
			LastReviewed:         r.LastReviewed,
			LastReviewedDays:     r.LastReviewedDays,
			LastUsedForDecision:  r.LastUsedForDecision,
			LastUsedDays:         r.LastUsedDays,
			InterpretationNotes:  r.InterpretationNotes,
			VanityScore:          r.VanityScore,
			VanityReasons:        r.VanityReasons,
			IsVanity:             r.IsVanity,
			ValueScore:           r.ValueScore,
			ValueReasons:         r.ValueReasons,
			IsHighValue:          r.IsHighValue,
			ImpactScore:          r.ImpactScore,
			Label:                r.Label,
		}
	}
	return result
}

// ConvertEnrichedMetrics flattens enriched metrics into AuditedMetric rows.
func ConvertEnrichedMetrics(metrics []schema.EnrichedMetric) []AuditedMetric {
	result := make([]AuditedMetric, len(metrics))
	for i, m := range metrics {
		result[i] = AuditedMetric{
			Rank:                 int32(m.Rank),
			Department:           m.Department,
			MetricName:           m.MetricName,
			Label:                m.Label,
			VisibleInDashboard:   m.VisibleInDashboard,
			UsedInDecisionMaking: m.UsedInDecisionMaking,
			ExecutiveRequested:   m.ExecutiveRequested,
			LastReviewed:         m.LastReviewed.String(),
			LastUsedForDecision:  m.LastUsedForDecision.String(),
			VanityScore:          m.VanityScore,
			VanityReasons:        strings.Join(m.VanityReasons, "; "),
			ValueScore:           m.ValueScore,
			ValueReasons:         strings.Join(m.ValueReasons, "; "),
			ImpactScore:          m.ImpactScore,
		}
	}
	return result
}

// SampleAuditRuns generates sample AuditRun data for demonstration.
func SampleAuditRuns() []AuditRun {
	now := time.Now()
	startTime1 := now.Add(-2 * time.Hour)
	endTime1 := startTime1.Add(350 * time.Millisecond)
	durationMs1 := int32(endTime1.Sub(startTime1).Milliseconds())
	configParams1 := `{"review_cycle_days":90,"stale_cycles":2,"fresh_cycles":1}`

	startTime2 := now.Add(-10 * time.Minute)
	// endTime2, durationMs2 and configParams2 are nil to demonstrate nullable fields

	return []AuditRun{
		{
			RunID:         1,
			RunUUID:       "6f1c2a7e-93b4-4d0a-9a55-1f2e8d3c4b5a",
			StartTime:     startTime1,
			EndTime:       &endTime1,
			RunDurationMs: &durationMs1,
			TotalMetrics:  3,
			Source:        "catalog.csv",
			ConfigParams:  &configParams1,
		},
		{
			RunID:     2,
			RunUUID:   "0b7d9e21-5c3f-4e8a-b6d2-7a9c1e4f3d20",
			StartTime: startTime2,
			Source:    "catalog.csv",
		},
	}
}

// SampleMetricResults generates sample MetricResult data for demonstration.
func SampleMetricResults() []MetricResult {
	week := int32(7)
	year := int32(730)

	return []MetricResult{
		{
			RunID:               1,
			Position:            0,
			Department:          "Marketing",
			MetricName:          "Page Views",
			VisibleInDashboard:  true,
			ExecutiveRequested:  true,
			LastReviewed:        "Never",
			LastUsedForDecision: "Never",
			VanityScore:         8,
			VanityReasons:       `["Displayed but not used for decisions."]`,
			IsVanity:            true,
			ValueReasons:        `[]`,
			ImpactScore:         -8,
			Label:               schema.VanityLabel,
		},
		{
			RunID:                1,
			Position:             1,
			Department:           "Sales",
			MetricName:           "Win Rate",
			UsedInDecisionMaking: true,
			ExecutiveRequested:   true,
			LastReviewed:         "This week",
			LastReviewedDays:     &week,
			LastUsedForDecision:  "This week",
			LastUsedDays:         &week,
			VanityReasons:        `[]`,
			ValueScore:           6,
			ValueReasons:         `["Actively used in decision-making."]`,
			IsHighValue:          true,
			ImpactScore:          6,
			Label:                schema.HighValueLabel,
		},
		{
			RunID:               1,
			Position:            2,
			Department:          "HR",
			MetricName:          "Headcount",
			VisibleInDashboard:  true,
			LastReviewed:        "Last year",
			LastReviewedDays:    &year,
			LastUsedForDecision: "Last year",
			LastUsedDays:        &year,
			VanityScore:         6,
			VanityReasons:       `["Not used for a decision in a long time."]`,
			IsVanity:            true,
			ValueReasons:        `[]`,
			ImpactScore:         -6,
			Label:               schema.VanityLabel,
		},
	}
}
