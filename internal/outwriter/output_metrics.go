package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// metricTableFunc renders one of the metric list views as a table.
type metricTableFunc func(w io.Writer, metrics []schema.EnrichedMetric, cfg *contract.Config, duration time.Duration) error

// PrintAuditResults prints every classified metric in catalog order.
func PrintAuditResults(metrics []schema.AnnotatedMetric, cfg *contract.Config, duration time.Duration) error {
	return printMetricList(metrics, cfg, duration, writeAuditTable)
}

// PrintRemovalResults prints the metrics recommended for removal from dashboards.
func PrintRemovalResults(metrics []schema.AnnotatedMetric, cfg *contract.Config, duration time.Duration) error {
	return printMetricList(metrics, cfg, duration, writeRemovalTable)
}

// PrintImpactResults prints metrics ranked by net impact.
func PrintImpactResults(metrics []schema.AnnotatedMetric, cfg *contract.Config, duration time.Duration) error {
	return printMetricList(metrics, cfg, duration, writeImpactTable)
}

// printMetricList dispatches a metric list view based on the configured output format.
func printMetricList(metrics []schema.AnnotatedMetric, cfg *contract.Config, duration time.Duration, table metricTableFunc) error {
	enriched := schema.EnrichMetrics(metrics)

	switch cfg.Output {
	case schema.ParquetOut:
		return writeParquetFile(enriched, cfg.OutputFile)
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, enriched)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricsCSV(w, enriched, cfg)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return table(w, enriched, cfg, duration)
		}, "Wrote table")
	}
}

// metricsCSVHeader lists the columns shared by every metric list in CSV form.
var metricsCSVHeader = []string{
	"rank",
	"department",
	"metric_name",
	"label",
	"visible_in_dashboard",
	"used_in_decision_making",
	"executive_requested",
	"last_reviewed",
	"last_used_for_decision",
	"vanity_score",
	"vanity_reasons",
	"is_vanity",
	"value_score",
	"value_reasons",
	"is_high_value",
	"impact_score",
	"interpretation_notes",
}

// writeMetricsCSV writes a metric list in CSV format.
func writeMetricsCSV(w io.Writer, metrics []schema.EnrichedMetric, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	return writeCSVWithHeader(w, metricsCSVHeader, func(cw *csv.Writer) error {
		for _, m := range metrics {
			rec := []string{
				strconv.Itoa(m.Rank),
				m.Department,
				m.MetricName,
				m.Label,
				yesNo(m.VisibleInDashboard),
				yesNo(m.UsedInDecisionMaking),
				yesNo(m.ExecutiveRequested),
				m.LastReviewed.String(),
				m.LastUsedForDecision.String(),
				fmtFloat(m.VanityScore),
				joinReasons(m.VanityReasons),
				strconv.FormatBool(m.IsVanity),
				fmtFloat(m.ValueScore),
				joinReasons(m.ValueReasons),
				strconv.FormatBool(m.IsHighValue),
				fmtFloat(m.ImpactScore),
				m.InterpretationNotes,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// newTable creates a right-aligned table bound to w.
func newTable(w io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.Header(headers)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

// renderTable writes rows and renders the table.
func renderTable(table *tablewriter.Table, data [][]string) error {
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// detailHeaders are appended to the audit table in detail mode.
var detailHeaders = []string{"Visible", "Decision", "Exec", "Reviewed", "Last Used", "Reasons"}

// detailCells renders the detail columns of one metric.
func detailCells(m schema.EnrichedMetric, cfg *contract.Config) []string {
	reasons := append(append([]string{}, m.VanityReasons...), m.ValueReasons...)
	return []string{
		yesNo(m.VisibleInDashboard),
		yesNo(m.UsedInDecisionMaking),
		yesNo(m.ExecutiveRequested),
		m.LastReviewed.String(),
		m.LastUsedForDecision.String(),
		contract.TruncateText(joinReasons(reasons), GetMaxReasonWidth(cfg)),
	}
}

// writeAuditTable generates and writes the human-readable audit table.
func writeAuditTable(w io.Writer, metrics []schema.EnrichedMetric, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	nameWidth := GetMaxTableNameWidth(cfg)

	headers := []string{"Rank", "Department", "Metric", "Vanity", "Value", "Impact", "Label"}
	if cfg.Detail {
		headers = append(headers, detailHeaders...)
	}
	table := newTable(w, headers)

	var vanity, highValue int
	data := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		row := []string{
			strconv.Itoa(m.Rank),
			m.Department,
			contract.TruncateText(m.MetricName, nameWidth),
			fmtFloat(m.VanityScore),
			fmtFloat(m.ValueScore),
			fmtFloat(m.ImpactScore),
			labelFor(m.AnnotatedMetric, cfg),
		}
		if cfg.Detail {
			row = append(row, detailCells(m, cfg)...)
		}
		data = append(data, row)
		if m.IsVanity {
			vanity++
		}
		if m.IsHighValue {
			highValue++
		}
	}

	if err := renderTable(table, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Audited %d metrics (%d vanity, %d high-value, %d neutral)\n",
		len(metrics), vanity, highValue, len(metrics)-vanity-highValue); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeRemovalTable writes the removal recommendations with the reasons behind them.
func writeRemovalTable(w io.Writer, metrics []schema.EnrichedMetric, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	nameWidth := GetMaxTableNameWidth(cfg)

	headers := []string{"Rank", "Department", "Metric", "Vanity", "Reasons"}
	if cfg.Detail {
		headers = append(headers, "Reviewed", "Last Used", "Notes")
	}
	table := newTable(w, headers)

	data := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		row := []string{
			strconv.Itoa(m.Rank),
			m.Department,
			contract.TruncateText(m.MetricName, nameWidth),
			fmtFloat(m.VanityScore),
			contract.TruncateText(joinReasons(m.VanityReasons), GetMaxReasonWidth(cfg)),
		}
		if cfg.Detail {
			row = append(row,
				m.LastReviewed.String(),
				m.LastUsedForDecision.String(),
				contract.TruncateText(m.InterpretationNotes, nameWidth),
			)
		}
		data = append(data, row)
	}

	if len(metrics) == 0 {
		if _, err := fmt.Fprintln(w, "🎉 No visible vanity metrics. Nothing to remove."); err != nil {
			return err
		}
		return writeFooter(w, cfg, duration)
	}

	if err := renderTable(table, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Recommend removing %d metrics from dashboards\n", len(metrics)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeImpactTable writes metrics ranked by net impact.
func writeImpactTable(w io.Writer, metrics []schema.EnrichedMetric, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	nameWidth := GetMaxTableNameWidth(cfg)

	headers := []string{"Rank", "Department", "Metric", "Impact", "Value", "Vanity", "Label"}
	if cfg.Detail {
		headers = append(headers, detailHeaders...)
	}
	table := newTable(w, headers)

	data := make([][]string, 0, len(metrics))
	for _, m := range metrics {
		row := []string{
			strconv.Itoa(m.Rank),
			m.Department,
			contract.TruncateText(m.MetricName, nameWidth),
			fmtFloat(m.ImpactScore),
			fmtFloat(m.ValueScore),
			fmtFloat(m.VanityScore),
			labelFor(m.AnnotatedMetric, cfg),
		}
		if cfg.Detail {
			row = append(row, detailCells(m, cfg)...)
		}
		data = append(data, row)
	}

	if err := renderTable(table, data); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d metrics by impact (value minus vanity)\n", len(metrics)); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}
