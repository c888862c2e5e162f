package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
)

// PrintTopResults prints the top high-value metrics of every department.
func PrintTopResults(top []schema.DepartmentTop, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.ParquetOut:
		var flat []schema.EnrichedMetric
		for _, dept := range top {
			flat = append(flat, dept.Metrics...)
		}
		return writeParquetFile(flat, cfg.OutputFile)
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, top)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTopCSV(w, top, cfg)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTopTables(w, top, cfg, duration)
		}, "Wrote table")
	}
}

// writeTopCSV writes one row per ranked metric. Departments without
// high-value metrics get a single row with an empty rank.
func writeTopCSV(w io.Writer, top []schema.DepartmentTop, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	header := []string{"department", "rank", "metric_name", "value_score", "last_used_for_decision", "dashboard", "value_reasons"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, dept := range top {
			if len(dept.Metrics) == 0 {
				if err := cw.Write([]string{dept.Department, "", "", "", "", "", ""}); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
				continue
			}
			for _, m := range dept.Metrics {
				rec := []string{
					dept.Department,
					strconv.Itoa(m.Rank),
					m.MetricName,
					fmtFloat(m.ValueScore),
					m.LastUsedForDecision.String(),
					schema.DashboardStatus(m.AnnotatedMetric),
					joinReasons(m.ValueReasons),
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
		}
		return nil
	})
}

// writeTopTables writes one small table per department.
func writeTopTables(w io.Writer, top []schema.DepartmentTop, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	nameWidth := GetMaxTableNameWidth(cfg)

	headers := []string{"Rank", "Metric", "Value", "Last Used", "Dashboard"}
	if cfg.Detail {
		headers = append(headers, "Reasons")
	}

	empty, promote := 0, 0
	for _, dept := range top {
		if _, err := fmt.Fprintf(w, "\n🏢 %s\n", dept.Department); err != nil {
			return err
		}
		if len(dept.Metrics) == 0 {
			empty++
			if _, err := fmt.Fprintln(w, "   No high-value metrics"); err != nil {
				return err
			}
			continue
		}

		data := make([][]string, 0, len(dept.Metrics))
		for _, m := range dept.Metrics {
			if !m.VisibleInDashboard {
				promote++
			}
			row := []string{
				strconv.Itoa(m.Rank),
				contract.TruncateText(m.MetricName, nameWidth),
				fmtFloat(m.ValueScore),
				m.LastUsedForDecision.String(),
				schema.DashboardStatus(m.AnnotatedMetric),
			}
			if cfg.Detail {
				row = append(row, contract.TruncateText(joinReasons(m.ValueReasons), GetMaxReasonWidth(cfg)))
			}
			data = append(data, row)
		}
		if err := renderTable(newTable(w, headers), data); err != nil {
			return err
		}
	}

	if promote > 0 {
		if _, err := fmt.Fprintf(w, "\n%d high-value metrics are not on a dashboard yet; consider promoting them\n", promote); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "\nShowing up to %d metrics for %d departments (%d without high-value metrics)\n", cfg.TopN, len(top), empty); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}
