package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
)

// maxBarWidth caps distribution bars in the text summary.
const maxBarWidth = 40

// PrintSummaryResults prints the catalog-wide and per-department aggregates.
func PrintSummaryResults(summary schema.AuditSummary, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.ParquetOut:
		return unsupportedParquet("summary")
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, summary)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryCSV(w, summary, cfg)
		}, "Wrote CSV")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSummaryText(w, summary, cfg, duration)
		}, "Wrote text")
	}
}

// writeSummaryCSV writes the per-department breakdown followed by an ALL row.
func writeSummaryCSV(w io.Writer, summary schema.AuditSummary, cfg *contract.Config) error {
	fmtFloat := createFormatter(cfg.Precision)
	header := []string{
		"department", "total_metrics", "visible", "used_in_decisions",
		"vanity", "high_value", "removable", "vanity_pct", "high_value_pct", "reduction_pct",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, d := range summary.Departments {
			rec := []string{
				d.Department,
				strconv.Itoa(d.TotalMetrics),
				strconv.Itoa(d.VisibleCount),
				strconv.Itoa(d.DecisionCount),
				strconv.Itoa(d.VanityCount),
				strconv.Itoa(d.HighValueCount),
				strconv.Itoa(d.RemovableCount),
				fmtFloat(d.VanityPct),
				fmtFloat(d.HighValuePct),
				fmtFloat(d.ReductionPct),
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		ov := summary.Overview
		rec := []string{
			"ALL",
			strconv.Itoa(ov.TotalMetrics),
			strconv.Itoa(ov.VisibleCount),
			strconv.Itoa(ov.DecisionCount),
			strconv.Itoa(ov.VanityCount),
			strconv.Itoa(ov.HighValueCount),
			strconv.Itoa(ov.RemovableCount),
			fmtFloat(ov.VanityPct),
			fmtFloat(ov.HighValuePct),
			fmtFloat(ov.DashboardReductionPct),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
		return nil
	})
}

// writeSummaryText writes every section of the summary as tables.
func writeSummaryText(w io.Writer, summary schema.AuditSummary, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatter(cfg.Precision)
	pct := func(v float64) string { return fmtFloat(v) + "%" }
	ov := summary.Overview

	if _, err := fmt.Fprintln(w, "📊 Overview"); err != nil {
		return err
	}
	overview := [][]string{
		{"Metrics", strconv.Itoa(ov.TotalMetrics)},
		{"Departments", strconv.Itoa(ov.Departments)},
		{"On dashboards", strconv.Itoa(ov.VisibleCount)},
		{"Used in decisions", strconv.Itoa(ov.DecisionCount)},
		{"Vanity", fmt.Sprintf("%d (%s)", ov.VanityCount, pct(ov.VanityPct))},
		{"High-value", fmt.Sprintf("%d (%s)", ov.HighValueCount, pct(ov.HighValuePct))},
		{"Removable", strconv.Itoa(ov.RemovableCount)},
		{"Dashboard reduction", pct(ov.DashboardReductionPct)},
	}
	if err := renderTable(newTable(w, []string{"Measure", "Value"}), overview); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, "\n🏢 Departments"); err != nil {
		return err
	}
	depts := make([][]string, 0, len(summary.Departments))
	for _, d := range summary.Departments {
		depts = append(depts, []string{
			d.Department,
			strconv.Itoa(d.TotalMetrics),
			strconv.Itoa(d.VisibleCount),
			strconv.Itoa(d.VanityCount),
			strconv.Itoa(d.HighValueCount),
			strconv.Itoa(d.RemovableCount),
			pct(d.ReductionPct),
		})
	}
	deptHeaders := []string{"Department", "Metrics", "Visible", "Vanity", "High-Value", "Removable", "Reduction"}
	if err := renderTable(newTable(w, deptHeaders), depts); err != nil {
		return err
	}

	for _, ct := range []schema.CrossTab{summary.VisibilityUsage, summary.ExecutiveUsage} {
		if err := writeCrossTab(w, ct); err != nil {
			return err
		}
	}

	if cfg.Detail {
		if err := writeDistribution(w, "Value score distribution", summary.ValueDistribution, fmtFloat); err != nil {
			return err
		}
		if err := writeDistribution(w, "Vanity score distribution", summary.VanityDistribution, fmtFloat); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return writeFooter(w, cfg, duration)
}

// writeCrossTab renders a 2x2 contingency table with margins.
func writeCrossTab(w io.Writer, ct schema.CrossTab) error {
	if _, err := fmt.Fprintf(w, "\n🔀 %s x %s\n", ct.RowField, ct.ColumnField); err != nil {
		return err
	}
	headers := []string{ct.RowField, ct.ColumnField + ": No", ct.ColumnField + ": Yes", "Total"}
	data := make([][]string, 0, 3)
	for i, name := range []string{"No", "Yes"} {
		data = append(data, []string{
			name,
			strconv.Itoa(ct.Counts[i][0]),
			strconv.Itoa(ct.Counts[i][1]),
			strconv.Itoa(ct.RowTotals[i]),
		})
	}
	data = append(data, []string{"Total", strconv.Itoa(ct.ColTotals[0]), strconv.Itoa(ct.ColTotals[1]), strconv.Itoa(ct.Total)})
	return renderTable(newTable(w, headers), data)
}

// writeDistribution renders a score histogram with proportional bars.
func writeDistribution(w io.Writer, title string, buckets []schema.ScoreBucket, fmtFloat func(float64) string) error {
	if _, err := fmt.Fprintf(w, "\n📈 %s\n", title); err != nil {
		return err
	}
	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}
	data := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		data = append(data, []string{fmtFloat(b.Score), strconv.Itoa(b.Count), bar(b.Count, peak)})
	}
	return renderTable(newTable(w, []string{"Score", "Count", ""}), data)
}

// bar scales count against peak into a run of block characters.
func bar(count, peak int) string {
	if count <= 0 || peak <= 0 {
		return ""
	}
	if peak <= maxBarWidth {
		return strings.Repeat("█", count)
	}
	return strings.Repeat("█", max(1, count*maxBarWidth/peak))
}
