// Package outwriter has output and writer logic.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/internal/parquet"
	"github.com/huangsam/kpiaudit/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeParquetFile writes enriched metrics for the parquet output mode.
func writeParquetFile(metrics []schema.EnrichedMetric, outputFile string) error {
	if outputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	if err := parquet.WriteAuditedMetricsParquet(metrics, outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}

// unsupportedParquet is returned by views that have no row-oriented shape.
func unsupportedParquet(view string) error {
	return fmt.Errorf("%w: parquet output is not supported for the %s view", schema.ErrInvalidArgument, view)
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := writeRows(csvWriter); err != nil {
		return err
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

// createFormatter returns a float formatter honoring the configured precision.
func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
}

// labelFor returns the verdict label, colored when the config asks for it.
func labelFor(m schema.AnnotatedMetric, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(m)
	}
	return schema.GetPlainLabel(m)
}

// yesNo renders a boolean the way catalogs spell it.
func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// joinReasons renders rule reasons for a single table cell or CSV field.
func joinReasons(reasons []string) string {
	return strings.Join(reasons, " | ")
}

// historyNote describes where the run was saved, if anywhere.
func historyNote(cfg *contract.Config) string {
	if cfg.Save {
		return string(cfg.StoreBackend)
	}
	return "not saved"
}

// writeFooter prints the timing line shared by every table view.
func writeFooter(w io.Writer, cfg *contract.Config, duration time.Duration) error {
	_, err := fmt.Fprintf(w, "Audit completed in %v with %d workers. History: %s\n", duration, cfg.Workers, historyNote(cfg))
	return err
}
