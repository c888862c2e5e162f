// Package ingest reads metric catalogs from CSV into schema records.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
)

// Catalog column names as they appear in the canonical header.
const (
	ColDepartment          = "Department"
	ColMetricName          = "Metric_Name"
	ColVisibleInDashboard  = "Visible_in_Dashboard"
	ColUsedInDecision      = "Used_in_Decision_Making"
	ColExecutiveRequested  = "Executive_Requested"
	ColLastReviewed        = "Last_Reviewed"
	ColLastUsedForDecision = "Metric_Last_Used_For_Decision"
	ColInterpretationNotes = "Interpretation_Notes"
)

// RequiredColumns lists the columns every catalog must provide, in canonical order.
var RequiredColumns = []string{
	ColDepartment,
	ColMetricName,
	ColVisibleInDashboard,
	ColUsedInDecision,
	ColExecutiveRequested,
	ColLastReviewed,
	ColLastUsedForDecision,
}

// Options controls how a catalog is read.
type Options struct {
	AsOf        time.Time // Reference date for absolute dates; zero means now
	Departments []string  // Keep only these departments (case-insensitive); empty keeps all
}

// Table is a parsed catalog.
type Table struct {
	Records  []schema.MetricRecord
	Warnings []schema.IngestWarning
}

// normalizeHeader folds a column name so that "Metric_Name", "metric name" and "MetricName" match.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(h)
}

// LoadFile reads a catalog from a CSV file on disk.
func LoadFile(path string, opts Options) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ReadCSV(f, opts)
}

// ReadCSV parses a catalog. Rows with a missing key or a duplicate key reject the
// whole table; ambiguous booleans and descriptors fall back to false and never
// and are reported as warnings.
func ReadCSV(r io.Reader, opts Options) (*Table, error) {
	asOf := opts.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: catalog is empty", schema.ErrInvalidArgument)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[normalizeHeader(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: catalog is missing required columns: %s", schema.ErrInvalidArgument, strings.Join(missing, ", "))
	}

	table := &Table{Records: []schema.MetricRecord{}}
	seen := make(map[schema.MetricKey]int)

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		line, _ := reader.FieldPos(0)
		if isBlank(row) {
			continue
		}

		cell := func(col string) string {
			i, ok := index[normalizeHeader(col)]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := schema.MetricRecord{
			Department:          cell(ColDepartment),
			MetricName:          cell(ColMetricName),
			InterpretationNotes: cell(ColInterpretationNotes),
		}
		if rec.Department == "" {
			return nil, fmt.Errorf("%w: line %d (%q) is missing %s", schema.ErrInvalidArgument, line, rec.MetricName, ColDepartment)
		}
		if rec.MetricName == "" {
			return nil, fmt.Errorf("%w: line %d in department %q is missing %s", schema.ErrInvalidArgument, line, rec.Department, ColMetricName)
		}
		key := rec.Key()
		if first, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate metric %s on lines %d and %d", schema.ErrInvalidArgument, key, first, line)
		}
		seen[key] = line

		warn := func(field, value, fallback string) {
			table.Warnings = append(table.Warnings, schema.IngestWarning{
				Row: line, Key: key, Field: field, Value: value, Fallback: fallback,
			})
		}
		flag := func(col string) bool {
			v := cell(col)
			b, err := contract.ParseBoolString(v)
			if err != nil {
				warn(col, v, "false")
				return false
			}
			return b
		}
		when := func(col string) schema.Recency {
			v := cell(col)
			r, ok := ParseRecency(v, asOf)
			if !ok {
				warn(col, v, "never")
			}
			return r
		}

		rec.VisibleInDashboard = flag(ColVisibleInDashboard)
		rec.UsedInDecisionMaking = flag(ColUsedInDecision)
		rec.ExecutiveRequested = flag(ColExecutiveRequested)
		rec.LastReviewed = when(ColLastReviewed)
		rec.LastUsedForDecision = when(ColLastUsedForDecision)

		table.Records = append(table.Records, rec)
	}

	if len(opts.Departments) > 0 {
		table.Records = FilterRecords(table.Records, opts.Departments)
	}
	return table, nil
}

// FilterRecords keeps records whose department matches one of allow, ignoring case.
func FilterRecords(records []schema.MetricRecord, allow []string) []schema.MetricRecord {
	out := make([]schema.MetricRecord, 0, len(records))
	for _, rec := range records {
		if slices.ContainsFunc(allow, func(d string) bool { return strings.EqualFold(d, rec.Department) }) {
			out = append(out, rec)
		}
	}
	return out
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
