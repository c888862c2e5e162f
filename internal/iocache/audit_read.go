package iocache

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/huangsam/kpiaudit/schema"
)

// ErrNoRuns is returned when the history has no audit runs to load.
var ErrNoRuns = errors.New("no audit runs recorded")

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRun reads one kpiaudit_runs row selected with runColumns.
func scanRun(row rowScanner) (schema.AuditRunRecord, error) {
	var record schema.AuditRunRecord
	var startTime, endTime storedTime
	var durationMs, totalMetrics sql.NullInt32
	var configParams sql.NullString

	if err := row.Scan(&record.RunID, &record.RunUUID, &startTime, &endTime,
		&durationMs, &totalMetrics, &record.Source, &configParams); err != nil {
		return record, err
	}

	record.StartTime = startTime.Time
	record.EndTime = endTime.ptr()
	if durationMs.Valid {
		d := durationMs.Int32
		record.RunDurationMs = &d
	}
	record.TotalMetrics = totalMetrics.Int32
	if configParams.Valid {
		s := configParams.String
		record.ConfigParams = &s
	}
	return record, nil
}

// scanMetricResult reads one kpiaudit_metric_results row selected with metricResultColumns.
func scanMetricResult(row rowScanner) (schema.MetricResultRecord, error) {
	var record schema.MetricResultRecord
	var reviewedDays, usedDays sql.NullInt32

	if err := row.Scan(
		&record.RunID, &record.Position, &record.Department, &record.MetricName,
		&record.VisibleInDashboard, &record.UsedInDecisionMaking, &record.ExecutiveRequested,
		&record.LastReviewed, &reviewedDays, &record.LastUsedForDecision, &usedDays,
		&record.InterpretationNotes, &record.VanityScore, &record.VanityReasons, &record.IsVanity,
		&record.ValueScore, &record.ValueReasons, &record.IsHighValue, &record.ImpactScore, &record.Label,
	); err != nil {
		return record, err
	}

	if reviewedDays.Valid {
		d := reviewedDays.Int32
		record.LastReviewedDays = &d
	}
	if usedDays.Valid {
		d := usedDays.Int32
		record.LastUsedDays = &d
	}
	return record, nil
}

// LoadRun returns a stored run and its metrics in their original order.
// A runID of 0 selects the most recent run.
func (as *AuditStoreImpl) LoadRun(runID int64) (schema.AuditRunRecord, []schema.AnnotatedMetric, error) {
	if as.disabled() {
		return schema.AuditRunRecord{}, nil, fmt.Errorf("audit history is disabled for backend %s", as.backend)
	}

	runsTable := quoteTableName(auditRunsTable, as.backend)

	if runID == 0 {
		var latest sql.NullInt64
		query := fmt.Sprintf("SELECT MAX(run_id) FROM %s", runsTable)
		if err := as.db.QueryRow(query).Scan(&latest); err != nil {
			return schema.AuditRunRecord{}, nil, fmt.Errorf("failed to find latest run: %w", err)
		}
		if !latest.Valid {
			return schema.AuditRunRecord{}, nil, ErrNoRuns
		}
		runID = latest.Int64
	}

	runQuery := fmt.Sprintf("SELECT %s FROM %s WHERE run_id = %s", runColumns, runsTable, placeholders(as.backend, 1, 1))
	run, err := scanRun(as.db.QueryRow(runQuery, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return schema.AuditRunRecord{}, nil, fmt.Errorf("audit run %d not found", runID)
	}
	if err != nil {
		return schema.AuditRunRecord{}, nil, fmt.Errorf("failed to load audit run %d: %w", runID, err)
	}

	metricsQuery := fmt.Sprintf("SELECT %s FROM %s WHERE run_id = %s ORDER BY metric_position",
		metricResultColumns, quoteTableName(metricResultsTable, as.backend), placeholders(as.backend, 1, 1))
	rows, err := as.db.Query(metricsQuery, runID)
	if err != nil {
		return run, nil, fmt.Errorf("failed to query metrics for run %d: %w", runID, err)
	}
	defer func() { _ = rows.Close() }()

	metrics := []schema.AnnotatedMetric{}
	for rows.Next() {
		record, err := scanMetricResult(rows)
		if err != nil {
			return run, nil, fmt.Errorf("failed to scan metric result: %w", err)
		}
		m, err := FromMetricResultRecord(record)
		if err != nil {
			return run, nil, err
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return run, nil, fmt.Errorf("error iterating metric results: %w", err)
	}

	return run, metrics, nil
}

// GetStatus returns status information about the audit store.
func (as *AuditStoreImpl) GetStatus() (schema.AuditStatus, error) {
	status := schema.AuditStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.disabled() {
		return status, nil
	}

	runsTable := quoteTableName(auditRunsTable, as.backend)

	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var lastRunTime, oldestRunTime storedTime

		lastRunQuery := fmt.Sprintf("SELECT run_id, run_uuid, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		if err := as.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, &status.LastRunUUID, &lastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = lastRunTime.Time

		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		if err := as.db.QueryRow(oldestRunQuery).Scan(&oldestRunTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime.Time

		metricsQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_metrics), 0) FROM %s", runsTable)
		if err := as.db.QueryRow(metricsQuery).Scan(&status.TotalMetrics); err != nil {
			return status, fmt.Errorf("failed to get total metrics audited: %w", err)
		}
	}

	for _, table := range []string{auditRunsTable, metricResultsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all audit runs from the store.
func (as *AuditStoreImpl) GetAllRuns() ([]schema.AuditRunRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id", runColumns, quoteTableName(auditRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AuditRunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit run: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit runs: %w", err)
	}

	return results, nil
}

// GetAllMetricResults retrieves every stored metric result across all runs.
func (as *AuditStoreImpl) GetAllMetricResults() ([]schema.MetricResultRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY run_id, metric_position",
		metricResultColumns, quoteTableName(metricResultsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MetricResultRecord
	for rows.Next() {
		record, err := scanMetricResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric result: %w", err)
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric results: %w", err)
	}

	return results, nil
}
