package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
)

// Table names for audit history.
const (
	auditRunsTable     = "kpiaudit_runs"
	metricResultsTable = "kpiaudit_metric_results"
)

// metricResultColumns lists the columns of kpiaudit_metric_results in insert and scan order.
const metricResultColumns = `run_id, metric_position, department, metric_name,
	visible_in_dashboard, used_in_decision_making, executive_requested,
	last_reviewed, last_reviewed_days, last_used_for_decision, last_used_days,
	interpretation_notes, vanity_score, vanity_reasons, is_vanity,
	value_score, value_reasons, is_high_value, impact_score, label`

const metricResultColumnCount = 20

// runColumns lists the columns of kpiaudit_runs in scan order.
const runColumns = `run_id, run_uuid, start_time, end_time, run_duration_ms, total_metrics, source, config_params`

// AuditStoreImpl implements the AuditStore interface.
type AuditStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AuditStore = &AuditStoreImpl{} // Compile-time check

// NewAuditStore creates a new AuditStore with the specified backend.
func NewAuditStore(backend schema.DatabaseBackend, connStr string) (contract.AuditStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled history
		return &AuditStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	if err := createAuditTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create audit tables: %w", err)
	}

	return &AuditStoreImpl{db: db, backend: backend}, nil
}

// createAuditTables creates the audit history tables.
func createAuditTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{auditRunsTable, getCreateAuditRunsQuery(backend)},
		{metricResultsTable, getCreateMetricResultsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateAuditRunsQuery returns the CREATE TABLE query for kpiaudit_runs.
func getCreateAuditRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(auditRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_uuid CHAR(36) NOT NULL UNIQUE,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_metrics INT,
				source VARCHAR(512) NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				run_uuid TEXT NOT NULL UNIQUE,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_metrics INT,
				source TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_uuid TEXT NOT NULL UNIQUE,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_metrics INTEGER,
				source TEXT NOT NULL,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateMetricResultsQuery returns the CREATE TABLE query for kpiaudit_metric_results.
func getCreateMetricResultsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(metricResultsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				metric_position INT NOT NULL,
				department VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
				metric_name VARCHAR(255) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
				visible_in_dashboard BOOLEAN NOT NULL,
				used_in_decision_making BOOLEAN NOT NULL,
				executive_requested BOOLEAN NOT NULL,
				last_reviewed VARCHAR(100) NOT NULL,
				last_reviewed_days INT,
				last_used_for_decision VARCHAR(100) NOT NULL,
				last_used_days INT,
				interpretation_notes TEXT NOT NULL,
				vanity_score DOUBLE NOT NULL,
				vanity_reasons TEXT NOT NULL,
				is_vanity BOOLEAN NOT NULL,
				value_score DOUBLE NOT NULL,
				value_reasons TEXT NOT NULL,
				is_high_value BOOLEAN NOT NULL,
				impact_score DOUBLE NOT NULL,
				label VARCHAR(20) NOT NULL,
				PRIMARY KEY (run_id, department, metric_name)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				metric_position INT NOT NULL,
				department TEXT NOT NULL,
				metric_name TEXT NOT NULL,
				visible_in_dashboard BOOLEAN NOT NULL,
				used_in_decision_making BOOLEAN NOT NULL,
				executive_requested BOOLEAN NOT NULL,
				last_reviewed TEXT NOT NULL,
				last_reviewed_days INT,
				last_used_for_decision TEXT NOT NULL,
				last_used_days INT,
				interpretation_notes TEXT NOT NULL,
				vanity_score DOUBLE PRECISION NOT NULL,
				vanity_reasons TEXT NOT NULL,
				is_vanity BOOLEAN NOT NULL,
				value_score DOUBLE PRECISION NOT NULL,
				value_reasons TEXT NOT NULL,
				is_high_value BOOLEAN NOT NULL,
				impact_score DOUBLE PRECISION NOT NULL,
				label TEXT NOT NULL,
				PRIMARY KEY (run_id, department, metric_name)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				metric_position INTEGER NOT NULL,
				department TEXT NOT NULL,
				metric_name TEXT NOT NULL,
				visible_in_dashboard INTEGER NOT NULL,
				used_in_decision_making INTEGER NOT NULL,
				executive_requested INTEGER NOT NULL,
				last_reviewed TEXT NOT NULL,
				last_reviewed_days INTEGER,
				last_used_for_decision TEXT NOT NULL,
				last_used_days INTEGER,
				interpretation_notes TEXT NOT NULL,
				vanity_score REAL NOT NULL,
				vanity_reasons TEXT NOT NULL,
				is_vanity INTEGER NOT NULL,
				value_score REAL NOT NULL,
				value_reasons TEXT NOT NULL,
				is_high_value INTEGER NOT NULL,
				impact_score REAL NOT NULL,
				label TEXT NOT NULL,
				PRIMARY KEY (run_id, department, metric_name)
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store is the no-op backend.
func (as *AuditStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// BeginAudit creates a new audit run and returns its ID.
func (as *AuditStoreImpl) BeginAudit(run schema.AuditRun, configParams map[string]any) (int64, error) {
	if as.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(auditRunsTable, as.backend)
	args := []any{run.RunUUID, formatTime(run.Started, as.backend), run.Source, string(configJSON)}

	var runID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, source, config_params) VALUES ($1, $2, $3, $4) RETURNING run_id`, quotedTableName)
		err = as.db.QueryRow(query, args...).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_uuid, start_time, source, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert audit run: %w", err)
	}

	return runID, nil
}

// RecordMetricResults stores every classified metric of a run in one transaction.
// Metrics keep their slice position so a run can be reloaded in catalog order.
func (as *AuditStoreImpl) RecordMetricResults(runID int64, metrics []schema.AnnotatedMetric) (err error) {
	if as.disabled() || len(metrics) == 0 {
		return nil
	}

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		quoteTableName(metricResultsTable, as.backend), metricResultColumns,
		placeholders(as.backend, 1, metricResultColumnCount))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare metric insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, m := range metrics {
		record, convErr := ToMetricResultRecord(runID, i, m)
		if convErr != nil {
			return convErr
		}
		if _, err = stmt.Exec(
			record.RunID, record.Position, record.Department, record.MetricName,
			record.VisibleInDashboard, record.UsedInDecisionMaking, record.ExecutiveRequested,
			record.LastReviewed, record.LastReviewedDays, record.LastUsedForDecision, record.LastUsedDays,
			record.InterpretationNotes, record.VanityScore, record.VanityReasons, record.IsVanity,
			record.ValueScore, record.ValueReasons, record.IsHighValue, record.ImpactScore, record.Label,
		); err != nil {
			return fmt.Errorf("failed to insert metric %s: %w", m.Key(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit metric results: %w", err)
	}
	return nil
}

// EndAudit updates the audit run with completion data.
func (as *AuditStoreImpl) EndAudit(runID int64, endTime time.Time, totalMetrics int) error {
	if as.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(auditRunsTable, as.backend)

	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholders(as.backend, 1, 1))
	var startTime storedTime
	if err := as.db.QueryRow(query, runID).Scan(&startTime); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime.Time).Milliseconds()

	var updateQuery string
	switch as.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, total_metrics = $3 WHERE run_id = $4`, quotedTableName)
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, total_metrics = ? WHERE run_id = ?`, quotedTableName)
	}

	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalMetrics, runID); err != nil {
		return fmt.Errorf("failed to update audit run: %w", err)
	}

	return nil
}

// Close closes the underlying connection.
func (as *AuditStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}
