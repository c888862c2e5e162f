package iocache

import (
	"time"

	"github.com/huangsam/kpiaudit/internal/contract"
	"github.com/huangsam/kpiaudit/schema"
	"github.com/stretchr/testify/mock"
)

// MockStoreManager is a mock implementation of StoreManager for testing.
type MockStoreManager struct {
	mock.Mock
}

var _ contract.StoreManager = &MockStoreManager{} // Compile-time check

// GetAuditStore implements the StoreManager interface.
func (m *MockStoreManager) GetAuditStore() contract.AuditStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AuditStore)
	return store
}

// MockAuditStore is a mock implementation of AuditStore for testing.
type MockAuditStore struct {
	mock.Mock
}

var _ contract.AuditStore = &MockAuditStore{} // Compile-time check

// BeginAudit implements the AuditStore interface.
func (m *MockAuditStore) BeginAudit(run schema.AuditRun, configParams map[string]any) (int64, error) {
	args := m.Called(run, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// RecordMetricResults implements the AuditStore interface.
func (m *MockAuditStore) RecordMetricResults(runID int64, metrics []schema.AnnotatedMetric) error {
	args := m.Called(runID, metrics)
	return args.Error(0)
}

// EndAudit implements the AuditStore interface.
func (m *MockAuditStore) EndAudit(runID int64, endTime time.Time, totalMetrics int) error {
	args := m.Called(runID, endTime, totalMetrics)
	return args.Error(0)
}

// LoadRun implements the AuditStore interface.
func (m *MockAuditStore) LoadRun(runID int64) (schema.AuditRunRecord, []schema.AnnotatedMetric, error) {
	args := m.Called(runID)
	metrics, _ := args.Get(1).([]schema.AnnotatedMetric)
	return args.Get(0).(schema.AuditRunRecord), metrics, args.Error(2)
}

// GetStatus implements the AuditStore interface.
func (m *MockAuditStore) GetStatus() (schema.AuditStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AuditStatus), args.Error(1)
}

// GetAllRuns implements the AuditStore interface.
func (m *MockAuditStore) GetAllRuns() ([]schema.AuditRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.AuditRunRecord)
	return runs, args.Error(1)
}

// GetAllMetricResults implements the AuditStore interface.
func (m *MockAuditStore) GetAllMetricResults() ([]schema.MetricResultRecord, error) {
	args := m.Called()
	results, _ := args.Get(0).([]schema.MetricResultRecord)
	return results, args.Error(1)
}

// Close implements the AuditStore interface.
func (m *MockAuditStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
