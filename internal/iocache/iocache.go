// Package iocache persists audit runs and their classified metrics.
package iocache

import (
	"sync"

	"github.com/huangsam/kpiaudit/internal/contract"
)

// HistoryManager owns the audit history store.
type HistoryManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	audit        contract.AuditStore
}

var _ contract.StoreManager = &HistoryManager{} // Compile-time check

// GetAuditStore returns the audit history store, or nil when none was initialized.
func (mgr *HistoryManager) GetAuditStore() contract.AuditStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.audit
}
