package iocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/kpiaudit/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryManager_Empty(t *testing.T) {
	mgr := &HistoryManager{}
	assert.Nil(t, mgr.GetAuditStore())
}

func TestClearHistory(t *testing.T) {
	t.Run("sqlite removes the file", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "history.db")
		store, err := NewAuditStore(schema.SQLiteBackend, dbPath)
		require.NoError(t, err)
		require.NoError(t, store.Close())

		require.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
		_, err = os.Stat(dbPath)
		assert.True(t, os.IsNotExist(err))

		// Clearing again is a no-op
		assert.NoError(t, ClearHistory(schema.SQLiteBackend, dbPath, ""))
	})

	t.Run("sqlite requires a path", func(t *testing.T) {
		assert.ErrorContains(t, ClearHistory(schema.SQLiteBackend, "", ""), "dbFilePath cannot be empty")
	})

	t.Run("none backend", func(t *testing.T) {
		assert.NoError(t, ClearHistory(schema.NoneBackend, "", ""))
	})

	t.Run("unknown backend", func(t *testing.T) {
		assert.ErrorContains(t, ClearHistory("oracle", "", ""), "unsupported history backend")
	})
}
