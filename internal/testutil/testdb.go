package testutil

import (
	"database/sql"
	"testing"

	"github.com/alexanderramin/furrow/internal/db"
	"github.com/stretchr/testify/require"
)

// NewTestDB returns a migrated in-memory store that is closed with the test.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	store, err := db.OpenDB(db.MemoryPath)
	require.NoError(t, err, "opening in-memory store")
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func NewTestUoW(store *sql.DB) db.UnitOfWork {
	return db.NewSQLiteUnitOfWork(store)
}
