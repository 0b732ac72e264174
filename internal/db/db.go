package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a throwaway store. Tests and dry runs use it.
const MemoryPath = ":memory:"

// storePragmas run once after open, in order. busy_timeout is in milliseconds.
var storePragmas = []struct {
	name string
	stmt string
}{
	{"WAL mode", "PRAGMA journal_mode = WAL"},
	{"foreign keys", "PRAGMA foreign_keys = ON"},
	{"busy timeout", "PRAGMA busy_timeout = 5000"},
}

// OpenDB opens the batch and order store at path, creating its directory when
// needed, and brings the schema up to date.
//
// An in-memory store is pinned to one connection: each new connection would
// otherwise see its own empty database.
func OpenDB(path string) (*sql.DB, error) {
	inMemory := path == MemoryPath
	if !inMemory {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	store, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	if inMemory {
		store.SetMaxOpenConns(1)
	}

	if err := prepare(store); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func prepare(store *sql.DB) error {
	for _, p := range storePragmas {
		if _, err := store.Exec(p.stmt); err != nil {
			return fmt.Errorf("setting %s: %w", p.name, err)
		}
	}
	if err := Migrate(store); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}
