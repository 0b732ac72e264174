package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	if err := migrateOrdersPendingStatus(db); err != nil {
		return fmt.Errorf("migrating orders status constraint: %w", err)
	}
	if err := migrateBackfillStageHistory(db); err != nil {
		return fmt.Errorf("backfilling stage history: %w", err)
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS batches (
		id                TEXT PRIMARY KEY,
		category          TEXT NOT NULL,
		variety_id        TEXT NOT NULL,
		variety_name      TEXT NOT NULL DEFAULT '',
		quantity          INTEGER NOT NULL CHECK(quantity > 0),
		unit              TEXT NOT NULL CHECK(unit IN ('tray','port','block')),
		stage             TEXT NOT NULL,
		source            TEXT NOT NULL DEFAULT 'manual'
		                  CHECK(source IN ('recommendation','manual')),
		sow_date          TEXT NOT NULL,
		soak_date         TEXT,
		uncover_date      TEXT,
		est_harvest_start TEXT,
		est_harvest_end   TEXT,
		harvested_at      TEXT,
		harvest_yield     REAL,
		expected_yield    REAL NOT NULL DEFAULT 0,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_batches_variety ON batches(variety_id)`,
	`CREATE INDEX IF NOT EXISTS idx_batches_stage ON batches(stage)`,

	`CREATE TABLE IF NOT EXISTS stage_history (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		batch_id   TEXT NOT NULL REFERENCES batches(id) ON DELETE CASCADE,
		stage      TEXT NOT NULL,
		entered_at TEXT NOT NULL,
		entered_by TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_stage_history_batch ON stage_history(batch_id)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id                      TEXT PRIMARY KEY,
		customer                TEXT NOT NULL DEFAULT '',
		status                  TEXT NOT NULL
		                        CHECK(status IN ('pending','placed','confirmed','delivered','cancelled')),
		requested_delivery_date TEXT,
		created_at              TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		line     INTEGER NOT NULL,
		name     TEXT NOT NULL,
		quantity REAL NOT NULL,
		PRIMARY KEY (order_id, line)
	)`,

	// Free-text notes on batches (recommendation reason or crew comment)
	`ALTER TABLE batches ADD COLUMN notes TEXT NOT NULL DEFAULT ''`,
}

// migrateOrdersPendingStatus rebuilds the orders table when its status CHECK
// predates the 'pending' status. Idempotent.
func migrateOrdersPendingStatus(db *sql.DB) error {
	ctx := context.Background()
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquiring db connection: %w", err)
	}
	defer conn.Close()

	var createSQL string
	if err := conn.QueryRowContext(ctx, `SELECT sql FROM sqlite_master WHERE type = 'table' AND name = 'orders'`).Scan(&createSQL); err != nil {
		return fmt.Errorf("loading orders schema: %w", err)
	}
	if strings.Contains(strings.ToLower(createSQL), "'pending'") {
		return nil
	}

	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = OFF`); err != nil {
		return fmt.Errorf("disabling foreign keys: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`)
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting migration transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	steps := []struct {
		stmt string
		what string
	}{
		{`DROP TABLE IF EXISTS orders_new`, "dropping stale orders_new"},
		{`CREATE TABLE orders_new (
			id                      TEXT PRIMARY KEY,
			customer                TEXT NOT NULL DEFAULT '',
			status                  TEXT NOT NULL
			                        CHECK(status IN ('pending','placed','confirmed','delivered','cancelled')),
			requested_delivery_date TEXT,
			created_at              TEXT NOT NULL
		)`, "creating orders_new"},
		{`INSERT INTO orders_new (id, customer, status, requested_delivery_date, created_at)
			SELECT id, customer, status, requested_delivery_date, created_at FROM orders`, "copying orders data"},
		{`DROP TABLE orders`, "dropping old orders"},
		{`ALTER TABLE orders_new RENAME TO orders`, "renaming orders_new"},
		{`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`, "recreating idx_orders_status"},
		{`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders(created_at)`, "recreating idx_orders_created"},
	}
	for _, s := range steps {
		if _, err := tx.ExecContext(ctx, s.stmt); err != nil {
			return fmt.Errorf("%s: %w", s.what, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing orders migration: %w", err)
	}
	committed = true
	return nil
}

// migrateBackfillStageHistory gives every batch without history rows a single
// entry for its current stage, dated at its sow date. Batches written before
// the stage_history table existed would otherwise report no stage entry.
// Idempotent: only batches with zero history rows are touched.
func migrateBackfillStageHistory(db *sql.DB) error {
	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT b.id, b.stage, b.sow_date FROM batches b
		WHERE NOT EXISTS (SELECT 1 FROM stage_history h WHERE h.batch_id = b.id)
		ORDER BY b.created_at`)
	if err != nil {
		return fmt.Errorf("listing batches without history: %w", err)
	}
	type pending struct{ id, stage, sowDate string }
	var todo []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.id, &p.stage, &p.sowDate); err != nil {
			rows.Close()
			return fmt.Errorf("scanning batch: %w", err)
		}
		todo = append(todo, p)
	}
	rows.Close()

	for _, p := range todo {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO stage_history (batch_id, stage, entered_at, entered_by) VALUES (?, ?, ?, 'migration')`,
			p.id, p.stage, p.sowDate); err != nil {
			return fmt.Errorf("inserting history for batch %s: %w", p.id, err)
		}
	}
	return nil
}
