package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/furrow/internal/db"
	"github.com/alexanderramin/furrow/internal/domain"
)

// batchColumns is the canonical SELECT column list for batches.
const batchColumns = `id, category, variety_id, variety_name, quantity, unit, stage, source, notes,
		sow_date, soak_date, uncover_date, est_harvest_start, est_harvest_end,
		harvested_at, harvest_yield, expected_yield, created_at, updated_at`

// SQLiteBatchRepo implements BatchRepo on a *sql.DB or a *sql.Tx.
type SQLiteBatchRepo struct {
	db db.DBTX
}

func NewSQLiteBatchRepo(conn db.DBTX) *SQLiteBatchRepo {
	return &SQLiteBatchRepo{db: conn}
}

func (r *SQLiteBatchRepo) Create(ctx context.Context, b *domain.Batch) error {
	query := `INSERT INTO batches (id, category, variety_id, variety_name, quantity, unit, stage, source, notes,
		sow_date, soak_date, uncover_date, est_harvest_start, est_harvest_end,
		harvested_at, harvest_yield, expected_yield, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		b.ID,
		string(b.Category),
		b.VarietyID,
		b.VarietyName,
		b.Quantity,
		string(b.Unit),
		string(b.Stage),
		string(b.Source),
		b.Notes,
		b.SowDate.UTC().Format(dateLayout),
		nullableTimeToString(b.SoakDate, dateLayout),
		nullableTimeToString(b.UncoverDate, dateLayout),
		nullableTimeToString(b.EstimatedHarvestStart, dateLayout),
		nullableTimeToString(b.EstimatedHarvestEnd, dateLayout),
		nullableTimeToString(b.HarvestedAt, time.RFC3339),
		nullableFloatToValue(b.HarvestYield),
		b.ExpectedYield,
		formatTimestamp(b.CreatedAt),
		formatTimestamp(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting batch: %w", err)
	}
	for _, h := range b.StageHistory {
		if err := r.appendHistory(ctx, b.ID, h); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteBatchRepo) GetByID(ctx context.Context, id string) (*domain.Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = ?`
	b, err := r.scanBatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	history, err := r.history(ctx, `WHERE batch_id = ?`, id)
	if err != nil {
		return nil, err
	}
	b.StageHistory = history[b.ID]
	return b, nil
}

func (r *SQLiteBatchRepo) List(ctx context.Context, f BatchFilter) ([]*domain.Batch, error) {
	where, args := batchWhere(f)
	query := `SELECT ` + batchColumns + ` FROM batches` + where + ` ORDER BY sow_date, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing batches: %w", err)
	}
	batches, err := r.scanBatches(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return batches, nil
	}

	historyWhere := `WHERE batch_id IN (SELECT id FROM batches` + where + `)`
	history, err := r.history(ctx, historyWhere, args...)
	if err != nil {
		return nil, err
	}
	for _, b := range batches {
		b.StageHistory = history[b.ID]
	}
	return batches, nil
}

func batchWhere(f BatchFilter) (string, []any) {
	var clauses []string
	var args []any
	if !f.IncludeHarvested {
		clauses = append(clauses, `stage != ?`)
		args = append(args, string(domain.StageHarvested))
	}
	if f.VarietyID != "" {
		clauses = append(clauses, `variety_id = ?`)
		args = append(args, f.VarietyID)
	}
	if f.Category != "" {
		clauses = append(clauses, `category = ?`)
		args = append(args, string(f.Category))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *SQLiteBatchRepo) ApplyUpdate(ctx context.Context, id string, u *domain.BatchUpdate) error {
	sets := []string{`updated_at = ?`}
	updatedAt := u.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	args := []any{formatTimestamp(updatedAt)}

	if u.Stage != nil {
		sets = append(sets, `stage = ?`)
		args = append(args, string(*u.Stage))
	}
	if u.UncoverDate != nil {
		sets = append(sets, `uncover_date = ?`)
		args = append(args, nullableTimeToString(u.UncoverDate, dateLayout))
	}
	if u.HarvestedAt != nil {
		sets = append(sets, `harvested_at = ?`)
		args = append(args, nullableTimeToString(u.HarvestedAt, time.RFC3339))
	}
	if u.HarvestYield != nil {
		sets = append(sets, `harvest_yield = ?`)
		args = append(args, *u.HarvestYield)
	}
	args = append(args, id)

	query := `UPDATE batches SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking updated batch: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("batch %s: %w", id, ErrNotFound)
	}

	if u.History != nil {
		return r.appendHistory(ctx, id, *u.History)
	}
	return nil
}

func (r *SQLiteBatchRepo) appendHistory(ctx context.Context, batchID string, h domain.StageEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stage_history (batch_id, stage, entered_at, entered_by) VALUES (?, ?, ?, ?)`,
		batchID, string(h.Stage), formatTimestamp(h.EnteredAt), h.By)
	if err != nil {
		return fmt.Errorf("inserting stage history: %w", err)
	}
	return nil
}

// history loads stage entries keyed by batch ID in insertion order.
func (r *SQLiteBatchRepo) history(ctx context.Context, where string, args ...any) (map[string][]domain.StageEntry, error) {
	query := `SELECT batch_id, stage, entered_at, entered_by FROM stage_history ` + where + ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing stage history: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.StageEntry)
	for rows.Next() {
		var batchID, stage, enteredAt, by string
		if err := rows.Scan(&batchID, &stage, &enteredAt, &by); err != nil {
			return nil, fmt.Errorf("scanning stage history row: %w", err)
		}
		t, err := parseTimestamp(enteredAt)
		if err != nil {
			return nil, fmt.Errorf("parsing entered_at: %w", err)
		}
		out[batchID] = append(out[batchID], domain.StageEntry{Stage: domain.StageID(stage), EnteredAt: t, By: by})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stage history: %w", err)
	}
	return out, nil
}

type batchRow struct {
	category, unit, stage, source string
	sowDate                       string
	soakDate, uncoverDate         sql.NullString
	harvestStart, harvestEnd      sql.NullString
	harvestedAt                   sql.NullString
	harvestYield                  sql.NullFloat64
	createdAt, updatedAt          string
}

func (br *batchRow) dest(b *domain.Batch) []any {
	return []any{
		&b.ID, &br.category, &b.VarietyID, &b.VarietyName, &b.Quantity, &br.unit, &br.stage, &br.source, &b.Notes,
		&br.sowDate, &br.soakDate, &br.uncoverDate, &br.harvestStart, &br.harvestEnd,
		&br.harvestedAt, &br.harvestYield, &b.ExpectedYield, &br.createdAt, &br.updatedAt,
	}
}

// scanBatch scans a single batch from a *sql.Row.
func (r *SQLiteBatchRepo) scanBatch(row *sql.Row) (*domain.Batch, error) {
	var b domain.Batch
	var br batchRow
	if err := row.Scan(br.dest(&b)...); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("batch: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning batch: %w", err)
	}
	return populateBatch(&b, &br)
}

// scanBatches scans multiple batches from *sql.Rows.
func (r *SQLiteBatchRepo) scanBatches(rows *sql.Rows) ([]*domain.Batch, error) {
	var batches []*domain.Batch
	for rows.Next() {
		var b domain.Batch
		var br batchRow
		if err := rows.Scan(br.dest(&b)...); err != nil {
			return nil, fmt.Errorf("scanning batch row: %w", err)
		}
		item, err := populateBatch(&b, &br)
		if err != nil {
			return nil, err
		}
		batches = append(batches, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating batches: %w", err)
	}
	return batches, nil
}

// populateBatch fills in parsed fields on a Batch after scanning raw values.
func populateBatch(b *domain.Batch, br *batchRow) (*domain.Batch, error) {
	b.Category = domain.CropCategory(br.category)
	b.Unit = domain.Unit(br.unit)
	b.Stage = domain.StageID(br.stage)
	b.Source = domain.BatchSource(br.source)

	b.SoakDate = parseNullableTime(br.soakDate, dateLayout)
	b.UncoverDate = parseNullableTime(br.uncoverDate, dateLayout)
	b.EstimatedHarvestStart = parseNullableTime(br.harvestStart, dateLayout)
	b.EstimatedHarvestEnd = parseNullableTime(br.harvestEnd, dateLayout)
	b.HarvestedAt = parseNullableTime(br.harvestedAt, time.RFC3339)
	b.HarvestYield = parseNullableFloat(br.harvestYield)

	var parseErr error
	b.SowDate, parseErr = time.Parse(dateLayout, br.sowDate)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing sow_date: %w", parseErr)
	}
	b.CreatedAt, parseErr = time.Parse(time.RFC3339, br.createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	b.UpdatedAt, parseErr = time.Parse(time.RFC3339, br.updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return b, nil
}
