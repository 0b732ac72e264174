package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, mock
}

func TestBatchRepo_Create_HistoryInsertFails(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewSQLiteBatchRepo(conn)

	mock.ExpectExec("INSERT INTO batches").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO stage_history").WillReturnError(errors.New("disk full"))

	err := repo.Create(context.Background(), testutil.NewTestBatch(sowDay))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting stage history")
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepo_ApplyUpdate_OnlySetFields(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewSQLiteBatchRepo(conn)

	stage := domain.StageLight
	mock.ExpectExec(`UPDATE batches SET updated_at = \?, stage = \? WHERE id = \?`).
		WithArgs(sqlmock.AnyArg(), "light", "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO stage_history").
		WithArgs("b1", "light", sqlmock.AnyArg(), "kim").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.ApplyUpdate(context.Background(), "b1", &domain.BatchUpdate{
		Stage:   &stage,
		History: &domain.StageEntry{Stage: stage, EnteredAt: sowDay, By: "kim"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepo_ApplyUpdate_NoRowsSkipsHistory(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewSQLiteBatchRepo(conn)

	stage := domain.StageLight
	mock.ExpectExec("UPDATE batches").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.ApplyUpdate(context.Background(), "gone", &domain.BatchUpdate{
		Stage:   &stage,
		History: &domain.StageEntry{Stage: stage, EnteredAt: sowDay},
	})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBatchRepo_List_QueryError(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewSQLiteBatchRepo(conn)

	mock.ExpectQuery("SELECT .* FROM batches").WillReturnError(errors.New("locked"))

	_, err := repo.List(context.Background(), BatchFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing batches")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_Upsert_ItemInsertFails(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewSQLiteOrderRepo(conn)

	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("DELETE FROM order_items").WithArgs("o1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO order_items").
		WithArgs("o1", 0, "Pea", 2.0).
		WillReturnError(errors.New("constraint failed"))

	o := testutil.NewTestOrder(orderDay, testutil.WithItem("Pea", 2))
	o.ID = "o1"
	err := repo.Upsert(context.Background(), o)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting order item")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepo_List_BadTimestamp(t *testing.T) {
	conn, mock := newMock(t)
	repo := NewSQLiteOrderRepo(conn)

	rows := sqlmock.NewRows([]string{"id", "customer", "status", "requested_delivery_date", "created_at"}).
		AddRow("o1", "", "placed", nil, "yesterday")
	mock.ExpectQuery("SELECT .* FROM orders").WillReturnRows(rows)

	_, err := repo.List(context.Background(), OrderFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing order created_at")
	assert.NoError(t, mock.ExpectationsWereMet())
}
