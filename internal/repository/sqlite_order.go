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

const orderColumns = `id, customer, status, requested_delivery_date, created_at`

type SQLiteOrderRepo struct {
	db db.DBTX
}

func NewSQLiteOrderRepo(conn db.DBTX) *SQLiteOrderRepo {
	return &SQLiteOrderRepo{db: conn}
}

func (r *SQLiteOrderRepo) Upsert(ctx context.Context, o *domain.Order) error {
	query := `INSERT INTO orders (id, customer, status, requested_delivery_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			customer = excluded.customer,
			status = excluded.status,
			requested_delivery_date = excluded.requested_delivery_date,
			created_at = excluded.created_at`
	_, err := r.db.ExecContext(ctx, query,
		o.ID,
		o.Customer,
		string(o.Status),
		nullableTimeToString(o.RequestedDeliveryDate, dateLayout),
		formatTimestamp(o.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting order: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, o.ID); err != nil {
		return fmt.Errorf("clearing order items: %w", err)
	}
	for i, item := range o.Items {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO order_items (order_id, line, name, quantity) VALUES (?, ?, ?, ?)`,
			o.ID, i, item.Name, item.Quantity)
		if err != nil {
			return fmt.Errorf("inserting order item: %w", err)
		}
	}
	return nil
}

func (r *SQLiteOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("order: %w", ErrNotFound)
		}
		return nil, err
	}
	items, err := r.items(ctx, `WHERE order_id = ?`, id)
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

func (r *SQLiteOrderRepo) List(ctx context.Context, f OrderFilter) ([]*domain.Order, error) {
	where, args := orderWhere(f)
	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, err
		}
		orders = append(orders, o)
	}
	iterErr := rows.Err()
	rows.Close()
	if iterErr != nil {
		return nil, fmt.Errorf("iterating orders: %w", iterErr)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.items(ctx, `WHERE order_id IN (SELECT id FROM orders`+where+`)`, args...)
	if err != nil {
		return nil, err
	}
	for _, o := range orders {
		o.Items = items[o.ID]
	}
	return orders, nil
}

func orderWhere(f OrderFilter) (string, []any) {
	var clauses []string
	var args []any
	if f.Since != nil {
		clauses = append(clauses, `COALESCE(requested_delivery_date, substr(created_at, 1, 10)) >= ?`)
		args = append(args, f.Since.UTC().Format(dateLayout))
	}
	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		clauses = append(clauses, `status IN (`+strings.Join(placeholders, ", ")+`)`)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (r *SQLiteOrderRepo) items(ctx context.Context, where string, args ...any) (map[string][]domain.OrderItem, error) {
	query := `SELECT order_id, name, quantity FROM order_items ` + where + ` ORDER BY order_id, line`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.OrderItem)
	for rows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := rows.Scan(&orderID, &item.Name, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}
		out[orderID] = append(out[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order items: %w", err)
	}
	return out, nil
}

// scanOrder reads one order row through scan, which is either Row.Scan or Rows.Scan.
// sql.ErrNoRows is returned unwrapped.
func scanOrder(scan func(dest ...any) error) (*domain.Order, error) {
	var o domain.Order
	var status, createdAt string
	var requested sql.NullString
	if err := scan(&o.ID, &o.Customer, &status, &requested, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning order: %w", err)
	}
	o.Status = domain.OrderStatus(status)
	o.RequestedDeliveryDate = parseNullableTime(requested, dateLayout)

	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing order created_at: %w", err)
	}
	o.CreatedAt = t
	return &o, nil
}
