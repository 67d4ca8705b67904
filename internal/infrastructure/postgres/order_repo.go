package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/order"
)

const insertOrderSQL = `
INSERT INTO orders (id, user_id, total_amount, status, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6)
`

const insertOrderItemSQL = `
INSERT INTO order_items (order_id, product_id, quantity, price)
VALUES ($1,$2,$3,$4)
`

const getOrderSQL = `
SELECT id, user_id, total_amount, status, created_at, updated_at
FROM orders WHERE id = $1
`

const getOrderItemsSQL = `
SELECT product_id, quantity, price FROM order_items WHERE order_id = $1
`

const transitionFromPendingSQL = `
UPDATE orders SET status=$2, updated_at=$3 WHERE id=$1 AND status='pending'
`

type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if _, err := tx.ExecContext(ctx, insertOrderSQL,
		o.ID, o.UserID, o.TotalAmount, string(o.Status), o.CreatedAt, o.UpdatedAt,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, it := range o.Items {
		if _, err := tx.ExecContext(ctx, insertOrderItemSQL,
			o.ID, it.ProductID, it.Quantity, it.Price,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit order insert: %w", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, id string) (*order.Order, error) {
	row := r.db.QueryRowContext(ctx, getOrderSQL, id)

	var o order.Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.TotalAmount, &status, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("order not found")
	}
	if err != nil {
		return nil, err
	}
	o.Status = order.Status(status)
	if !o.Status.Valid() {
		return nil, domain.ErrInvalidState("invalid order status in db")
	}

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderRepo) items(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.db.QueryContext(ctx, getOrderItemsSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ProductID, &it.Quantity, &it.Price); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*order.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id=$1`, userID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT id, user_id, total_amount, status, created_at, updated_at
FROM orders WHERE user_id=$1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*order.Order
	for rows.Next() {
		var o order.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.TotalAmount, &status, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, 0, err
		}
		o.Status = order.Status(status)
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	for _, o := range out {
		items, err := r.items(ctx, o.ID)
		if err != nil {
			return nil, 0, err
		}
		o.Items = items
	}
	return out, total, nil
}

func (r *OrderRepo) TransitionFromPending(ctx context.Context, id string, to order.Status, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, transitionFromPendingSQL, id, string(to), now.UTC())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
