package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/payment"
)

const insertPaymentSQL = `
INSERT INTO payments (id, order_id, amount, status, idempotency_key, failure_reason, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`

const getPaymentByOrderSQL = `
SELECT id, order_id, amount, status, idempotency_key, failure_reason, created_at, updated_at
FROM payments WHERE order_id = $1
`

const getPaymentSQL = `
SELECT id, order_id, amount, status, idempotency_key, failure_reason, created_at, updated_at
FROM payments WHERE id = $1
`

const updatePaymentStatusSQL = `
UPDATE payments SET status=$2, failure_reason=$3, updated_at=$4 WHERE id=$1
`

type PaymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

func scanPayment(row interface{ Scan(...any) error }) (*payment.Payment, error) {
	var p payment.Payment
	var status string
	var idemKey sql.NullString
	err := row.Scan(&p.ID, &p.OrderID, &p.Amount, &status, &idemKey, &p.FailureReason, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = payment.Status(status)
	p.IdempotencyKey = idemKey.String
	return &p, nil
}

// CreateIfAbsent runs the check-then-insert inside one transaction. The
// unique index on order_id is the backstop when two deliveries race past the
// check concurrently.
func (r *PaymentRepo) CreateIfAbsent(ctx context.Context, p *payment.Payment) (*payment.Payment, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if pr := recover(); pr != nil {
			_ = tx.Rollback()
			panic(pr)
		}
	}()

	existing, err := scanPayment(tx.QueryRowContext(ctx, getPaymentByOrderSQL, p.OrderID))
	if err == nil {
		_ = tx.Rollback()
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		_ = tx.Rollback()
		return nil, false, err
	}

	var idemKey sql.NullString
	if p.IdempotencyKey != "" {
		idemKey = sql.NullString{String: p.IdempotencyKey, Valid: true}
	}
	_, err = tx.ExecContext(ctx, insertPaymentSQL,
		p.ID, p.OrderID, p.Amount, string(p.Status), idemKey, p.FailureReason, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			stored, gerr := scanPayment(r.db.QueryRowContext(ctx, getPaymentByOrderSQL, p.OrderID))
			if gerr != nil {
				return nil, false, gerr
			}
			return stored, false, nil
		}
		return nil, false, err
	}
	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit payment insert: %w", err)
	}
	return p, true, nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, id string) (*payment.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, getPaymentSQL, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("payment not found")
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID string) ([]*payment.Payment, error) {
	rows, err := r.db.QueryContext(ctx, getPaymentByOrderSQL+` ORDER BY created_at DESC`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*payment.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PaymentRepo) UpdateStatus(ctx context.Context, id string, status payment.Status, reason string, now time.Time) (*payment.Payment, error) {
	res, err := r.db.ExecContext(ctx, updatePaymentStatusSQL, id, string(status), reason, now.UTC())
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound("payment not found")
	}
	return r.GetByID(ctx, id)
}
