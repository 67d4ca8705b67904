package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bluecart/commerce/internal/domain"
	"github.com/bluecart/commerce/internal/product"
)

const insertProductSQL = `
INSERT INTO products (id, name, description, category, price, inventory, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`

const getProductSQL = `
SELECT id, name, description, category, price, inventory, created_at, updated_at
FROM products WHERE id = $1
`

const updateProductSQL = `
UPDATE products SET name=$2, description=$3, category=$4, price=$5, inventory=$6, updated_at=$7
WHERE id=$1
`

const lockProductInventorySQL = `
SELECT inventory FROM products WHERE id = $1 FOR UPDATE
`

const decrementInventorySQL = `
UPDATE products SET inventory = inventory - $2, updated_at = $3 WHERE id = $1
`

const insertProcessedOrderSQL = `
INSERT INTO processed_orders (order_id, created_at) VALUES ($1, $2)
`

type ProductRepo struct {
	db *sql.DB
}

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	_, err := r.db.ExecContext(ctx, insertProductSQL,
		p.ID, p.Name, p.Description, p.Category, p.Price, p.Inventory, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*product.Product, error) {
	row := r.db.QueryRowContext(ctx, getProductSQL, id)

	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Inventory, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound("product not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, category string, limit, offset int) ([]*product.Product, int, error) {
	where := ""
	args := []any{}
	if category != "" {
		where = "WHERE category = $1"
		args = append(args, category)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listSQL := fmt.Sprintf(`
SELECT id, name, description, category, price, inventory, created_at, updated_at
FROM products %s
ORDER BY created_at DESC
LIMIT $%d OFFSET $%d
`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.Price, &p.Inventory, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	res, err := r.db.ExecContext(ctx, updateProductSQL,
		p.ID, p.Name, p.Description, p.Category, p.Price, p.Inventory, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("product not found")
	}
	return nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound("product not found")
	}
	return nil
}

func (r *ProductRepo) OrderProcessed(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM processed_orders WHERE order_id=$1)`, orderID,
	).Scan(&exists)
	return exists, err
}

// ReserveForOrder holds row locks on every product for the duration of the
// transaction, so concurrent reservations for overlapping products are
// serialized. The marker insert rides in the same transaction: decrements
// and marker are all-or-nothing.
func (r *ProductRepo) ReserveForOrder(ctx context.Context, orderID string, items []product.Reservation, now time.Time) ([]product.StockLevel, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	ts := now.UTC()
	levels := make([]product.StockLevel, 0, len(items))
	for _, it := range items {
		var inventory int
		err := tx.QueryRowContext(ctx, lockProductInventorySQL, it.ProductID).Scan(&inventory)
		if err == sql.ErrNoRows {
			_ = tx.Rollback()
			return nil, domain.ErrValidation(fmt.Sprintf("product %s not found", it.ProductID))
		}
		if err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		if inventory < it.Quantity {
			_ = tx.Rollback()
			return nil, domain.ErrValidation(fmt.Sprintf("insufficient inventory for %s", it.ProductID))
		}
		if _, err := tx.ExecContext(ctx, decrementInventorySQL, it.ProductID, it.Quantity, ts); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
		levels = append(levels, product.StockLevel{
			ProductID: it.ProductID,
			Before:    inventory,
			After:     inventory - it.Quantity,
		})
	}

	if _, err := tx.ExecContext(ctx, insertProcessedOrderSQL, orderID, ts); err != nil {
		_ = tx.Rollback()
		if isUniqueViolation(err) {
			return nil, product.ErrAlreadyProcessed
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit inventory reservation: %w", err)
	}
	return levels, nil
}
