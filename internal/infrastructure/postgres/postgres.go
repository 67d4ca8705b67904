// Package postgres implements the participant repos over database/sql with
// the lib/pq driver. All idempotency-critical writes run inside a single
// transaction; unique indexes serialize concurrent duplicates.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// EnsureSchema creates the tables the repos need. Dev convenience; real
// deployments run migrations out of band.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaSQL)
	return err
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS orders (
  id           TEXT PRIMARY KEY,
  user_id      TEXT NOT NULL,
  total_amount NUMERIC(12,2) NOT NULL,
  status       TEXT NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL,
  updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS order_items (
  order_id   TEXT NOT NULL REFERENCES orders(id),
  product_id TEXT NOT NULL,
  quantity   INT NOT NULL,
  price      NUMERIC(12,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
  id              TEXT PRIMARY KEY,
  order_id        TEXT NOT NULL UNIQUE,
  amount          NUMERIC(12,2) NOT NULL,
  status          TEXT NOT NULL,
  idempotency_key TEXT,
  failure_reason  TEXT NOT NULL DEFAULT '',
  created_at      TIMESTAMPTZ NOT NULL,
  updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS products (
  id          TEXT PRIMARY KEY,
  name        TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  category    TEXT NOT NULL DEFAULT '',
  price       NUMERIC(12,2) NOT NULL,
  inventory   INT NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL,
  updated_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS processed_orders (
  order_id   TEXT PRIMARY KEY,
  created_at TIMESTAMPTZ NOT NULL
);
`
