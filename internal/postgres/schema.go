package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Bootstrap creates the tables on first run. Idempotent; the schema is small
// enough that CREATE IF NOT EXISTS beats carrying a migration tool.
func Bootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            BIGSERIAL PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role          TEXT NOT NULL DEFAULT 'USER',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			price_cents BIGINT NOT NULL CHECK (price_cents > 0),
			category    TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			image       TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id          BIGSERIAL PRIMARY KEY,
			user_id     BIGINT NOT NULL REFERENCES users(id),
			order_type  TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'PENDING',
			total_cents BIGINT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			id          BIGSERIAL PRIMARY KEY,
			order_id    BIGINT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id  BIGINT NOT NULL REFERENCES products(id),
			quantity    INT NOT NULL CHECK (quantity > 0),
			price_cents BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id           BIGSERIAL PRIMARY KEY,
			user_id      BIGINT NOT NULL REFERENCES users(id),
			order_id     BIGINT NOT NULL UNIQUE REFERENCES orders(id),
			amount_cents BIGINT NOT NULL,
			method       TEXT NOT NULL,
			status       TEXT NOT NULL DEFAULT 'PENDING',
			receipt_url  TEXT,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders (user_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
	}
	for _, q := range stmts {
		if _, err := pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
