package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the order store tables. Orders are stored document-style:
// nested values live in JSONB columns, courier jobs get their own rows so
// status updates touch only them.
const Schema = `
CREATE TABLE IF NOT EXISTS orders (
	id                   TEXT PRIMARY KEY,
	transaction_id       TEXT NOT NULL,
	user_id              TEXT NOT NULL,
	items                JSONB NOT NULL,
	shipping_address     JSONB NOT NULL,
	delivery_coordinates JSONB NOT NULL,
	payment_status       TEXT NOT NULL,
	delivery_method      TEXT NOT NULL,
	delivery_fee         NUMERIC(12, 2) NOT NULL,
	is_multi_vendor      BOOLEAN NOT NULL DEFAULT false,
	vendor_deliveries    JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS courier_jobs (
	job_id             TEXT PRIMARY KEY,
	order_id           TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
	vendor_id          TEXT NOT NULL,
	name               TEXT NOT NULL DEFAULT '',
	status             TEXT NOT NULL DEFAULT '',
	status_description TEXT NOT NULL DEFAULT '',
	payment_amount     NUMERIC(12, 2) NOT NULL DEFAULT 0,
	tracking_urls      JSONB NOT NULL DEFAULT '[]'::jsonb,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	checked_at         TIMESTAMPTZ
);

ALTER TABLE courier_jobs ADD COLUMN IF NOT EXISTS checked_at TIMESTAMPTZ;

CREATE INDEX IF NOT EXISTS courier_jobs_order_id_idx ON courier_jobs (order_id);
CREATE INDEX IF NOT EXISTS courier_jobs_status_idx ON courier_jobs (lower(status));
CREATE INDEX IF NOT EXISTS courier_jobs_checked_at_idx ON courier_jobs (checked_at NULLS FIRST);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
