package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"marketplace-delivery/internal/apperr"
	"marketplace-delivery/internal/domain"
)

// OrderRepo stores orders and their courier jobs.
type OrderRepo struct {
	db *pgxpool.Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(db *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{db: db}
}

// Save writes the order and all its courier jobs in one transaction.
func (r *OrderRepo) Save(ctx context.Context, o *domain.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("encode shipping address: %w", err)
	}
	coords, err := json.Marshal(o.DeliveryCoordinates)
	if err != nil {
		return fmt.Errorf("encode coordinates: %w", err)
	}
	vendors := o.VendorDeliveries
	if vendors == nil {
		vendors = []domain.VendorDelivery{}
	}
	deliveries, err := json.Marshal(vendors)
	if err != nil {
		return fmt.Errorf("encode vendor deliveries: %w", err)
	}

	return r.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (
				id, transaction_id, user_id, items, shipping_address, delivery_coordinates,
				payment_status, delivery_method, delivery_fee, is_multi_vendor, vendor_deliveries, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CAST($9 AS TEXT)::numeric, $10, $11, $12)
		`, o.ID, o.TransactionID, o.UserID, items, shipping, coords,
			o.PaymentStatus, string(o.DeliveryMethod), o.DeliveryFee.String(), o.IsMultiVendor, deliveries, o.CreatedAt)
		if err != nil {
			if IsDuplicate(err) {
				return fmt.Errorf("insert order %s: %w", o.ID, ErrDuplicateOrder)
			}
			return fmt.Errorf("insert order %s: %w", o.ID, err)
		}

		if len(o.CourierJobs) == 0 {
			return nil
		}

		batch := &pgx.Batch{}
		for _, j := range o.CourierJobs {
			urls, err := json.Marshal(nonNil(j.TrackingURLs))
			if err != nil {
				return fmt.Errorf("encode tracking urls: %w", err)
			}
			batch.Queue(`
				INSERT INTO courier_jobs (
					job_id, order_id, vendor_id, name, status, status_description,
					payment_amount, tracking_urls, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, CAST($7 AS TEXT)::numeric, $8, $9, $10)
			`, j.JobID, o.ID, j.VendorID, j.Name, j.Status, j.StatusDescription,
				j.PaymentAmount.String(), urls, j.CreatedAt, j.UpdatedAt)
		}

		br := tx.SendBatch(ctx, batch)
		for range o.CourierJobs {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("insert courier job: %w", err)
			}
		}
		return br.Close()
	})
}

// GetByID loads an order with its courier jobs.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, transaction_id, user_id, items, shipping_address, delivery_coordinates,
		       payment_status, delivery_method, delivery_fee::text, is_multi_vendor,
		       vendor_deliveries, created_at
		FROM orders
		WHERE id = $1
	`, id)

	var (
		o                                   domain.Order
		items, shipping, coords, deliveries []byte
		method, fee                         string
	)
	if err := row.Scan(&o.ID, &o.TransactionID, &o.UserID, &items, &shipping, &coords,
		&o.PaymentStatus, &method, &fee, &o.IsMultiVendor, &deliveries, &o.CreatedAt); err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("order %q: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("get order %q: %w", id, err)
	}

	o.DeliveryMethod = domain.DeliveryMethod(method)
	var err error
	if o.DeliveryFee, err = decimal.NewFromString(fee); err != nil {
		return nil, fmt.Errorf("decode delivery fee: %w", err)
	}
	for _, f := range []struct {
		name string
		raw  []byte
		dst  any
	}{
		{"items", items, &o.Items},
		{"shipping address", shipping, &o.ShippingAddress},
		{"coordinates", coords, &o.DeliveryCoordinates},
		{"vendor deliveries", deliveries, &o.VendorDeliveries},
	} {
		if err := json.Unmarshal(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("decode %s: %w", f.name, err)
		}
	}

	jobs, err := r.jobsOf(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	if len(jobs) > 0 {
		o.CourierJobs = jobs
	}
	return &o, nil
}

// UpdateJobStatus changes only the status columns of a courier job.
// A write older than the stored updated_at is ignored. It reports false
// when the job is unknown.
func (r *OrderRepo) UpdateJobStatus(ctx context.Context, jobID, status, description string, at time.Time) (bool, error) {
	ct, err := r.db.Exec(ctx, `
		UPDATE courier_jobs
		SET status = $2, status_description = $3, updated_at = $4
		WHERE job_id = $1 AND updated_at <= $4
	`, jobID, status, description, at)
	if err != nil {
		return false, fmt.Errorf("update courier job %q status: %w", jobID, err)
	}
	if ct.RowsAffected() > 0 {
		return true, nil
	}

	// строка не обновлена: либо работы нет, либо запись устарела
	var known bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM courier_jobs WHERE job_id = $1)
	`, jobID).Scan(&known); err != nil {
		return false, fmt.Errorf("check courier job %q: %w", jobID, err)
	}
	return known, nil
}

// MarkChecked records that the given jobs were just reconciled, whatever the outcome.
func (r *OrderRepo) MarkChecked(ctx context.Context, jobIDs []string, at time.Time) error {
	if len(jobIDs) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, `
		UPDATE courier_jobs SET checked_at = $2 WHERE job_id = ANY($1)
	`, jobIDs, at); err != nil {
		return fmt.Errorf("mark %d courier jobs checked: %w", len(jobIDs), err)
	}
	return nil
}

// ListOpenJobs returns up to limit jobs in a non-terminal status, least recently checked first.
// Jobs never checked come before all others.
func (r *OrderRepo) ListOpenJobs(ctx context.Context, limit int) ([]domain.CourierJob, error) {
	rows, err := r.db.Query(ctx, selectJobs+`
		WHERE lower(status) NOT IN ($1, $2, $3)
		ORDER BY checked_at ASC NULLS FIRST, job_id ASC
		LIMIT $4
	`, domain.JobStatusCompleted, domain.JobStatusFinished, domain.JobStatusCanceled, limit)
	if err != nil {
		return nil, fmt.Errorf("list open courier jobs: %w", err)
	}
	return collectJobs(rows)
}

func (r *OrderRepo) jobsOf(ctx context.Context, orderID string) ([]domain.CourierJob, error) {
	rows, err := r.db.Query(ctx, selectJobs+`
		WHERE order_id = $1
		ORDER BY created_at ASC, job_id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list jobs of order %q: %w", orderID, err)
	}
	return collectJobs(rows)
}

const selectJobs = `
	SELECT job_id, order_id, vendor_id, name, status, status_description,
	       payment_amount::text, tracking_urls, created_at, updated_at
	FROM courier_jobs`

func collectJobs(rows pgx.Rows) ([]domain.CourierJob, error) {
	jobs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CourierJob, error) {
		var (
			j      domain.CourierJob
			amount string
			urls   []byte
		)
		if err := row.Scan(&j.JobID, &j.OrderID, &j.VendorID, &j.Name, &j.Status, &j.StatusDescription,
			&amount, &urls, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return j, err
		}
		var err error
		if j.PaymentAmount, err = decimal.NewFromString(amount); err != nil {
			return j, fmt.Errorf("decode payment amount: %w", err)
		}
		if err := json.Unmarshal(urls, &j.TrackingURLs); err != nil {
			return j, fmt.Errorf("decode tracking urls: %w", err)
		}
		return j, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan courier jobs: %w", err)
	}
	return jobs, nil
}

// withTx opens a transaction and executes fn within it.
func (r *OrderRepo) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	// откатываем в случае паники
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback tx: %w (original error: %s)", rbErr, err.Error())
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
