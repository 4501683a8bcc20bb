package postgres

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/xenking/posify/internal/domain/order"
	"github.com/xenking/posify/internal/domain/pos"
)

var _ pos.Repository = (*Repository)(nil)

// Repository implements pos.Repository backed by PostgreSQL. Saving the
// order snapshot also upserts one row per order into pos_order_totals in
// the same transaction.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a Repository that uses the given pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Load implements pos.Repository.
func (r *Repository) Load(ctx context.Context, key pos.Key) ([]byte, error) {
	var data []byte
	err := r.pool.QueryRow(ctx, `SELECT data FROM pos_snapshots WHERE key = $1`, string(key)).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, pos.ErrNoSnapshot
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load snapshot %q", key)
	}
	return data, nil
}

const upsertSnapshot = `
INSERT INTO pos_snapshots (key, data, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

const upsertOrderTotals = `
INSERT INTO pos_order_totals (
    order_id, status, order_type, payment_status,
    subtotal, service_charge, tax, total, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (order_id) DO UPDATE SET
    status = EXCLUDED.status,
    payment_status = EXCLUDED.payment_status,
    updated_at = EXCLUDED.updated_at`

// Save implements pos.Repository.
func (r *Repository) Save(ctx context.Context, key pos.Key, data []byte) error {
	var orders []order.Order
	if key == pos.KeyOrders {
		if err := json.Unmarshal(data, &orders); err != nil {
			return errors.Wrap(err, "decode orders")
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// JSONB accepts the raw document as text.
	if _, err := tx.Exec(ctx, upsertSnapshot, string(key), string(data)); err != nil {
		return errors.Wrapf(err, "save snapshot %q", key)
	}

	if len(orders) > 0 {
		batch := &pgx.Batch{}
		for _, o := range orders {
			batch.Queue(upsertOrderTotals,
				o.ID, string(o.Status), string(o.Type), string(o.PaymentStatus),
				o.Subtotal, o.ServiceCharge, o.Tax, o.Total, o.CreatedAt, o.UpdatedAt,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errors.Wrap(err, "upsert order totals")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// StatusTotal is the number and value of orders in one status.
type StatusTotal struct {
	Status  order.Status
	Orders  int
	Revenue decimal.Decimal
}

// TotalsByStatus aggregates the order ledger for orders created at or after
// since.
func (r *Repository) TotalsByStatus(ctx context.Context, since time.Time) ([]StatusTotal, error) {
	rows, err := r.pool.Query(ctx, `
SELECT status, count(*), COALESCE(sum(total), 0)
FROM pos_order_totals
WHERE created_at >= $1
GROUP BY status
ORDER BY status`, since)
	if err != nil {
		return nil, errors.Wrap(err, "query order totals")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (StatusTotal, error) {
		var (
			st     StatusTotal
			status string
		)
		if err := row.Scan(&status, &st.Orders, &st.Revenue); err != nil {
			return StatusTotal{}, err
		}
		st.Status = order.Status(status)
		return st, nil
	})
}
