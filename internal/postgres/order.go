package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lcastillo/botilleria/internal/domain"
)

// OrderRepo persists finalized orders. Orders are written once per checkout;
// the idempotency key (derived from the payment authorization) makes the
// write safe to retry without duplicating the order.
type OrderRepo struct {
	pool *pgxpool.Pool
}

// NewOrderRepo creates an order repository.
func NewOrderRepo(pool *pgxpool.Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

const orderColumns = `id, order_number, status, items, subtotal_cents, delivery_fee_cents,
	total_cents, customer_name, customer_email, customer_phone, delivery_address,
	distance_km, invoice_type, tax_id, payment_intent_id, idempotency_key, created_at`

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var o domain.Order
	var items []byte
	var invoiceType string
	err := row.Scan(&o.ID, &o.Number, &o.Status, &items, &o.SubtotalCents, &o.DeliveryFeeCents,
		&o.TotalCents, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.DeliveryAddress,
		&o.DistanceKm, &invoiceType, &o.TaxID, &o.PaymentIntentID, &o.IdempotencyKey, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.InvoiceType = domain.InvoiceType(invoiceType)
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	return &o, nil
}

// Create inserts the order exactly once. A conflicting idempotency key means
// a previous attempt already persisted this order; the existing row is
// returned instead of an error so checkout retries converge.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) (*domain.Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to encode order items")
	}

	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO orders (id, order_number, status, items, subtotal_cents, delivery_fee_cents,
			total_cents, customer_name, customer_email, customer_phone, delivery_address,
			distance_km, invoice_type, tax_id, payment_intent_id, idempotency_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		o.ID, o.Number, o.Status, items, o.SubtotalCents, o.DeliveryFeeCents,
		o.TotalCents, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.DeliveryAddress,
		o.DistanceKm, string(o.InvoiceType), o.TaxID, o.PaymentIntentID, o.IdempotencyKey, o.CreatedAt)
	if err != nil {
		return nil, domain.Internal(err, "order.create", "failed to create order")
	}

	if tag.RowsAffected() == 0 {
		return r.GetByIdempotencyKey(ctx, o.IdempotencyKey)
	}
	return &o, nil
}

// GetByIdempotencyKey retrieves the order written for a given key.
func (r *OrderRepo) GetByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)

	o, err := scanOrder(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get_by_key", "failed to get order")
	}
	return o, nil
}

// Get retrieves one order by ID.
func (r *OrderRepo) Get(ctx context.Context, id string) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, domain.Internal(err, "order.get", "failed to get order")
	}
	return o, nil
}

// List returns orders newest first, capped at limit (default 100).
func (r *OrderRepo) List(ctx context.Context, limit int32) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, domain.Internal(err, "order.list", "failed to list orders")
	}
	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, domain.Internal(err, "order.list", "failed to scan order")
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// UpdateStatus advances the fulfillment status (admin only).
func (r *OrderRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return domain.Internal(err, "order.update_status", "failed to update order status")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

// NextOrderNumber reserves a sequential confirmation number.
func (r *OrderRepo) NextOrderNumber(ctx context.Context) (string, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT nextval('order_number_seq')`).Scan(&n); err != nil {
		return "", domain.Internal(err, "order.next_number", "failed to reserve order number")
	}
	return fmt.Sprintf("BOT-%06d", n), nil
}

// CountSince returns orders and revenue created at or after the cutoff.
// Used by the admin dashboard.
func (r *OrderRepo) CountSince(ctx context.Context, since time.Time) (int64, int64, error) {
	var count, revenue int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_cents), 0)
		FROM orders WHERE created_at >= $1 AND status <> $2`,
		since, domain.OrderStatusCancelled).Scan(&count, &revenue)
	if err != nil {
		return 0, 0, domain.Internal(err, "order.count_since", "failed to count orders")
	}
	return count, revenue, nil
}
