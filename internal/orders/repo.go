package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"orange-brew/internal/apperr"
	"orange-brew/internal/catalog"
)

// Repo is the order ledger: orders, their line items and payments. Rows are
// append-mostly; nothing here ever deletes an order.
type Repo struct{ DB *pgxpool.Pool }

// CreateOrder persists the order, its items and the payment as one
// transaction. Any failure rolls the whole unit back.
func (r *Repo) CreateOrder(ctx context.Context, o *Order, p *Payment) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, order_type, status, total_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		o.UserID, string(o.OrderType), string(o.Status), o.TotalCents,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i := range o.Items {
		it := &o.Items[i]
		it.OrderID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, price_cents)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			it.OrderID, it.ProductID, it.Quantity, it.PriceCents,
		).Scan(&it.ID)
		if err != nil {
			return nil, err
		}
	}

	p.OrderID = o.ID
	err = tx.QueryRow(ctx, `
		INSERT INTO payments (user_id, order_id, amount_cents, method, status, receipt_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		p.UserID, p.OrderID, p.AmountCents, string(p.Method), string(p.Status), p.ReceiptURL,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetOrder(ctx, o.ID)
}

const orderCols = `o.id, o.user_id, o.order_type, o.status, o.total_cents, o.created_at, u.id, u.name, u.email`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var u UserSummary
	err := row.Scan(&o.ID, &o.UserID, (*string)(&o.OrderType), (*string)(&o.Status),
		&o.TotalCents, &o.CreatedAt, &u.ID, &u.Name, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, err
	}
	o.User = &u
	return &o, nil
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `
		SELECT `+orderCols+`
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`, id))
	if err != nil {
		return nil, err
	}
	out := []Order{*o}
	if err := r.attach(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

func (r *Repo) GetOrderStatus(ctx context.Context, id int64) (Status, int64, error) {
	var s string
	var owner int64
	err := r.DB.QueryRow(ctx, `SELECT status, user_id FROM orders WHERE id = $1`, id).Scan(&s, &owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", 0, apperr.NotFound("Order not found")
	}
	if err != nil {
		return "", 0, err
	}
	return Status(s), owner, nil
}

// ListOrders returns orders newest-first, with items, products, owner
// summary and payment attached. userID 0 means all users.
func (r *Repo) ListOrders(ctx context.Context, userID int64) ([]Order, error) {
	q := `SELECT ` + orderCols + `
		FROM orders o JOIN users u ON u.id = o.user_id`
	args := []any{}
	if userID != 0 {
		q += ` WHERE o.user_id = $1`
		args = append(args, userID)
	}
	q += ` ORDER BY o.created_at DESC, o.id DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attach(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attach loads line items (with product snapshots' products) and payments
// for the given orders in two queries.
func (r *Repo) attach(ctx context.Context, os []Order) error {
	if len(os) == 0 {
		return nil
	}
	ids := make([]int64, len(os))
	byID := make(map[int64]*Order, len(os))
	for i := range os {
		ids[i] = os[i].ID
		byID[os[i].ID] = &os[i]
	}

	rows, err := r.DB.Query(ctx, `
		SELECT i.id, i.order_id, i.product_id, i.quantity, i.price_cents,
		       p.id, p.name, p.price_cents, p.category, p.description, p.image, p.created_at
		FROM order_items i JOIN products p ON p.id = i.product_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var it OrderItem
		var p catalog.Product
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.PriceCents,
			&p.ID, &p.Name, &p.PriceCents, &p.Category, &p.Description, &p.Image, &p.CreatedAt); err != nil {
			return err
		}
		it.Product = &p
		if o := byID[it.OrderID]; o != nil {
			o.Items = append(o.Items, it)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	prows, err := r.DB.Query(ctx, `
		SELECT id, user_id, order_id, amount_cents, method, status, receipt_url, created_at
		FROM payments WHERE order_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	defer prows.Close()
	for prows.Next() {
		var p Payment
		if err := prows.Scan(&p.ID, &p.UserID, &p.OrderID, &p.AmountCents,
			(*string)(&p.Method), (*string)(&p.Status), &p.ReceiptURL, &p.CreatedAt); err != nil {
			return err
		}
		if o := byID[p.OrderID]; o != nil {
			cp := p
			o.Payment = &cp
		}
	}
	return prows.Err()
}

func (r *Repo) UpdateOrderStatus(ctx context.Context, id int64, status Status) (*Order, error) {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() == 0 {
		return nil, apperr.NotFound("Order not found")
	}
	return r.GetOrder(ctx, id)
}

func (r *Repo) GetPayment(ctx context.Context, id int64) (*Payment, error) {
	var p Payment
	err := r.DB.QueryRow(ctx, `
		SELECT id, user_id, order_id, amount_cents, method, status, receipt_url, created_at
		FROM payments WHERE id = $1`, id).
		Scan(&p.ID, &p.UserID, &p.OrderID, &p.AmountCents,
			(*string)(&p.Method), (*string)(&p.Status), &p.ReceiptURL, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Payment not found")
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SetPaymentStatus updates the payment and, when orderStatus is set, the
// parent order in the same transaction. The order update is guarded on
// PENDING so a confirmation can never resurrect a cancelled order.
func (r *Repo) SetPaymentStatus(ctx context.Context, id int64, status PaymentStatus, orderStatus *Status) (*Payment, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var p Payment
	err = tx.QueryRow(ctx, `
		UPDATE payments SET status = $2 WHERE id = $1
		RETURNING id, user_id, order_id, amount_cents, method, status, receipt_url, created_at`,
		id, string(status)).
		Scan(&p.ID, &p.UserID, &p.OrderID, &p.AmountCents,
			(*string)(&p.Method), (*string)(&p.Status), &p.ReceiptURL, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Payment not found")
	}
	if err != nil {
		return nil, err
	}

	if orderStatus != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE orders SET status = $2 WHERE id = $1 AND status = $3`,
			p.OrderID, string(*orderStatus), string(StatusPending)); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &p, nil
}
