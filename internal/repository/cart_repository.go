package repository

import (
	"context"
	"errors"
	"strings"

	"careerconnect/internal/database"
	"careerconnect/internal/domain/cart"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PostgresCartRepository struct {
	db database.DB
}

func NewPostgresCartRepository(db database.DB) *PostgresCartRepository {
	return &PostgresCartRepository{db: db}
}

func (r *PostgresCartRepository) ListItems(ctx context.Context, userID string) ([]cart.Item, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, user_id, product_id, name, unit_amount, quantity, created_at
FROM cart_items
WHERE user_id = $1
ORDER BY created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cart.Item, 0)
	for rows.Next() {
		var it cart.Item
		if err := rows.Scan(&it.ID, &it.UserID, &it.ProductID, &it.Name, &it.UnitAmount, &it.Quantity, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresCartRepository) AddItem(ctx context.Context, it cart.Item) (cart.Item, error) {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	it.ProductID = strings.TrimSpace(it.ProductID)

	err := r.db.QueryRow(ctx, `
INSERT INTO cart_items (id, user_id, product_id, name, unit_amount, quantity)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id, product_id) DO UPDATE
SET quantity = cart_items.quantity + EXCLUDED.quantity,
    name = EXCLUDED.name,
    unit_amount = EXCLUDED.unit_amount
RETURNING id, quantity, created_at`,
		it.ID, it.UserID, it.ProductID, it.Name, it.UnitAmount, it.Quantity,
	).Scan(&it.ID, &it.Quantity, &it.CreatedAt)
	if err != nil {
		return cart.Item{}, err
	}
	return it, nil
}

func (r *PostgresCartRepository) RemoveItem(ctx context.Context, userID string, id uuid.UUID) error {
	n, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return cart.ErrItemNotFound
	}
	return nil
}

type PostgresOrderRepository struct {
	db database.DB
}

func NewPostgresOrderRepository(db database.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

func (r *PostgresOrderRepository) Create(ctx context.Context, o cart.Order) error {
	return database.InTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `
INSERT INTO orders (id, user_id, status, amount_total, currency)
VALUES ($1, $2, $3, $4, $5)`,
			o.ID, o.UserID, string(o.Status), o.AmountTotal, o.Currency,
		); err != nil {
			return err
		}
		for _, l := range o.Lines {
			if _, err := tx.Exec(ctx, `
INSERT INTO order_lines (order_id, product_id, quantity, unit_amount)
VALUES ($1, $2, $3, $4)`,
				o.ID, l.ProductID, l.Quantity, l.UnitAmount,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (cart.Order, error) {
	var (
		o      cart.Order
		status string
		sessID *string
	)
	err := r.db.QueryRow(ctx, `
SELECT id, user_id, status, amount_total, currency, checkout_session_id, created_at, updated_at
FROM orders
WHERE id = $1`, id).Scan(&o.ID, &o.UserID, &status, &o.AmountTotal, &o.Currency, &sessID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart.Order{}, cart.ErrOrderNotFound
		}
		return cart.Order{}, err
	}
	o.Status = cart.OrderStatus(status)
	if sessID != nil {
		o.CheckoutSessionID = *sessID
	}
	return o, nil
}

func (r *PostgresOrderRepository) AttachCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	n, err := r.db.Exec(ctx, `UPDATE orders SET checkout_session_id = $2, updated_at = now() WHERE id = $1`, id, sessionID)
	if err != nil {
		return err
	}
	if n == 0 {
		return cart.ErrOrderNotFound
	}
	return nil
}

func (r *PostgresOrderRepository) Transition(ctx context.Context, id uuid.UUID, to cart.OrderStatus) (bool, error) {
	n, err := r.db.Exec(ctx, `
UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3`, id, string(to), string(cart.OrderPending))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID) (bool, error) {
	moved := false
	err := database.InTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx, `
UPDATE orders SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3`, id, string(cart.OrderPaid), string(cart.OrderPending))
		if err != nil || n == 0 {
			return err
		}

		// Rows fully covered by the order go first; what is left had more
		// quantity added after checkout and only loses the ordered amount.
		if _, err := tx.Exec(ctx, `
DELETE FROM cart_items c
USING order_lines l, orders o
WHERE l.order_id = $1 AND o.id = l.order_id
  AND c.user_id = o.user_id AND c.product_id = l.product_id
  AND c.quantity <= l.quantity`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
UPDATE cart_items c
SET quantity = c.quantity - l.quantity
FROM order_lines l, orders o
WHERE l.order_id = $1 AND o.id = l.order_id
  AND c.user_id = o.user_id AND c.product_id = l.product_id`, id); err != nil {
			return err
		}
		moved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

var (
	_ cart.Repository      = (*PostgresCartRepository)(nil)
	_ cart.OrderRepository = (*PostgresOrderRepository)(nil)
)
