package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrItemNotFound  = errors.New("cart item not found")
	ErrOrderNotFound = errors.New("order not found")
)

type Repository interface {
	ListItems(ctx context.Context, userID string) ([]Item, error)
	// AddItem merges quantities when the product is already in the cart.
	AddItem(ctx context.Context, it Item) (Item, error)
	RemoveItem(ctx context.Context, userID string, id uuid.UUID) error
}

type OrderRepository interface {
	// Create stores the order together with its lines.
	Create(ctx context.Context, o Order) error
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	AttachCheckoutSession(ctx context.Context, id uuid.UUID, sessionID string) error
	// Transition moves an order out of pending. It reports false when the
	// order was not pending.
	Transition(ctx context.Context, id uuid.UUID, to OrderStatus) (bool, error)
	// MarkPaid moves a pending order to paid and takes its lines out of the
	// owner's cart as one unit: either both happen or neither does. Quantity
	// added to the cart after checkout stays. It reports false when the order
	// was not pending.
	MarkPaid(ctx context.Context, id uuid.UUID) (bool, error)
}
