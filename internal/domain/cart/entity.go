package cart

import (
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID         uuid.UUID
	UserID     string
	ProductID  string
	Name       string
	UnitAmount int64
	Quantity   int
	CreatedAt  time.Time
}

func (i Item) Subtotal() int64 {
	return i.UnitAmount * int64(i.Quantity)
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// Line is a cart row as captured on an order at checkout.
type Line struct {
	ProductID  string
	Quantity   int
	UnitAmount int64
}

type Order struct {
	ID                uuid.UUID
	UserID            string
	Status            OrderStatus
	AmountTotal       int64
	Currency          string
	CheckoutSessionID string
	Lines             []Line
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func LinesOf(items []Item) []Line {
	out := make([]Line, 0, len(items))
	for _, it := range items {
		out = append(out, Line{ProductID: it.ProductID, Quantity: it.Quantity, UnitAmount: it.UnitAmount})
	}
	return out
}

func Total(items []Item) int64 {
	var sum int64
	for _, it := range items {
		sum += it.Subtotal()
	}
	return sum
}
