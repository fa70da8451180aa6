package domain

import (
	"errors"
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPlaced     OrderStatus = "placed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusClosed     OrderStatus = "closed"
)

var (
	ErrInvalidFilledQty  = errors.New("filled quantity out of range")
	ErrInvalidQty        = errors.New("quantity must be positive")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrStateConflict     = errors.New("illegal order status transition")
	ErrOrderNotFulfilled = errors.New("order not fully fulfilled")
	ErrEmptyCart         = errors.New("cart is empty")
)

type Order struct {
	ID         int64       `db:"id" json:"id"`
	CustomerID int64       `db:"customer_id" json:"customer_id"`
	Status     OrderStatus `db:"status" json:"status"`
	Address    string      `db:"address" json:"address"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	Lines      []Line      `db:"lines" json:"lines"`
}

type Line struct {
	ID        int64 `db:"id" json:"id"`
	OrderID   int64 `db:"order_id" json:"order_id"`
	ItemID    int64 `db:"item_id" json:"item_id"`
	Qty       int64 `db:"qty" json:"qty"`
	FilledQty int64 `db:"filled_qty" json:"filled_qty"`
}

func ParseStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderStatusPlaced, OrderStatusProcessing, OrderStatusCancelled, OrderStatusClosed:
		return OrderStatus(s), nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

// CanTransition reports whether from -> to is a legal move. Cancelled
// and closed are terminal; self transitions are rejected.
func CanTransition(from, to OrderStatus) bool {
	switch from {
	case OrderStatusPlaced:
		return to == OrderStatusProcessing || to == OrderStatusCancelled
	case OrderStatusProcessing:
		return to == OrderStatusClosed
	default:
		return false
	}
}

// FullyFulfilled reports whether every line has been filled to its
// requested quantity, the precondition for closing the order.
func (o *Order) FullyFulfilled() bool {
	for _, l := range o.Lines {
		if l.FilledQty != l.Qty {
			return false
		}
	}
	return true
}

// ValidateFill checks the requested cumulative fill against the fixed
// line quantity.
func (l *Line) ValidateFill(newFilledQty int64) error {
	if newFilledQty < 0 || newFilledQty > l.Qty {
		return ErrInvalidFilledQty
	}
	return nil
}
