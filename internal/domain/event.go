package domain

// Lifecycle events published through the transactional outbox.

type OrderLineEvent struct {
	ItemID int64 `json:"item_id"`
	Qty    int64 `json:"qty"`
}

type OrderPlacedEvent struct {
	OrderID    int64            `json:"order_id"`
	CustomerID int64            `json:"customer_id"`
	Lines      []OrderLineEvent `json:"lines"`
}

type OrderCancelledEvent struct {
	OrderID int64 `json:"order_id"`
}

// OrderClosedEvent carries the permanent stock deductions committed
// when the order was closed.
type OrderClosedEvent struct {
	OrderID    int64            `json:"order_id"`
	Deductions []OrderLineEvent `json:"deductions"`
}
