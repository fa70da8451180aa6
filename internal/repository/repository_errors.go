package repository

import "errors"

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrLineNotFound     = errors.New("order line not found")
	ErrItemNotFound     = errors.New("item not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrSKUExists        = errors.New("the provided SKU already exists")
	ErrStockDepleted    = errors.New("stock would go negative")
)
