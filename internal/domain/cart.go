package domain

import "time"

type CartItem struct {
	ID         int64     `db:"id" json:"id"`
	CustomerID int64     `db:"customer_id" json:"customer_id"`
	ItemID     int64     `db:"item_id" json:"item_id"`
	Qty        int64     `db:"qty" json:"qty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
