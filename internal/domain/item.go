package domain

import "time"

type Item struct {
	ID        int64     `db:"id" json:"id"`
	SKU       string    `db:"sku" json:"sku"`
	EAN       int64     `db:"ean" json:"ean"`
	Name      string    `db:"name" json:"name"`
	UOM       string    `db:"uom" json:"uom"`
	UnitPrice int64     `db:"unit_price" json:"unit_price"`
	Stock     int64     `db:"stock" json:"stock"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Available is stock minus reserved stock. Computed on read,
	// never persisted.
	Available int64 `db:"-" json:"available"`
}

type UpdateItemInput struct {
	EAN       *int64  `json:"ean"`
	Name      *string `json:"name"`
	UOM       *string `json:"uom"`
	UnitPrice *int64  `json:"unit_price"`
	Stock     *int64  `json:"stock"`
}
