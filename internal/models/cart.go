package models

import "github.com/google/uuid"

// CartItem is a row in the persistent shopping cart. Buy-now checkout
// sessions never read or write these rows.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID       `gorm:"type:uuid;index" json:"user_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;index" json:"product_id"`
	Product   *Product        `json:"product,omitempty"`
	VariantID *uuid.UUID      `gorm:"type:uuid" json:"variant_id"`
	Variant   *ProductVariant `json:"variant,omitempty"`
	Quantity  int             `json:"quantity"`
}
