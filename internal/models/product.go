package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Product struct {
	BaseModel
	Slug             string           `gorm:"uniqueIndex" json:"slug"`
	Name             string           `json:"name"`
	ShortDescription string           `json:"short_description"`
	LongDescription  string           `json:"long_description"`
	Price            float64          `json:"price"`
	DiscountPrice    *float64         `json:"discount_price"`
	Currency         string           `json:"currency"`
	Metal            string           `json:"metal"`
	Purity           string           `json:"purity"`
	Gemstone         string           `json:"gemstone"`
	WeightGrams      float64          `json:"weight_grams"`
	GenderAudience   string           `json:"gender_audience"`
	Occasions        pq.StringArray   `gorm:"type:text[]" json:"occasions"`
	Images           pq.StringArray   `gorm:"type:text[]" json:"images"`
	HeroImage        string           `json:"hero_image"`
	Stock            int              `json:"stock"`
	IsActive         bool             `json:"is_active"`
	RatingAverage    float64          `json:"rating_average"`
	RatingCount      int              `json:"rating_count"`
	CategoryID       *uuid.UUID       `gorm:"type:uuid" json:"category_id"`
	Category         *Category        `json:"category,omitempty"`
	CollectionID     *uuid.UUID       `gorm:"type:uuid" json:"collection_id"`
	Collection       *Collection      `json:"collection,omitempty"`
	Variants         []ProductVariant `json:"variants,omitempty"`
}

// ProductVariant is a purchasable size/option of a product. PriceAdjustment
// is added to the product unit price when the variant is selected.
type ProductVariant struct {
	BaseModel
	ProductID       uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	SKU             string    `json:"sku"`
	Label           string    `json:"label"`
	PriceAdjustment float64   `json:"price_adjustment"`
	Stock           int       `json:"stock"`
	IsActive        bool      `json:"is_active"`
}
