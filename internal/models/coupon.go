package models

import "time"

const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Coupon is an admin-managed discount code. Codes are stored uppercase and
// matched case-insensitively.
type Coupon struct {
	BaseModel
	Code          string    `gorm:"uniqueIndex" json:"code"`
	Description   string    `json:"description"`
	DiscountType  string    `json:"discount_type"`
	DiscountValue float64   `json:"discount_value"`
	MinOrderValue float64   `json:"min_order_value"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidUntil    time.Time `json:"valid_until"`
	UsageLimit    *int      `json:"usage_limit"`
	UsageCount    int       `json:"usage_count"`
	IsActive      bool      `json:"is_active"`
}
