package pricing

import (
	"math"

	"github.com/example/lumina/internal/models"
)

// DefaultTaxRate is applied when no rate is configured.
const DefaultTaxRate = 0.10

// Totals is the result of a full pricing computation. Discount is the
// applied discount after clamping, never the requested one.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	DeliveryCharge float64 `json:"delivery_charge"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
}

// Round2 rounds a monetary amount to 2 decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotals derives tax and total from subtotal, discount and delivery
// charge. Negative inputs are clamped to zero and the discount is capped at
// the subtotal; out-of-range values are policy, not errors. The computation
// is deterministic: rounding happens only on the derived amounts.
func ComputeTotals(subtotal, discount, deliveryCharge, taxRate float64) Totals {
	subtotal = math.Max(subtotal, 0)
	discount = math.Max(discount, 0)
	deliveryCharge = math.Max(deliveryCharge, 0)

	if discount > subtotal {
		discount = subtotal
	}

	taxable := subtotal - discount + deliveryCharge
	tax := Round2(taxable * taxRate)
	total := Round2(subtotal - discount + deliveryCharge + tax)

	return Totals{
		Subtotal:       Round2(subtotal),
		Discount:       Round2(discount),
		DeliveryCharge: Round2(deliveryCharge),
		Tax:            tax,
		Total:          total,
	}
}

// CouponDiscount computes the discount amount a coupon yields on a subtotal.
// Percentage coupons take a share of the subtotal; fixed coupons are capped
// at the subtotal so the payable base never goes negative.
func CouponDiscount(discountType string, discountValue, subtotal float64) float64 {
	if subtotal <= 0 || discountValue <= 0 {
		return 0
	}

	switch discountType {
	case models.DiscountTypePercentage:
		return Round2(subtotal * discountValue / 100)
	case models.DiscountTypeFixed:
		return Round2(math.Min(discountValue, subtotal))
	default:
		return 0
	}
}

// UnitPrice returns the purchase-time unit price for a product and optional
// variant: the discount price when one is set below the list price, plus the
// variant adjustment.
func UnitPrice(product *models.Product, variant *models.ProductVariant) float64 {
	price := product.Price
	if product.DiscountPrice != nil && *product.DiscountPrice > 0 && *product.DiscountPrice < price {
		price = *product.DiscountPrice
	}
	if variant != nil {
		price += variant.PriceAdjustment
	}
	return Round2(math.Max(price, 0))
}
