package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lumina/internal/models"
)

func TestComputeTotalsBasics(t *testing.T) {
	tests := []struct {
		name     string
		subtotal float64
		discount float64
		delivery float64
		want     Totals
	}{
		{
			name:     "no discount no delivery",
			subtotal: 1000,
			want:     Totals{Subtotal: 1000, Tax: 100, Total: 1100},
		},
		{
			name:     "twenty percent off",
			subtotal: 1000,
			discount: 200,
			want:     Totals{Subtotal: 1000, Discount: 200, Tax: 80, Total: 880},
		},
		{
			name:     "discount capped at subtotal",
			subtotal: 500,
			discount: 1000,
			delivery: 50,
			want:     Totals{Subtotal: 500, Discount: 500, DeliveryCharge: 50, Tax: 5, Total: 55},
		},
		{
			name:     "delivery charge is taxed",
			subtotal: 100,
			delivery: 40,
			want:     Totals{Subtotal: 100, DeliveryCharge: 40, Tax: 14, Total: 154},
		},
		{
			name: "zero everything",
			want: Totals{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.subtotal, tt.discount, tt.delivery, DefaultTaxRate)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeTotalsInvariants(t *testing.T) {
	cases := []struct{ subtotal, discount, delivery float64 }{
		{0, 0, 0},
		{1, 0, 0},
		{999.99, 100.5, 49.5},
		{1500, 1500, 0},
		{1500, 2500, 120},
		{0.01, 0.02, 0.03},
		{123456.78, 9876.54, 199},
	}

	for _, c := range cases {
		got := ComputeTotals(c.subtotal, c.discount, c.delivery, DefaultTaxRate)

		assert.GreaterOrEqual(t, got.Total, 0.0)
		assert.LessOrEqual(t, got.Discount, got.Subtotal)
		assert.InDelta(t, (got.Subtotal-got.Discount+got.DeliveryCharge)*DefaultTaxRate, got.Tax, 0.005)
		assert.InDelta(t, got.Subtotal-got.Discount+got.DeliveryCharge+got.Tax, got.Total, 0.005)
	}
}

func TestComputeTotalsDeterministic(t *testing.T) {
	first := ComputeTotals(1234.56, 78.9, 45.67, DefaultTaxRate)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, ComputeTotals(1234.56, 78.9, 45.67, DefaultTaxRate))
	}
}

func TestComputeTotalsMonotonicity(t *testing.T) {
	base := ComputeTotals(1000, 100, 0, DefaultTaxRate)

	withDelivery := ComputeTotals(1000, 100, 60, DefaultTaxRate)
	assert.Greater(t, withDelivery.Total, base.Total, "non-zero delivery must increase total")

	moreDiscount := ComputeTotals(1000, 300, 0, DefaultTaxRate)
	assert.Less(t, moreDiscount.Total, base.Total, "larger discount must decrease total")

	// Once the discount is capped, increasing it further changes nothing.
	capped := ComputeTotals(500, 600, 0, DefaultTaxRate)
	cappedMore := ComputeTotals(500, 900, 0, DefaultTaxRate)
	assert.Equal(t, capped, cappedMore)
}

func TestComputeTotalsClampsNegativeInputs(t *testing.T) {
	got := ComputeTotals(-100, -50, -20, DefaultTaxRate)
	assert.Equal(t, Totals{}, got)
}

func TestCouponDiscount(t *testing.T) {
	assert.Equal(t, 200.0, CouponDiscount(models.DiscountTypePercentage, 20, 1000))
	assert.Equal(t, 500.0, CouponDiscount(models.DiscountTypeFixed, 1000, 500), "fixed discount capped at subtotal")
	assert.Equal(t, 150.0, CouponDiscount(models.DiscountTypeFixed, 150, 900))
	assert.Equal(t, 0.0, CouponDiscount(models.DiscountTypePercentage, 10, 0))
	assert.Equal(t, 0.0, CouponDiscount("unknown", 10, 1000))
}

func TestCouponDiscountScenario(t *testing.T) {
	// A fixed 1000 coupon on a 500 subtotal leaves a zero taxable base plus delivery.
	discount := CouponDiscount(models.DiscountTypeFixed, 1000, 500)
	require.Equal(t, 500.0, discount)

	got := ComputeTotals(500, discount, 80, DefaultTaxRate)
	assert.Equal(t, 8.0, got.Tax)
	assert.Equal(t, 88.0, got.Total)
}

func TestUnitPrice(t *testing.T) {
	lower := 800.0
	higher := 1200.0

	product := &models.Product{Price: 1000}
	assert.Equal(t, 1000.0, UnitPrice(product, nil))

	product.DiscountPrice = &lower
	assert.Equal(t, 800.0, UnitPrice(product, nil), "lower discount price wins")

	product.DiscountPrice = &higher
	assert.Equal(t, 1000.0, UnitPrice(product, nil), "higher discount price is ignored")

	product.DiscountPrice = &lower
	variant := &models.ProductVariant{PriceAdjustment: 150}
	assert.Equal(t, 950.0, UnitPrice(product, variant))
}
