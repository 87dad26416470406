package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lumina/internal/models"
)

func intPtr(v int) *int { return &v }

func testCoupon() *models.Coupon {
	return &models.Coupon{
		Code:          "FESTIVE20",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
		MinOrderValue: 500,
		ValidFrom:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidUntil:    time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
		IsActive:      true,
	}
}

func TestValidateCouponSuccess(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	applied, err := ValidateCoupon(testCoupon(), 1000, now)
	require.NoError(t, err)

	assert.Equal(t, "FESTIVE20", applied.Code)
	assert.Equal(t, models.DiscountTypePercentage, applied.DiscountType)
	assert.Equal(t, 200.0, applied.Discount)
}

func TestValidateCouponFailures(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("inactive reads as not found", func(t *testing.T) {
		c := testCoupon()
		c.IsActive = false
		_, err := ValidateCoupon(c, 1000, now)
		assertCouponError(t, err, CouponNotFound)
	})

	t.Run("not yet valid carries start date", func(t *testing.T) {
		c := testCoupon()
		c.ValidFrom = now.Add(24 * time.Hour)
		_, err := ValidateCoupon(c, 1000, now)
		ce := assertCouponError(t, err, CouponNotYetValid)
		assert.Equal(t, c.ValidFrom, ce.ValidFrom)
	})

	t.Run("expired carries end date", func(t *testing.T) {
		c := testCoupon()
		c.ValidUntil = now.Add(-time.Hour)
		_, err := ValidateCoupon(c, 1000, now)
		ce := assertCouponError(t, err, CouponExpired)
		assert.Equal(t, c.ValidUntil, ce.ValidUntil)
	})

	t.Run("below minimum carries shortfall", func(t *testing.T) {
		_, err := ValidateCoupon(testCoupon(), 320, now)
		ce := assertCouponError(t, err, CouponBelowMinimum)
		assert.Equal(t, 180.0, ce.Shortfall)
	})

	t.Run("usage exhausted", func(t *testing.T) {
		c := testCoupon()
		c.UsageLimit = intPtr(10)
		c.UsageCount = 10
		_, err := ValidateCoupon(c, 1000, now)
		assertCouponError(t, err, CouponUsageExhausted)
	})

	t.Run("checks short-circuit in order", func(t *testing.T) {
		// Expired and below minimum at once: the window check fires first.
		c := testCoupon()
		c.ValidUntil = now.Add(-time.Hour)
		_, err := ValidateCoupon(c, 100, now)
		assertCouponError(t, err, CouponExpired)
	})
}

func TestValidateCouponNeverMutatesUsage(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	c := testCoupon()
	c.UsageLimit = intPtr(5)
	c.UsageCount = 2

	for i := 0; i < 10; i++ {
		_, err := ValidateCoupon(c, 1000, now)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, c.UsageCount, "validation during live typing must not consume usage")
}

func TestNormalizeCouponCode(t *testing.T) {
	assert.Equal(t, "FESTIVE20", NormalizeCouponCode("  festive20 "))
	assert.Equal(t, "SAVE10", NormalizeCouponCode("Save10"))
}

func assertCouponError(t *testing.T, err error, kind CouponErrorKind) *CouponError {
	t.Helper()

	var ce *CouponError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, kind, ce.Kind)
	assert.NotEmpty(t, ce.Error())
	return ce
}
