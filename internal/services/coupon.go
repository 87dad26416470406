package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/example/lumina/internal/models"
	"github.com/example/lumina/internal/pricing"
)

// CouponErrorKind discriminates coupon validation failures.
type CouponErrorKind string

const (
	CouponNotFound       CouponErrorKind = "not_found"
	CouponNotYetValid    CouponErrorKind = "not_yet_valid"
	CouponExpired        CouponErrorKind = "expired"
	CouponBelowMinimum   CouponErrorKind = "below_minimum"
	CouponUsageExhausted CouponErrorKind = "usage_exhausted"
)

// CouponError carries the data needed to render an actionable message for
// each failure kind.
type CouponError struct {
	Kind       CouponErrorKind
	Code       string
	ValidFrom  time.Time
	ValidUntil time.Time
	Shortfall  float64
}

func (e *CouponError) Error() string {
	switch e.Kind {
	case CouponNotFound:
		return fmt.Sprintf("coupon %s not found", e.Code)
	case CouponNotYetValid:
		return fmt.Sprintf("coupon %s is not valid before %s", e.Code, e.ValidFrom.Format(time.RFC3339))
	case CouponExpired:
		return fmt.Sprintf("coupon %s expired at %s", e.Code, e.ValidUntil.Format(time.RFC3339))
	case CouponBelowMinimum:
		return fmt.Sprintf("order is %.2f short of the minimum for coupon %s", e.Shortfall, e.Code)
	case CouponUsageExhausted:
		return fmt.Sprintf("coupon %s has reached its usage limit", e.Code)
	default:
		return fmt.Sprintf("coupon %s rejected", e.Code)
	}
}

// AppliedCoupon is the successful validation result. Discount is the amount
// the coupon yields on the given subtotal.
type AppliedCoupon struct {
	Code          string  `json:"code"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	Discount      float64 `json:"discount"`
}

// NormalizeCouponCode uppercases and trims a user-supplied code.
func NormalizeCouponCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidateCoupon runs the ordered checks against a coupon snapshot,
// short-circuiting on the first failure. It never mutates usage counts;
// redemption happens once per completed order via Redeem.
func ValidateCoupon(c *models.Coupon, subtotal float64, now time.Time) (AppliedCoupon, error) {
	code := NormalizeCouponCode(c.Code)

	if !c.IsActive {
		return AppliedCoupon{}, &CouponError{Kind: CouponNotFound, Code: code}
	}
	if now.Before(c.ValidFrom) {
		return AppliedCoupon{}, &CouponError{Kind: CouponNotYetValid, Code: code, ValidFrom: c.ValidFrom}
	}
	if now.After(c.ValidUntil) {
		return AppliedCoupon{}, &CouponError{Kind: CouponExpired, Code: code, ValidUntil: c.ValidUntil}
	}
	if subtotal < c.MinOrderValue {
		return AppliedCoupon{}, &CouponError{
			Kind:      CouponBelowMinimum,
			Code:      code,
			Shortfall: pricing.Round2(c.MinOrderValue - subtotal),
		}
	}
	if c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit {
		return AppliedCoupon{}, &CouponError{Kind: CouponUsageExhausted, Code: code}
	}

	return AppliedCoupon{
		Code:          code,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		Discount:      pricing.CouponDiscount(c.DiscountType, c.DiscountValue, subtotal),
	}, nil
}

// CouponService validates and redeems coupons against the database.
type CouponService struct {
	db *gorm.DB
}

// NewCouponService constructs CouponService.
func NewCouponService(db *gorm.DB) *CouponService {
	return &CouponService{db: db}
}

// Validate looks up an active coupon by code and runs the snapshot checks.
func (s *CouponService) Validate(code string, subtotal float64, now time.Time) (AppliedCoupon, error) {
	normalized := NormalizeCouponCode(code)

	var coupon models.Coupon
	err := s.db.First(&coupon, "code = ?", normalized).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return AppliedCoupon{}, &CouponError{Kind: CouponNotFound, Code: normalized}
	}
	if err != nil {
		return AppliedCoupon{}, fmt.Errorf("coupon lookup: %w", err)
	}

	return ValidateCoupon(&coupon, subtotal, now)
}

// FindEligible returns up to limit active coupons a given subtotal qualifies
// for right now. It is a standalone query, independent of validation.
func (s *CouponService) FindEligible(subtotal float64, now time.Time, limit int) ([]models.Coupon, error) {
	if limit <= 0 {
		limit = 3
	}

	var coupons []models.Coupon
	err := s.db.
		Where("is_active = ?", true).
		Where("valid_from <= ? AND valid_until >= ?", now, now).
		Where("min_order_value <= ?", subtotal).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		Limit(limit).
		Find(&coupons).Error
	if err != nil {
		return nil, fmt.Errorf("eligible coupons: %w", err)
	}

	return coupons, nil
}

// Redeem increments a coupon's usage count exactly once, guarded by the
// usage limit in the same UPDATE so concurrent orders cannot overshoot it.
// Zero affected rows means the last use was taken by a concurrent order.
func (s *CouponService) Redeem(code string) error {
	normalized := NormalizeCouponCode(code)

	res := s.db.Model(&models.Coupon{}).
		Where("code = ? AND is_active = ?", normalized, true).
		Where("usage_limit IS NULL OR usage_count < usage_limit").
		UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("coupon redeem: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &CouponError{Kind: CouponUsageExhausted, Code: normalized}
	}

	return nil
}

// Release undoes a Redeem when the order it was claimed for could not be
// persisted. The count never goes below zero.
func (s *CouponService) Release(code string) error {
	normalized := NormalizeCouponCode(code)

	res := s.db.Model(&models.Coupon{}).
		Where("code = ? AND usage_count > 0", normalized).
		UpdateColumn("usage_count", gorm.Expr("usage_count - 1"))
	if res.Error != nil {
		return fmt.Errorf("coupon release: %w", res.Error)
	}

	return nil
}
