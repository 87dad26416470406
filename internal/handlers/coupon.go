package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumina/internal/models"
	"github.com/example/lumina/internal/services"
	"github.com/example/lumina/internal/utils"
)

// CouponHandler exposes coupon validation to the storefront and coupon CRUD
// to administrators.
type CouponHandler struct {
	db      *gorm.DB
	coupons *services.CouponService
}

// NewCouponHandler constructs CouponHandler.
func NewCouponHandler(db *gorm.DB, coupons *services.CouponService) *CouponHandler {
	return &CouponHandler{db: db, coupons: coupons}
}

type validateCouponRequest struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
}

// Validate previews a coupon against a subtotal. It never consumes usage;
// on failure it offers up to 3 alternative coupons the order qualifies for.
func (h *CouponHandler) Validate(c *fiber.Ctx) error {
	var req validateCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Code == "" {
		return fiber.NewError(fiber.StatusBadRequest, "code is required")
	}

	now := time.Now()

	applied, err := h.coupons.Validate(req.Code, req.Subtotal, now)
	if err != nil {
		var couponErr *services.CouponError
		if !errors.As(err, &couponErr) {
			return err
		}

		payload := fiber.Map{
			"success": false,
			"error":   "coupon_" + string(couponErr.Kind),
			"message": couponErr.Error(),
			"code":    couponErr.Code,
		}
		switch couponErr.Kind {
		case services.CouponNotYetValid:
			payload["valid_from"] = couponErr.ValidFrom
		case services.CouponExpired:
			payload["valid_until"] = couponErr.ValidUntil
		case services.CouponBelowMinimum:
			payload["shortfall"] = couponErr.Shortfall
		}

		if alternatives, altErr := h.coupons.FindEligible(req.Subtotal, now, 3); altErr == nil && len(alternatives) > 0 {
			payload["suggestions"] = alternatives
		}

		return c.Status(fiber.StatusUnprocessableEntity).JSON(payload)
	}

	return c.JSON(fiber.Map{"success": true, "data": applied})
}

// Eligible lists up to 3 active coupons the given subtotal qualifies for.
func (h *CouponHandler) Eligible(c *fiber.Ctx) error {
	subtotal := c.QueryFloat("subtotal")

	coupons, err := h.coupons.FindEligible(subtotal, time.Now(), 3)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": coupons})
}

// Admin CRUD

// ListCoupons returns all coupons (admin).
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Coupon{}).Count(&total).Error; err != nil {
		return err
	}

	var coupons []models.Coupon
	if err := h.db.Order("created_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&coupons).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    coupons,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// CreateCoupon adds a coupon (admin). The code is stored uppercase.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var coupon models.Coupon
	if err := c.BodyParser(&coupon); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	coupon.Code = services.NormalizeCouponCode(coupon.Code)
	coupon.UsageCount = 0

	if msg := validateCouponShape(&coupon); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	if err := h.db.Create(&coupon).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": coupon})
}

// UpdateCoupon edits a coupon (admin). Usage count is never editable.
func (h *CouponHandler) UpdateCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var coupon models.Coupon
	if err := h.db.First(&coupon, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "coupon not found")
		}
		return err
	}

	usageCount := coupon.UsageCount
	if err := c.BodyParser(&coupon); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	coupon.ID = id
	coupon.Code = services.NormalizeCouponCode(coupon.Code)
	coupon.UsageCount = usageCount

	if msg := validateCouponShape(&coupon); msg != "" {
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}

	if err := h.db.Save(&coupon).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": coupon})
}

// DeleteCoupon removes a coupon (admin).
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	if err := h.db.Delete(&models.Coupon{}, "id = ?", id).Error; err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func validateCouponShape(coupon *models.Coupon) string {
	if coupon.Code == "" {
		return "code is required"
	}
	if coupon.DiscountType != models.DiscountTypePercentage && coupon.DiscountType != models.DiscountTypeFixed {
		return "discount_type must be percentage or fixed"
	}
	if coupon.DiscountValue <= 0 {
		return "discount_value must be positive"
	}
	if coupon.DiscountType == models.DiscountTypePercentage && coupon.DiscountValue > 100 {
		return "percentage discount cannot exceed 100"
	}
	if coupon.MinOrderValue < 0 {
		return "min_order_value cannot be negative"
	}
	if !coupon.ValidUntil.After(coupon.ValidFrom) {
		return "valid_until must be after valid_from"
	}
	if coupon.UsageLimit != nil && *coupon.UsageLimit < 1 {
		return "usage_limit must be at least 1"
	}
	return ""
}
