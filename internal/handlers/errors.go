package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/example/lumina/internal/services"
)

// respondServiceError maps core error kinds onto HTTP responses. Conflicts
// are distinguishable from validation failures so clients can reload and
// retry instead of blindly resubmitting.
func respondServiceError(c *fiber.Ctx, err error) error {
	var conflict *services.ConflictError
	if errors.As(err, &conflict) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success":         false,
			"error":           "conflict",
			"message":         conflict.Error(),
			"current_version": conflict.CurrentVersion,
		})
	}

	var illegal *services.IllegalTransitionError
	if errors.As(err, &illegal) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success": false,
			"error":   "illegal_transition",
			"message": illegal.Error(),
			"from":    illegal.From,
			"to":      illegal.To,
		})
	}

	var couponErr *services.CouponError
	if errors.As(err, &couponErr) {
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
		return c.Status(fiber.StatusUnprocessableEntity).JSON(payload)
	}

	var invalid *services.ValidationError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "validation",
			"message": invalid.Error(),
			"field":   invalid.Field,
		})
	}

	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, "order not found")
	case errors.Is(err, services.ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	case errors.Is(err, services.ErrDeliverySettingsMissing):
		return fiber.NewError(fiber.StatusServiceUnavailable, "delivery settings not configured")
	}

	return err
}
