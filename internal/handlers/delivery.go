package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/lumina/internal/models"
	"github.com/example/lumina/internal/services"
)

// DeliveryHandler exposes delivery-charge quotes to the storefront and the
// zone-charge settings to administrators.
type DeliveryHandler struct {
	db       *gorm.DB
	delivery *services.DeliveryService
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(db *gorm.DB, delivery *services.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{db: db, delivery: delivery}
}

type deliveryQuoteRequest struct {
	Address  models.ShippingAddress `json:"address"`
	Subtotal float64                `json:"subtotal"`
}

// Quote returns the delivery charge and zone for an address and subtotal.
func (h *DeliveryHandler) Quote(c *fiber.Ctx) error {
	var req deliveryQuoteRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Address.Pincode == "" {
		return fiber.NewError(fiber.StatusBadRequest, "pincode is required")
	}

	settings, err := h.delivery.Settings()
	if err != nil {
		return respondServiceError(c, err)
	}

	zone := services.ClassifyZone(settings, req.Address)
	charge := services.ResolveCharge(settings, req.Address, req.Subtotal)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"zone":            zone,
			"delivery_charge": charge,
			"free_shipping":   charge == 0 && settings.FreeShippingEnabled && req.Subtotal >= settings.FreeShippingThreshold,
		},
	})
}

// GetSettings returns the current delivery settings (admin).
func (h *DeliveryHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.delivery.Settings()
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": settings})
}

// UpdateSettings replaces the delivery settings (admin). The first call
// creates the row.
func (h *DeliveryHandler) UpdateSettings(c *fiber.Ctx) error {
	var req models.DeliverySettings
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.LocalCharge < 0 || req.CityCharge < 0 || req.StateCharge < 0 || req.NationalCharge < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "zone charges cannot be negative")
	}
	if req.FreeShippingThreshold < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "free_shipping_threshold cannot be negative")
	}
	if req.OriginPincode == "" {
		return fiber.NewError(fiber.StatusBadRequest, "origin_pincode is required")
	}

	var existing models.DeliverySettings
	err := h.db.Order("updated_at desc").First(&existing).Error
	switch {
	case err == gorm.ErrRecordNotFound:
		if err := h.db.Create(&req).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		req.ID = existing.ID
		req.CreatedAt = existing.CreatedAt
		if err := h.db.Save(&req).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "data": req})
}
