package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/lumina/internal/middleware"
	"github.com/example/lumina/internal/pricing"
	"github.com/example/lumina/internal/services"
)

// CheckoutHandler manages buy-now sessions and checkout previews.
type CheckoutHandler struct {
	sessions *services.CheckoutStore
	products services.ProductStore
	taxRate  float64
}

// NewCheckoutHandler constructs CheckoutHandler.
func NewCheckoutHandler(sessions *services.CheckoutStore, products services.ProductStore, taxRate float64) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, products: products, taxRate: taxRate}
}

type buyNowRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// BuyNow opens a single-use checkout session for one product, isolated from
// the shopping cart.
func (h *CheckoutHandler) BuyNow(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req buyNowRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid product_id")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	if _, err := h.products.GetProduct(productID); err != nil {
		return respondServiceError(c, err)
	}

	item := services.CheckoutItem{ProductID: productID, Quantity: req.Quantity}
	if req.VariantID != "" {
		variantID, err := uuid.Parse(req.VariantID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid variant_id")
		}
		if _, err := h.products.GetVariant(variantID); err != nil {
			return respondServiceError(c, err)
		}
		item.VariantID = &variantID
	}

	session := h.sessions.Create(userID, services.CheckoutSourceBuyNow, []services.CheckoutItem{item})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": session})
}

// GetSession renders a priced preview of a pending checkout session without
// consuming it. The session is consumed when the order is created.
func (h *CheckoutHandler) GetSession(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	session, found := h.sessions.Get(id)
	if !found || session.UserID != userID {
		return fiber.NewError(fiber.StatusNotFound, "checkout session not found")
	}

	type pricedLine struct {
		services.CheckoutItem
		ProductName string  `json:"product_name"`
		UnitPrice   float64 `json:"unit_price"`
		LineTotal   float64 `json:"line_total"`
	}

	var lines []pricedLine
	var subtotal float64
	for _, item := range session.Items {
		product, err := h.products.GetProduct(item.ProductID)
		if err != nil {
			return respondServiceError(c, err)
		}
		var unitPrice float64
		if item.VariantID != nil {
			v, err := h.products.GetVariant(*item.VariantID)
			if err != nil {
				return respondServiceError(c, err)
			}
			unitPrice = pricing.UnitPrice(product, v)
		} else {
			unitPrice = pricing.UnitPrice(product, nil)
		}

		lineTotal := pricing.Round2(unitPrice * float64(item.Quantity))
		subtotal += lineTotal
		lines = append(lines, pricedLine{
			CheckoutItem: item,
			ProductName:  product.Name,
			UnitPrice:    unitPrice,
			LineTotal:    lineTotal,
		})
	}

	// Delivery charge depends on the address chosen at order time; the
	// preview prices the goods only.
	totals := pricing.ComputeTotals(subtotal, 0, 0, h.taxRate)

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"session": session,
			"lines":   lines,
			"totals":  totals,
		},
	})
}
