package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumina/internal/middleware"
	"github.com/example/lumina/internal/models"
	"github.com/example/lumina/internal/services"
	"github.com/example/lumina/internal/utils"
)

// OrderHandler manages order placement for customers and the order lifecycle
// for administrators.
type OrderHandler struct {
	db       *gorm.DB
	orders   *services.OrderService
	sessions *services.CheckoutStore
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(db *gorm.DB, orders *services.OrderService, sessions *services.CheckoutStore) *OrderHandler {
	return &OrderHandler{db: db, orders: orders, sessions: sessions}
}

type createOrderRequest struct {
	SessionID        string                 `json:"session_id"`
	AddressID        string                 `json:"address_id"`
	ShippingAddress  models.ShippingAddress `json:"shipping_address"`
	CouponCode       string                 `json:"coupon_code"`
	PaymentMethod    string                 `json:"payment_method"`
	PaymentReference string                 `json:"payment_reference"`
	ExpectedTotal    *float64               `json:"expected_total"`
	Notes            string                 `json:"notes"`
}

// CreateOrder places an order from a buy-now session or from the cart. The
// buy-now session is consumed here: it can produce at most one order.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if req.PaymentMethod == "" {
		return fiber.NewError(fiber.StatusBadRequest, "payment_method is required")
	}

	address := req.ShippingAddress
	if req.AddressID != "" {
		addressID, err := uuid.Parse(req.AddressID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid address_id")
		}
		var saved models.UserAddress
		if err := h.db.First(&saved, "id = ? AND user_id = ?", addressID, userID).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "address not found")
		}
		address = models.ShippingAddress{
			Name:    saved.Name,
			Phone:   saved.Phone,
			Line1:   saved.Line1,
			Line2:   saved.Line2,
			City:    saved.City,
			State:   saved.State,
			Pincode: saved.Pincode,
		}
	}

	var session *services.CheckoutSession
	fromCart := req.SessionID == ""
	if fromCart {
		var cartItems []models.CartItem
		if err := h.db.Where("user_id = ?", userID).Order("created_at asc").Find(&cartItems).Error; err != nil {
			return err
		}
		if len(cartItems) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "cart is empty")
		}

		items := make([]services.CheckoutItem, 0, len(cartItems))
		for _, item := range cartItems {
			items = append(items, services.CheckoutItem{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Quantity:  item.Quantity,
			})
		}
		session = &services.CheckoutSession{
			ID:     uuid.New(),
			UserID: userID,
			Source: services.CheckoutSourceCart,
			Items:  items,
		}
	} else {
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid session_id")
		}
		consumed, found := h.sessions.Consume(sessionID)
		if !found || consumed.UserID != userID {
			return fiber.NewError(fiber.StatusGone, "checkout session already used or expired")
		}
		session = consumed
	}

	// Payment verification is the payment provider's concern; a reference
	// is only present once the provider reported success.
	paymentOK := req.PaymentMethod == services.PaymentMethodCOD || req.PaymentReference != ""

	order, err := h.orders.CreateFromSession(services.CreateOrderInput{
		UserID:          userID,
		Session:         session,
		ShippingAddress: address,
		CouponCode:      req.CouponCode,
		PaymentMethod:   req.PaymentMethod,
		PaymentOK:       paymentOK,
		ExpectedTotal:   req.ExpectedTotal,
		Notes:           req.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	if fromCart {
		if err := h.db.Delete(&models.CartItem{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    order,
	})
}

// ListOrders returns orders for the authenticated user.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	pg := utils.ParsePagination(c)
	query := h.db.Where("user_id = ?", userID).Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// GetOrder returns a single order for the authenticated user.
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
		return db.Order("occurred_at asc")
	}).First(&order, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

type cancelOrderRequest struct {
	Reason          string `json:"reason"`
	ExpectedVersion int    `json:"expected_version"`
}

// CancelOrder lets a customer cancel their own order while it is still
// pending or confirmed.
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req cancelOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	var owned models.Order
	if err := h.db.Select("id").First(&owned, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	order, err := h.orders.Cancel(id, req.Reason, req.ExpectedVersion)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// Admin endpoints

// AdminListOrders returns all orders with optional status filter (admin).
func (h *OrderHandler) AdminListOrders(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.Model(&models.Order{})

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus := c.Query("payment_status"); paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := query.Preload("Items").Preload("User").
		Order("placed_at desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    orders,
		"pagination": fiber.Map{
			"current_page":   pg.Page,
			"items_per_page": pg.Limit,
			"total_items":    total,
		},
	})
}

// AdminGetOrder returns any order with full history (admin).
func (h *OrderHandler) AdminGetOrder(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var order models.Order
	if err := h.db.Preload("Items").Preload("User").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("occurred_at asc")
		}).
		First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fiber.NewError(fiber.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}

// AdminUpdateStatus applies a status transition guarded by the order
// version. A 409 response carries the current version so the admin UI can
// reload and retry.
func (h *OrderHandler) AdminUpdateStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}

	var req services.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	order, err := h.orders.UpdateStatus(id, req)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "data": order})
}
