package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/lumina/internal/models"
	"github.com/example/lumina/internal/pricing"
)

// PaymentMethodCOD marks cash-on-delivery orders, which are placed unpaid.
const PaymentMethodCOD = "cod"

// couponApplier abstracts CouponService for easier testing.
type couponApplier interface {
	Validate(code string, subtotal float64, now time.Time) (AppliedCoupon, error)
	Redeem(code string) error
	Release(code string) error
}

// deliveryResolver abstracts DeliveryService for easier testing.
type deliveryResolver interface {
	ResolveCharge(dest models.ShippingAddress, subtotal float64) (float64, error)
}

// Notifier renders and delivers an order event message. Delivery failures
// never fail the order operation.
type Notifier interface {
	NotifyOrderEvent(kind TemplateKind, order *models.Order) error
}

// RefundInitiator signals that a refund should be started for a paid order
// that was cancelled. The actual money movement is an external concern.
type RefundInitiator interface {
	InitiateRefund(order *models.Order) error
}

// OrderServiceDeps wires the dependencies required by the order service.
type OrderServiceDeps struct {
	Store    OrderStore
	Products ProductStore
	Coupons  couponApplier
	Delivery deliveryResolver
	Notifier Notifier
	Refunds  RefundInitiator
	TaxRate  float64
	Clock    func() time.Time
}

// OrderService orchestrates order creation and status updates.
type OrderService struct {
	store    OrderStore
	products ProductStore
	coupons  couponApplier
	delivery deliveryResolver
	notifier Notifier
	refunds  RefundInitiator
	taxRate  float64
	now      func() time.Time
}

// NewOrderService constructs an OrderService, validating required
// dependencies and defaulting the clock and tax rate.
func NewOrderService(deps OrderServiceDeps) (*OrderService, error) {
	if deps.Store == nil {
		return nil, errors.New("order service: order store is required")
	}
	if deps.Products == nil {
		return nil, errors.New("order service: product store is required")
	}
	if deps.Coupons == nil {
		return nil, errors.New("order service: coupon service is required")
	}
	if deps.Delivery == nil {
		return nil, errors.New("order service: delivery service is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	taxRate := deps.TaxRate
	if taxRate <= 0 {
		taxRate = pricing.DefaultTaxRate
	}

	return &OrderService{
		store:    deps.Store,
		products: deps.Products,
		coupons:  deps.Coupons,
		delivery: deps.Delivery,
		notifier: deps.Notifier,
		refunds:  deps.Refunds,
		taxRate:  taxRate,
		now:      clock,
	}, nil
}

// CreateOrderInput carries everything needed to turn a checkout session into
// a persisted order.
type CreateOrderInput struct {
	UserID          uuid.UUID
	Session         *CheckoutSession
	ShippingAddress models.ShippingAddress
	CouponCode      string
	PaymentMethod   string
	PaymentOK       bool
	// ExpectedTotal, when set, is the client-side preview total; the order
	// is rejected as inconsistent if the server computation disagrees.
	ExpectedTotal *float64
	Notes         string
}

// CreateFromSession prices the session items, applies coupon and delivery
// charge, and persists the order at version 1 with an initial history entry.
// Failed payments never produce an order.
func (s *OrderService) CreateFromSession(input CreateOrderInput) (*models.Order, error) {
	if input.Session == nil || len(input.Session.Items) == 0 {
		return nil, &ValidationError{Field: "session", Reason: "no items to order"}
	}
	if input.ShippingAddress.Pincode == "" || input.ShippingAddress.Line1 == "" {
		return nil, &ValidationError{Field: "shipping_address", Reason: "incomplete address"}
	}

	status := models.OrderStatusConfirmed
	paymentStatus := models.PaymentStatusPaid
	if input.PaymentMethod == PaymentMethodCOD {
		status = models.OrderStatusPending
		paymentStatus = models.PaymentStatusPending
	} else if !input.PaymentOK {
		return nil, &ValidationError{Field: "payment", Reason: "payment did not succeed"}
	}

	now := s.now()

	items, subtotal, err := s.buildItems(input.Session.Items)
	if err != nil {
		return nil, err
	}

	deliveryCharge, err := s.delivery.ResolveCharge(input.ShippingAddress, subtotal)
	if err != nil {
		return nil, err
	}

	var discount float64
	var couponCode *string
	if input.CouponCode != "" {
		applied, err := s.coupons.Validate(input.CouponCode, subtotal, now)
		if err != nil {
			return nil, err
		}
		discount = applied.Discount
		couponCode = &applied.Code
	}

	totals := pricing.ComputeTotals(subtotal, discount, deliveryCharge, s.taxRate)

	if input.ExpectedTotal != nil && pricing.Round2(*input.ExpectedTotal) != totals.Total {
		return nil, &ValidationError{Field: "total", Reason: "client preview disagrees with server pricing"}
	}

	order := &models.Order{
		UserID:          input.UserID,
		OrderNumber:     generateOrderNumber(now),
		PlacedAt:        now,
		Status:          status,
		PaymentStatus:   paymentStatus,
		PaymentMethod:   input.PaymentMethod,
		Version:         1,
		Subtotal:        totals.Subtotal,
		Discount:        totals.Discount,
		DeliveryCharge:  totals.DeliveryCharge,
		Tax:             totals.Tax,
		Total:           totals.Total,
		Currency:        "INR",
		CouponCode:      couponCode,
		ShippingAddress: input.ShippingAddress,
		Notes:           input.Notes,
		Items:           items,
		StatusHistory: []models.OrderStatusEvent{
			{Status: status, Note: "order placed", OccurredAt: now},
		},
	}

	// Claim the coupon use before persisting so a concurrent order cannot
	// push the usage count past its limit.
	if couponCode != nil {
		if err := s.coupons.Redeem(*couponCode); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateOrder(order); err != nil {
		if couponCode != nil {
			if relErr := s.coupons.Release(*couponCode); relErr != nil {
				log.Printf("[Order] failed to release coupon %s: %v", *couponCode, relErr)
			}
		}
		return nil, err
	}

	s.notify(TemplateOrderConfirmed, order)

	return order, nil
}

func (s *OrderService) buildItems(items []CheckoutItem) ([]models.OrderItem, float64, error) {
	var built []models.OrderItem
	var subtotal float64

	for _, item := range items {
		if item.Quantity < 1 {
			return nil, 0, &ValidationError{Field: "quantity", Reason: "must be at least 1"}
		}

		product, err := s.products.GetProduct(item.ProductID)
		if err != nil {
			return nil, 0, err
		}

		var variant *models.ProductVariant
		var variantID *uuid.UUID
		var variantLabel string
		if item.VariantID != nil {
			variant, err = s.products.GetVariant(*item.VariantID)
			if err != nil {
				return nil, 0, err
			}
			variantID = item.VariantID
			variantLabel = variant.Label
		}

		unitPrice := pricing.UnitPrice(product, variant)
		lineTotal := pricing.Round2(unitPrice * float64(item.Quantity))
		subtotal += lineTotal

		productID := product.ID
		built = append(built, models.OrderItem{
			ProductID:    &productID,
			VariantID:    variantID,
			ProductName:  product.Name,
			VariantLabel: variantLabel,
			Image:        product.HeroImage,
			Quantity:     item.Quantity,
			UnitPrice:    unitPrice,
			LineTotal:    lineTotal,
		})
	}

	return built, pricing.Round2(subtotal), nil
}

// StatusUpdateRequest is the admin-facing status change payload.
type StatusUpdateRequest struct {
	NewStatus          models.OrderStatus `json:"new_status"`
	ExpectedVersion    int                `json:"expected_version"`
	TrackingNumber     string             `json:"tracking_number"`
	TrackingURL        string             `json:"tracking_url"`
	CourierName        string             `json:"courier_name"`
	Notes              string             `json:"notes"`
	CancellationReason string             `json:"cancellation_reason"`
}

// UpdateStatus validates and applies a status transition guarded by the
// order version. Concurrent updaters racing on the same expected version see
// exactly one success; the rest get a ConflictError and must reload before
// retrying. Retry policy belongs to the caller.
func (s *OrderService) UpdateStatus(orderID uuid.UUID, req StatusUpdateRequest) (*models.Order, error) {
	if !IsValidStatus(req.NewStatus) {
		return nil, &ValidationError{Field: "new_status", Reason: "unknown status"}
	}
	if req.ExpectedVersion < 1 {
		return nil, &ValidationError{Field: "expected_version", Reason: "must be at least 1"}
	}

	order, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if order.Version != req.ExpectedVersion {
		return nil, &ConflictError{CurrentVersion: order.Version}
	}

	if req.NewStatus == models.OrderStatusShipped && req.TrackingNumber == "" {
		return nil, &ValidationError{Field: "tracking_number", Reason: "required when marking an order shipped"}
	}

	if err := ValidateTransition(order.Status, req.NewStatus); err != nil {
		return nil, err
	}

	now := s.now()
	fields := map[string]any{"status": req.NewStatus}
	if req.NewStatus == models.OrderStatusShipped {
		fields["tracking_number"] = req.TrackingNumber
		fields["tracking_url"] = req.TrackingURL
		fields["courier_name"] = req.CourierName
	}

	wasPaid := order.PaymentStatus == models.PaymentStatusPaid
	if req.NewStatus == models.OrderStatusCancelled {
		fields["cancellation_reason"] = req.CancellationReason
		if wasPaid {
			fields["payment_status"] = models.PaymentStatusRefunded
		}
	}

	event := &models.OrderStatusEvent{
		Status:     req.NewStatus,
		Note:       req.Notes,
		OccurredAt: now,
	}

	affected, err := s.store.UpdateStatusIfVersion(orderID, req.ExpectedVersion, fields, event)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		// Lost the race between our read and the conditional write.
		current, err := s.store.GetOrder(orderID)
		if err != nil {
			return nil, err
		}
		return nil, &ConflictError{CurrentVersion: current.Version}
	}

	updated, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	s.notify(templateForStatus(req.NewStatus), updated)

	if req.NewStatus == models.OrderStatusCancelled && wasPaid && s.refunds != nil {
		if err := s.refunds.InitiateRefund(updated); err != nil {
			log.Printf("[Order] refund initiation failed for order %s: %v", updated.OrderNumber, err)
		}
	}

	return updated, nil
}

// Cancel is a convenience wrapper around UpdateStatus that enforces the
// cancellation subset of the state machine up front.
func (s *OrderService) Cancel(orderID uuid.UUID, reason string, expectedVersion int) (*models.Order, error) {
	order, err := s.store.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	if !CanCancel(order.Status) {
		return nil, &IllegalTransitionError{From: order.Status, To: models.OrderStatusCancelled}
	}

	return s.UpdateStatus(orderID, StatusUpdateRequest{
		NewStatus:          models.OrderStatusCancelled,
		ExpectedVersion:    expectedVersion,
		Notes:              reason,
		CancellationReason: reason,
	})
}

func (s *OrderService) notify(kind TemplateKind, order *models.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOrderEvent(kind, order); err != nil {
		log.Printf("[Order] notification failed for order %s: %v", order.OrderNumber, err)
	}
}

func templateForStatus(status models.OrderStatus) TemplateKind {
	switch status {
	case models.OrderStatusShipped:
		return TemplateOrderShipped
	case models.OrderStatusDelivered:
		return TemplateOrderDelivered
	case models.OrderStatusCancelled:
		return TemplateOrderCancelled
	default:
		return TemplateStatusUpdated
	}
}

func generateOrderNumber(now time.Time) string {
	return fmt.Sprintf("LUM-%d", now.UnixNano()%1_000_000_000_000)
}
