package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lumina/internal/models"
	"github.com/example/lumina/internal/pricing"
)

// memoryOrderStore implements OrderStore with compare-and-set semantics
// matching the conditional UPDATE of the real store.
type memoryOrderStore struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*models.Order
	createErr error
}

func newMemoryOrderStore() *memoryOrderStore {
	return &memoryOrderStore{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *memoryOrderStore) GetOrder(id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (s *memoryOrderStore) CreateOrder(order *models.Order) error {
	if s.createErr != nil {
		return s.createErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = cloneOrder(order)
	return nil
}

func (s *memoryOrderStore) UpdateStatusIfVersion(id uuid.UUID, expectedVersion int, fields map[string]any, event *models.OrderStatusEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok || order.Version != expectedVersion {
		return 0, nil
	}

	for k, v := range fields {
		switch k {
		case "status":
			order.Status = v.(models.OrderStatus)
		case "payment_status":
			order.PaymentStatus = v.(models.PaymentStatus)
		case "tracking_number":
			order.TrackingNumber = v.(string)
		case "tracking_url":
			order.TrackingURL = v.(string)
		case "courier_name":
			order.CourierName = v.(string)
		case "cancellation_reason":
			order.CancellationReason = v.(string)
		}
	}
	order.Version = expectedVersion + 1

	if event != nil {
		ev := *event
		ev.OrderID = id
		order.StatusHistory = append(order.StatusHistory, ev)
	}

	return 1, nil
}

func cloneOrder(o *models.Order) *models.Order {
	clone := *o
	clone.Items = append([]models.OrderItem(nil), o.Items...)
	clone.StatusHistory = append([]models.OrderStatusEvent(nil), o.StatusHistory...)
	return &clone
}

type stubCoupons struct {
	mu       sync.Mutex
	applied  AppliedCoupon
	err      error
	redeemed []string
	released []string
}

func (s *stubCoupons) Validate(code string, subtotal float64, now time.Time) (AppliedCoupon, error) {
	if s.err != nil {
		return AppliedCoupon{}, s.err
	}
	return s.applied, nil
}

func (s *stubCoupons) Redeem(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redeemed = append(s.redeemed, code)
	return nil
}

func (s *stubCoupons) Release(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, code)
	return nil
}

type stubDelivery struct {
	charge float64
	err    error
}

func (s *stubDelivery) ResolveCharge(dest models.ShippingAddress, subtotal float64) (float64, error) {
	return s.charge, s.err
}

type stubProducts struct {
	products map[uuid.UUID]*models.Product
	variants map[uuid.UUID]*models.ProductVariant
}

func (s *stubProducts) GetProduct(id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, ErrProductNotFound
}

func (s *stubProducts) GetVariant(id uuid.UUID) (*models.ProductVariant, error) {
	if v, ok := s.variants[id]; ok {
		return v, nil
	}
	return nil, ErrProductNotFound
}

type stubNotifier struct {
	mu     sync.Mutex
	events []TemplateKind
}

func (s *stubNotifier) NotifyOrderEvent(kind TemplateKind, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, kind)
	return nil
}

func (s *stubNotifier) kinds() []TemplateKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TemplateKind(nil), s.events...)
}

type stubRefunds struct {
	mu     sync.Mutex
	orders []string
}

func (s *stubRefunds) InitiateRefund(order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, order.OrderNumber)
	return nil
}

type orderServiceFixture struct {
	service  *OrderService
	store    *memoryOrderStore
	coupons  *stubCoupons
	delivery *stubDelivery
	products *stubProducts
	notifier *stubNotifier
	refunds  *stubRefunds
	now      time.Time
}

func newOrderServiceFixture(t *testing.T) *orderServiceFixture {
	t.Helper()

	f := &orderServiceFixture{
		store:    newMemoryOrderStore(),
		coupons:  &stubCoupons{},
		delivery: &stubDelivery{},
		products: &stubProducts{
			products: make(map[uuid.UUID]*models.Product),
			variants: make(map[uuid.UUID]*models.ProductVariant),
		},
		notifier: &stubNotifier{},
		refunds:  &stubRefunds{},
		now:      time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC),
	}

	service, err := NewOrderService(OrderServiceDeps{
		Store:    f.store,
		Products: f.products,
		Coupons:  f.coupons,
		Delivery: f.delivery,
		Notifier: f.notifier,
		Refunds:  f.refunds,
		TaxRate:  pricing.DefaultTaxRate,
		Clock:    func() time.Time { return f.now },
	})
	require.NoError(t, err)

	f.service = service
	return f
}

func (f *orderServiceFixture) addProduct(price float64) uuid.UUID {
	id := uuid.New()
	f.products.products[id] = &models.Product{
		BaseModel: models.BaseModel{ID: id},
		Name:      "Solitaire Ring",
		Price:     price,
		IsActive:  true,
	}
	return id
}

func (f *orderServiceFixture) session(items ...CheckoutItem) *CheckoutSession {
	return &CheckoutSession{
		ID:        uuid.New(),
		Source:    CheckoutSourceBuyNow,
		Items:     items,
		CreatedAt: f.now,
	}
}

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Name:    "Asha Rao",
		Phone:   "9000000000",
		Line1:   "12 Marine Drive",
		City:    "Mumbai",
		State:   "Maharashtra",
		Pincode: "400001",
	}
}

func TestCreateFromSessionFailedPaymentRejected(t *testing.T) {
	f := newOrderServiceFixture(t)
	productID := f.addProduct(1000)

	_, err := f.service.CreateFromSession(CreateOrderInput{
		UserID:          uuid.New(),
		Session:         f.session(CheckoutItem{ProductID: productID, Quantity: 1}),
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
		PaymentOK:       false,
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, f.store.orders, "failed payments never produce an order")
	assert.Empty(t, f.coupons.redeemed)
}

func TestCreateFromSessionComputesAndPersistsTotals(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.delivery.charge = 90
	f.coupons.applied = AppliedCoupon{
		Code:          "FESTIVE20",
		DiscountType:  models.DiscountTypePercentage,
		DiscountValue: 20,
		Discount:      400,
	}

	productID := f.addProduct(1000)

	order, err := f.service.CreateFromSession(CreateOrderInput{
		UserID:          uuid.New(),
		Session:         f.session(CheckoutItem{ProductID: productID, Quantity: 2}),
		ShippingAddress: testAddress(),
		CouponCode:      "festive20",
		PaymentMethod:   "card",
		PaymentOK:       true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, 1, order.Version)
	assert.Equal(t, 2000.0, order.Subtotal)
	assert.Equal(t, 400.0, order.Discount)
	assert.Equal(t, 90.0, order.DeliveryCharge)
	// taxable = 2000 - 400 + 90 = 1690
	assert.Equal(t, 169.0, order.Tax)
	assert.Equal(t, 1859.0, order.Total)
	require.NotNil(t, order.CouponCode)
	assert.Equal(t, "FESTIVE20", *order.CouponCode)

	assert.InDelta(t, order.Subtotal-order.Discount+order.DeliveryCharge+order.Tax, order.Total, 0.005)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 1000.0, order.Items[0].UnitPrice)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, models.OrderStatusConfirmed, order.StatusHistory[0].Status)

	assert.Equal(t, []string{"FESTIVE20"}, f.coupons.redeemed, "coupon redeemed exactly once")
	assert.Equal(t, []TemplateKind{TemplateOrderConfirmed}, f.notifier.kinds())
}

func TestCreateFromSessionCOD(t *testing.T) {
	f := newOrderServiceFixture(t)
	productID := f.addProduct(750)

	order, err := f.service.CreateFromSession(CreateOrderInput{
		UserID:          uuid.New(),
		Session:         f.session(CheckoutItem{ProductID: productID, Quantity: 1}),
		ShippingAddress: testAddress(),
		PaymentMethod:   PaymentMethodCOD,
		PaymentOK:       false,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
}

func TestCreateFromSessionPreviewMismatchRejected(t *testing.T) {
	f := newOrderServiceFixture(t)
	productID := f.addProduct(1000)

	wrong := 999.0
	_, err := f.service.CreateFromSession(CreateOrderInput{
		UserID:          uuid.New(),
		Session:         f.session(CheckoutItem{ProductID: productID, Quantity: 1}),
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
		PaymentOK:       true,
		ExpectedTotal:   &wrong,
	})

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "total", ve.Field)
	assert.Empty(t, f.store.orders)
}

func TestCreateFromSessionCouponErrorPropagates(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.coupons.err = &CouponError{Kind: CouponExpired, Code: "OLD10"}
	productID := f.addProduct(1000)

	_, err := f.service.CreateFromSession(CreateOrderInput{
		UserID:          uuid.New(),
		Session:         f.session(CheckoutItem{ProductID: productID, Quantity: 1}),
		ShippingAddress: testAddress(),
		CouponCode:      "old10",
		PaymentMethod:   "card",
		PaymentOK:       true,
	})

	var ce *CouponError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, CouponExpired, ce.Kind)
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.coupons.redeemed)
}

func TestCreateFromSessionReleasesCouponWhenPersistFails(t *testing.T) {
	f := newOrderServiceFixture(t)
	f.store.createErr = errors.New("connection reset")
	f.coupons.applied = AppliedCoupon{Code: "SAVE100", DiscountType: models.DiscountTypeFixed, DiscountValue: 100, Discount: 100}
	productID := f.addProduct(1000)

	_, err := f.service.CreateFromSession(CreateOrderInput{
		UserID:          uuid.New(),
		Session:         f.session(CheckoutItem{ProductID: productID, Quantity: 1}),
		ShippingAddress: testAddress(),
		CouponCode:      "save100",
		PaymentMethod:   "card",
		PaymentOK:       true,
	})

	require.Error(t, err)
	assert.Equal(t, []string{"SAVE100"}, f.coupons.redeemed)
	assert.Equal(t, []string{"SAVE100"}, f.coupons.released)
}

func (f *orderServiceFixture) placeOrder(t *testing.T, status models.OrderStatus, paymentStatus models.PaymentStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:        uuid.New(),
		OrderNumber:   "LUM-TEST",
		Status:        status,
		PaymentStatus: paymentStatus,
		Version:       1,
		Subtotal:      1000,
		Tax:           100,
		Total:         1100,
		Currency:      "INR",
		PlacedAt:      f.now,
	}
	require.NoError(t, f.store.CreateOrder(order))
	return order
}

func TestUpdateStatusHappyPath(t *testing.T) {
	f := newOrderServiceFixture(t)
	order := f.placeOrder(t, models.OrderStatusConfirmed, models.PaymentStatusPaid)

	updated, err := f.service.UpdateStatus(order.ID, StatusUpdateRequest{
		NewStatus:       models.OrderStatusProcessing,
		ExpectedVersion: 1,
		Notes:           "packing started",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusProcessing, updated.Status)
	assert.Equal(t, 2, updated.Version)
	require.Len(t, updated.StatusHistory, 1)
	assert.Equal(t, "packing started", updated.StatusHistory[0].Note)
	assert.Equal(t, []TemplateKind{TemplateStatusUpdated}, f.notifier.kinds())
}

func TestUpdateStatusShippedRequiresTracking(t *testing.T) {
	f := newOrderServiceFixture(t)
	order := f.placeOrder(t, models.OrderStatusProcessing, models.PaymentStatusPaid)

	_, err := f.service.UpdateStatus(order.ID, StatusUpdateRequest{
		NewStatus:       models.OrderStatusShipped,
		ExpectedVersion: 1,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "tracking_number", ve.Field)

	updated, err := f.service.UpdateStatus(order.ID, StatusUpdateRequest{
		NewStatus:       models.OrderStatusShipped,
		ExpectedVersion: 1,
		TrackingNumber:  "AWB123456",
		CourierName:     "BlueDart",
	})
	require.NoError(t, err)
	assert.Equal(t, "AWB123456", updated.TrackingNumber)
	assert.Equal(t, "BlueDart", updated.CourierName)
	assert.Equal(t, []TemplateKind{TemplateOrderShipped}, f.notifier.kinds())
}

func TestUpdateStatusIllegalTransition(t *testing.T) {
	f := newOrderServiceFixture(t)
	order := f.placeOrder(t, models.OrderStatusPending, models.PaymentStatusPending)

	_, err := f.service.UpdateStatus(order.ID, StatusUpdateRequest{
		NewStatus:       models.OrderStatusShipped,
		ExpectedVersion: 1,
		TrackingNumber:  "AWB1",
	})

	var ite *IllegalTransitionError
	require.ErrorAs(t, err, &ite)

	reloaded, err := f.store.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Version, "no mutation on illegal transition")
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)
}

func TestUpdateStatusStaleVersionConflictsDeterministically(t *testing.T) {
	f := newOrderServiceFixture(t)
	order := f.placeOrder(t, models.OrderStatusConfirmed, models.PaymentStatusPaid)

	_, err := f.service.UpdateStatus(order.ID, StatusUpdateRequest{
		NewStatus:       models.OrderStatusProcessing,
		ExpectedVersion: 1,
	})
	require.NoError(t, err)

	// Resubmitting with the stale version must fail the same way every time.
	for i := 0; i < 3; i++ {
		_, err := f.service.UpdateStatus(order.ID, StatusUpdateRequest{
			NewStatus:       models.OrderStatusShipped,
			ExpectedVersion: 1,
			TrackingNumber:  "AWB1",
		})
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 2, conflict.CurrentVersion)
	}
}

func TestUpdateStatusConcurrentRace(t *testing.T) {
	f := newOrderServiceFixture(t)
	order := f.placeOrder(t, models.OrderStatusConfirmed, models.PaymentStatusPaid)

	const racers = 8
	results := make(chan error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.UpdateStatus(order.ID, StatusUpdateRequest{
				NewStatus:       models.OrderStatusProcessing,
				ExpectedVersion: 1,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, 2, conflict.CurrentVersion)
		conflicts++
	}

	assert.Equal(t, 1, wins, "exactly one concurrent updater wins per version")
	assert.Equal(t, racers-1, conflicts)

	final, err := f.store.GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, final.Version, "version increased by exactly 1")
	assert.Equal(t, models.OrderStatusProcessing, final.Status)
	require.Len(t, final.StatusHistory, 1, "losers must not append history")
}

func TestCancelLegality(t *testing.T) {
	f := newOrderServiceFixture(t)

	t.Run("pending order cancels", func(t *testing.T) {
		order := f.placeOrder(t, models.OrderStatusPending, models.PaymentStatusPending)
		updated, err := f.service.Cancel(order.ID, "changed my mind", 1)
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, updated.Status)
		assert.Equal(t, "changed my mind", updated.CancellationReason)
		assert.Empty(t, f.refunds.orders, "unpaid cancellation initiates no refund")
	})

	t.Run("paid confirmed order cancels with refund", func(t *testing.T) {
		order := f.placeOrder(t, models.OrderStatusConfirmed, models.PaymentStatusPaid)
		updated, err := f.service.Cancel(order.ID, "out of stock", 1)
		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusRefunded, updated.PaymentStatus)
		assert.Contains(t, f.refunds.orders, updated.OrderNumber)
	})

	t.Run("shipped order cannot cancel", func(t *testing.T) {
		order := f.placeOrder(t, models.OrderStatusShipped, models.PaymentStatusPaid)
		_, err := f.service.Cancel(order.ID, "too late", 1)
		var ite *IllegalTransitionError
		require.ErrorAs(t, err, &ite)
		assert.Equal(t, models.OrderStatusShipped, ite.From)
	})
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	f := newOrderServiceFixture(t)

	_, err := f.service.UpdateStatus(uuid.New(), StatusUpdateRequest{
		NewStatus:       models.OrderStatusProcessing,
		ExpectedVersion: 1,
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	f := newOrderServiceFixture(t)
	order := f.placeOrder(t, models.OrderStatusConfirmed, models.PaymentStatusPaid)

	_, err := f.service.UpdateStatus(order.ID, StatusUpdateRequest{
		NewStatus:       models.OrderStatus("misplaced"),
		ExpectedVersion: 1,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "new_status", ve.Field)
}
