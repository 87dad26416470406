package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// ShippingAddress is the address snapshot stored on an order.
type ShippingAddress struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Line1   string `json:"line1"`
	Line2   string `json:"line2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// Order is created when a payment succeeds or a COD order is placed. Orders
// are never deleted, only transitioned to cancelled. Version starts at 1 and
// increases by exactly 1 on every successful status update.
type Order struct {
	BaseModel
	UserID      uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User        *User     `json:"user,omitempty"`
	OrderNumber string    `gorm:"uniqueIndex" json:"order_number"`
	PlacedAt    time.Time `json:"placed_at"`

	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaymentMethod string        `json:"payment_method"`
	Version       int           `gorm:"not null;default:1" json:"version"`

	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	DeliveryCharge float64 `json:"delivery_charge"`
	Tax            float64 `json:"tax"`
	Total          float64 `json:"total"`
	Currency       string  `json:"currency"`

	CouponCode *string `json:"coupon_code"`

	ShippingAddress ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shipping_address"`

	CancellationReason string `json:"cancellation_reason"`
	TrackingNumber     string `json:"tracking_number"`
	TrackingURL        string `json:"tracking_url"`
	CourierName        string `json:"courier_name"`
	Notes              string `json:"notes"`

	Items         []OrderItem        `json:"items,omitempty"`
	StatusHistory []OrderStatusEvent `json:"status_history,omitempty"`
}

// OrderItem snapshots the product at purchase time. Later price changes on
// the product must not change historical orders.
type OrderItem struct {
	BaseModel
	OrderID      uuid.UUID  `gorm:"type:uuid;index" json:"order_id"`
	ProductID    *uuid.UUID `gorm:"type:uuid" json:"product_id"`
	VariantID    *uuid.UUID `gorm:"type:uuid" json:"variant_id"`
	ProductName  string     `json:"product_name"`
	VariantLabel string     `json:"variant_label"`
	Image        string     `json:"image"`
	Quantity     int        `json:"quantity"`
	UnitPrice    float64    `json:"unit_price"`
	LineTotal    float64    `json:"line_total"`
}

// OrderStatusEvent is an append-only history row.
type OrderStatusEvent struct {
	BaseModel
	OrderID    uuid.UUID   `gorm:"type:uuid;index" json:"order_id"`
	Status     OrderStatus `json:"status"`
	Note       string      `json:"note"`
	OccurredAt time.Time   `json:"occurred_at"`
}
