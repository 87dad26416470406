package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/lumina/internal/models"
)

func TestRenderOrderMessage(t *testing.T) {
	code := "FESTIVE20"
	order := &models.Order{
		OrderNumber:    "LUM-42",
		Status:         models.OrderStatusShipped,
		Currency:       "INR",
		Subtotal:       2000,
		Discount:       400,
		DeliveryCharge: 90,
		Tax:            169,
		Total:          1859,
		CouponCode:     &code,
		TrackingNumber: "AWB123",
		CourierName:    "BlueDart",
		Items: []models.OrderItem{
			{ProductName: "Solitaire Ring", VariantLabel: "Size 12", Quantity: 2, UnitPrice: 1000},
		},
	}

	msg := RenderOrderMessage(TemplateOrderShipped, order)

	assert.Contains(t, msg, "LUM-42")
	assert.Contains(t, msg, "Solitaire Ring (Size 12) x2")
	assert.Contains(t, msg, "FESTIVE20")
	assert.Contains(t, msg, "AWB123 via BlueDart")
	assert.Contains(t, msg, "1,859.00 INR")
}

func TestRenderOrderMessageCancelled(t *testing.T) {
	order := &models.Order{
		OrderNumber:        "LUM-43",
		Status:             models.OrderStatusCancelled,
		PaymentStatus:      models.PaymentStatusRefunded,
		CancellationReason: "out of stock",
		Total:              500,
	}

	msg := RenderOrderMessage(TemplateOrderCancelled, order)
	assert.Contains(t, msg, "out of stock")
	assert.Contains(t, msg, "Refund initiated")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "1,234,567.89 INR", FormatPrice(1234567.89, "INR"))
	assert.Equal(t, "999.00 INR", FormatPrice(999, ""))
	assert.Equal(t, "0.50 USD", FormatPrice(0.5, "USD"))
}
