package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/example/lumina/internal/models"
)

// TemplateKind selects which order notification message to render.
type TemplateKind string

const (
	TemplateOrderConfirmed TemplateKind = "order_confirmed"
	TemplateStatusUpdated  TemplateKind = "status_updated"
	TemplateOrderShipped   TemplateKind = "order_shipped"
	TemplateOrderDelivered TemplateKind = "order_delivered"
	TemplateOrderCancelled TemplateKind = "order_cancelled"
)

// RenderOrderMessage renders the admin notification text for an order event.
// It is a pure function of its inputs; delivery is a separate concern.
func RenderOrderMessage(kind TemplateKind, order *models.Order) string {
	var b strings.Builder

	switch kind {
	case TemplateOrderConfirmed:
		b.WriteString("🛍 <b>New order</b>\n")
	case TemplateOrderShipped:
		b.WriteString("📦 <b>Order shipped</b>\n")
	case TemplateOrderDelivered:
		b.WriteString("✅ <b>Order delivered</b>\n")
	case TemplateOrderCancelled:
		b.WriteString("❌ <b>Order cancelled</b>\n")
	default:
		b.WriteString("ℹ️ <b>Order updated</b>\n")
	}

	fmt.Fprintf(&b, "Order: %s\n", order.OrderNumber)
	fmt.Fprintf(&b, "Status: %s\n", order.Status)

	for _, item := range order.Items {
		fmt.Fprintf(&b, "• %s", item.ProductName)
		if item.VariantLabel != "" {
			fmt.Fprintf(&b, " (%s)", item.VariantLabel)
		}
		fmt.Fprintf(&b, " x%d — %s\n", item.Quantity, FormatPrice(item.UnitPrice, order.Currency))
	}

	if order.Discount > 0 {
		fmt.Fprintf(&b, "Discount: -%s", FormatPrice(order.Discount, order.Currency))
		if order.CouponCode != nil {
			fmt.Fprintf(&b, " (%s)", *order.CouponCode)
		}
		b.WriteString("\n")
	}
	if order.DeliveryCharge > 0 {
		fmt.Fprintf(&b, "Delivery: %s\n", FormatPrice(order.DeliveryCharge, order.Currency))
	}
	fmt.Fprintf(&b, "Total: %s\n", FormatPrice(order.Total, order.Currency))

	switch kind {
	case TemplateOrderShipped:
		fmt.Fprintf(&b, "Tracking: %s", order.TrackingNumber)
		if order.CourierName != "" {
			fmt.Fprintf(&b, " via %s", order.CourierName)
		}
		b.WriteString("\n")
	case TemplateOrderCancelled:
		if order.CancellationReason != "" {
			fmt.Fprintf(&b, "Reason: %s\n", order.CancellationReason)
		}
		if order.PaymentStatus == models.PaymentStatusRefunded {
			b.WriteString("Refund initiated\n")
		}
	}

	return b.String()
}

// FormatPrice formats a price with thousand separators and currency.
func FormatPrice(amount float64, currency string) string {
	if currency == "" {
		currency = "INR"
	}

	str := fmt.Sprintf("%.2f", amount)
	whole, frac, _ := strings.Cut(str, ".")

	var result strings.Builder
	length := len(whole)
	for i, digit := range whole {
		if i > 0 && (length-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}

	return result.String() + "." + frac + " " + currency
}

// TelegramService delivers order notifications to the admin chat.
type TelegramService struct {
	botToken    string
	adminChatID string
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to the specified chat.
func (s *TelegramService) SendMessage(chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.botToken)

	msg := telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("[Telegram] Failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}

	return nil
}

// NotifyOrderEvent renders the message for an order event and sends it to
// the admin chat.
func (s *TelegramService) NotifyOrderEvent(kind TemplateKind, order *models.Order) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(s.adminChatID, RenderOrderMessage(kind, order))
}
