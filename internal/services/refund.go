package services

import (
	"log"

	"github.com/example/lumina/internal/models"
)

// RefundService records that a refund should be initiated for a cancelled
// paid order. The payment provider integration picks these signals up; the
// order core only emits them.
type RefundService struct{}

// NewRefundService constructs RefundService.
func NewRefundService() *RefundService {
	return &RefundService{}
}

// InitiateRefund signals a refund for the order.
func (s *RefundService) InitiateRefund(order *models.Order) error {
	log.Printf("[Refund] initiating refund of %s for order %s", FormatPrice(order.Total, order.Currency), order.OrderNumber)
	return nil
}
