package services

import "github.com/example/lumina/internal/models"

// statusTransitions is the full order lifecycle. Delivered and cancelled are
// terminal: they have no outgoing transitions.
var statusTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
	models.OrderStatusProcessing: {models.OrderStatusShipped},
	models.OrderStatusShipped:    {models.OrderStatusDelivered},
}

// IsValidStatus reports whether s is one of the known order statuses.
func IsValidStatus(s models.OrderStatus) bool {
	switch s {
	case models.OrderStatusPending, models.OrderStatusConfirmed, models.OrderStatusProcessing,
		models.OrderStatusShipped, models.OrderStatusDelivered, models.OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminalStatus reports whether s admits no further transitions.
func IsTerminalStatus(s models.OrderStatus) bool {
	return s == models.OrderStatusDelivered || s == models.OrderStatusCancelled
}

// ValidateTransition checks whether requested is reachable from current.
func ValidateTransition(current, requested models.OrderStatus) error {
	for _, next := range statusTransitions[current] {
		if next == requested {
			return nil
		}
	}
	return &IllegalTransitionError{From: current, To: requested}
}

// CanCancel reports whether an order in the given status may still be
// cancelled. Cancelling later states is rejected, not silently ignored.
func CanCancel(current models.OrderStatus) bool {
	return current == models.OrderStatusPending || current == models.OrderStatusConfirmed
}
