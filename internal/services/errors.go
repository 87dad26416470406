package services

import (
	"errors"
	"fmt"

	"github.com/example/lumina/internal/models"
)

// ErrOrderNotFound is returned when an order id does not exist.
var ErrOrderNotFound = errors.New("order not found")

// ErrDeliverySettingsMissing is returned when no delivery settings row has
// been configured; the resolver never silently falls back to a zero charge.
var ErrDeliverySettingsMissing = errors.New("delivery settings not configured")

// ValidationError reports malformed or incomplete input. Nothing is mutated
// when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IllegalTransitionError reports a status change the state machine forbids.
type IllegalTransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal status transition %s -> %s", e.From, e.To)
}

// ConflictError reports an optimistic-concurrency failure. CurrentVersion is
// the version now persisted; the caller must reload before retrying.
type ConflictError struct {
	CurrentVersion int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version conflict, current version is %d", e.CurrentVersion)
}
