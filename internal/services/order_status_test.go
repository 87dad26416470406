package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/lumina/internal/models"
)

func TestValidateTransitionMatrix(t *testing.T) {
	all := []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusConfirmed,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	}

	legal := map[models.OrderStatus][]models.OrderStatus{
		models.OrderStatusPending:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
		models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
		models.OrderStatusProcessing: {models.OrderStatusShipped},
		models.OrderStatusShipped:    {models.OrderStatusDelivered},
		models.OrderStatusDelivered:  {},
		models.OrderStatusCancelled:  {},
	}

	for _, from := range all {
		for _, to := range all {
			err := ValidateTransition(from, to)

			allowed := false
			for _, next := range legal[from] {
				if next == to {
					allowed = true
				}
			}

			if allowed {
				assert.NoError(t, err, "%s -> %s should be legal", from, to)
			} else {
				var illegal *IllegalTransitionError
				assert.ErrorAs(t, err, &illegal, "%s -> %s should be illegal", from, to)
				if illegal != nil {
					assert.Equal(t, from, illegal.From)
					assert.Equal(t, to, illegal.To)
				}
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, IsTerminalStatus(models.OrderStatusDelivered))
	assert.True(t, IsTerminalStatus(models.OrderStatusCancelled))
	assert.False(t, IsTerminalStatus(models.OrderStatusPending))
	assert.False(t, IsTerminalStatus(models.OrderStatusShipped))
}

func TestCanCancel(t *testing.T) {
	assert.True(t, CanCancel(models.OrderStatusPending))
	assert.True(t, CanCancel(models.OrderStatusConfirmed))
	assert.False(t, CanCancel(models.OrderStatusProcessing))
	assert.False(t, CanCancel(models.OrderStatusShipped))
	assert.False(t, CanCancel(models.OrderStatusDelivered))
	assert.False(t, CanCancel(models.OrderStatusCancelled))
}

func TestIsValidStatus(t *testing.T) {
	assert.True(t, IsValidStatus(models.OrderStatusProcessing))
	assert.False(t, IsValidStatus(models.OrderStatus("returned")))
	assert.False(t, IsValidStatus(models.OrderStatus("")))
}
