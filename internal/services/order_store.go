package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumina/internal/models"
)

// OrderStore is the persistence boundary for orders. UpdateStatusIfVersion
// must be a single conditional write: the version check and the mutation
// happen in one statement, and zero affected rows is distinguishable from a
// missing order.
type OrderStore interface {
	GetOrder(id uuid.UUID) (*models.Order, error)
	CreateOrder(order *models.Order) error
	UpdateStatusIfVersion(id uuid.UUID, expectedVersion int, fields map[string]any, event *models.OrderStatusEvent) (int64, error)
}

type gormOrderStore struct {
	db *gorm.DB
}

// NewOrderStore returns the GORM-backed OrderStore.
func NewOrderStore(db *gorm.DB) OrderStore {
	return &gormOrderStore{db: db}
}

func (s *gormOrderStore) GetOrder(id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.Preload("Items").
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("occurred_at asc")
		}).
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order: %w", err)
	}
	return &order, nil
}

func (s *gormOrderStore) CreateOrder(order *models.Order) error {
	if err := s.db.Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// UpdateStatusIfVersion applies the mutation with a compare-and-set on the
// version column and appends the history event in the same transaction.
func (s *gormOrderStore) UpdateStatusIfVersion(id uuid.UUID, expectedVersion int, fields map[string]any, event *models.OrderStatusEvent) (int64, error) {
	var affected int64

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"version": expectedVersion + 1}
		for k, v := range fields {
			updates[k] = v
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", id, expectedVersion).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}

		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}

		if event != nil {
			event.OrderID = id
			if err := tx.Create(event).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("conditional status update: %w", err)
	}

	return affected, nil
}
