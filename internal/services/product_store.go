package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/lumina/internal/models"
)

// ErrProductNotFound is returned when a referenced product or variant does
// not exist or is inactive.
var ErrProductNotFound = errors.New("product not found")

// ProductStore loads product snapshots for order pricing.
type ProductStore interface {
	GetProduct(id uuid.UUID) (*models.Product, error)
	GetVariant(id uuid.UUID) (*models.ProductVariant, error)
}

type gormProductStore struct {
	db *gorm.DB
}

// NewProductStore returns the GORM-backed ProductStore.
func NewProductStore(db *gorm.DB) ProductStore {
	return &gormProductStore{db: db}
}

func (s *gormProductStore) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.First(&product, "id = ? AND is_active = ?", id, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	return &product, nil
}

func (s *gormProductStore) GetVariant(id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := s.db.First(&variant, "id = ? AND is_active = ?", id, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load variant: %w", err)
	}
	return &variant, nil
}
