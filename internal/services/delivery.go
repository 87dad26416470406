package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/example/lumina/internal/models"
)

// ClassifyZone maps a destination to a delivery zone, first match wins:
// same pincode is local, same city is city, same state is state, anything
// else is national. City and state compare case-insensitively.
func ClassifyZone(settings *models.DeliverySettings, dest models.ShippingAddress) models.DeliveryZone {
	if samePlace(settings.OriginPincode, dest.Pincode) {
		return models.ZoneLocal
	}
	if samePlace(settings.OriginCity, dest.City) {
		return models.ZoneCity
	}
	if samePlace(settings.OriginState, dest.State) {
		return models.ZoneState
	}
	return models.ZoneNational
}

func samePlace(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}

// ResolveCharge computes the delivery charge for a destination given the
// configured settings. The charge is zero only when free shipping explicitly
// applies; there is no silent zero fallback.
func ResolveCharge(settings *models.DeliverySettings, dest models.ShippingAddress, subtotal float64) float64 {
	if settings.FreeShippingEnabled && subtotal >= settings.FreeShippingThreshold {
		return 0
	}
	return settings.Charge(ClassifyZone(settings, dest))
}

// DeliveryService resolves delivery charges from the persisted settings.
type DeliveryService struct {
	db *gorm.DB
}

// NewDeliveryService constructs DeliveryService.
func NewDeliveryService(db *gorm.DB) *DeliveryService {
	return &DeliveryService{db: db}
}

// Settings returns the most recently updated settings row.
func (s *DeliveryService) Settings() (*models.DeliverySettings, error) {
	var settings models.DeliverySettings
	err := s.db.Order("updated_at desc").First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDeliverySettingsMissing
	}
	if err != nil {
		return nil, fmt.Errorf("delivery settings: %w", err)
	}
	return &settings, nil
}

// ResolveCharge loads the latest settings and resolves the charge for the
// destination.
func (s *DeliveryService) ResolveCharge(dest models.ShippingAddress, subtotal float64) (float64, error) {
	settings, err := s.Settings()
	if err != nil {
		return 0, err
	}
	return ResolveCharge(settings, dest, subtotal), nil
}
