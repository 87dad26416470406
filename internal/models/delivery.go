package models

// DeliverySettings holds the business origin and the per-zone delivery
// charges. The service always reads the most recently updated row.
type DeliverySettings struct {
	BaseModel
	OriginPincode string  `json:"origin_pincode"`
	OriginCity    string  `json:"origin_city"`
	OriginState   string  `json:"origin_state"`
	OriginLat     float64 `json:"origin_lat"`
	OriginLon     float64 `json:"origin_lon"`

	LocalCharge    float64 `json:"local_charge"`
	CityCharge     float64 `json:"city_charge"`
	StateCharge    float64 `json:"state_charge"`
	NationalCharge float64 `json:"national_charge"`

	FreeShippingThreshold float64 `json:"free_shipping_threshold"`
	FreeShippingEnabled   bool    `json:"free_shipping_enabled"`
}

// DeliveryZone classifies how far a destination is from the origin.
type DeliveryZone string

const (
	ZoneLocal    DeliveryZone = "local"
	ZoneCity     DeliveryZone = "city"
	ZoneState    DeliveryZone = "state"
	ZoneNational DeliveryZone = "national"
)

// Charge returns the configured charge for a zone.
func (s *DeliverySettings) Charge(zone DeliveryZone) float64 {
	switch zone {
	case ZoneLocal:
		return s.LocalCharge
	case ZoneCity:
		return s.CityCharge
	case ZoneState:
		return s.StateCharge
	default:
		return s.NationalCharge
	}
}
