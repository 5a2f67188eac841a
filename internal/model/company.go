package model

// Company is a vendor selling through the platform. CommissionRate is the
// percentage of item revenue retained by the platform (0-100); zero means
// "not set" and the configured default applies.
type Company struct {
	BaseModel
	NameEn         string           `gorm:"type:varchar(255);not null" json:"name_en" validate:"required"`
	NameAr         string           `gorm:"type:varchar(255);not null" json:"name_ar" validate:"required"`
	CommissionRate float64          `gorm:"default:0" json:"commission_rate" validate:"gte=0,lte=100"`
	Zones          ZoneList         `gorm:"serializer:json" json:"zones"`
	DeliveryFees   DeliveryFeeTable `gorm:"serializer:json" json:"delivery_fees"`
	MinOrderAmount float64          `gorm:"default:0" json:"min_order_amount" validate:"gte=0"`
	IsActive       bool             `gorm:"default:true" json:"is_active"`

	Products []Product `json:"products,omitempty"`
}

// EffectiveCommissionRate returns the fraction (not percent) applied to revenue.
func (c *Company) EffectiveCommissionRate(defaultPct float64) float64 {
	if c.CommissionRate <= 0 {
		return defaultPct / 100
	}
	return c.CommissionRate / 100
}
