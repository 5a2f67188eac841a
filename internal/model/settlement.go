package model

import (
	"time"

	"github.com/google/uuid"
)

type SettlementStatus string

const (
	SettlementPending  SettlementStatus = "PENDING"
	SettlementVerified SettlementStatus = "VERIFIED"
	SettlementSettled  SettlementStatus = "SETTLED"
	SettlementDisputed SettlementStatus = "DISPUTED"
)

// Settlement is the persisted financial split for a company over a period.
// The composite unique index prevents duplicate settlements for the same
// company and period.
type Settlement struct {
	BaseModel
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_settlements_company_period" json:"company_id"`
	Company     *Company  `json:"company,omitempty"`
	PeriodStart time.Time `gorm:"not null;uniqueIndex:idx_settlements_company_period" json:"period_start"`
	PeriodEnd   time.Time `gorm:"not null;uniqueIndex:idx_settlements_company_period" json:"period_end"`

	CommissionRate  float64 `gorm:"not null" json:"commission_rate"` // fraction snapshot, e.g. 0.10
	TotalRevenue    float64 `gorm:"not null" json:"total_revenue"`
	TotalCommission float64 `gorm:"not null" json:"total_commission"`
	TotalPayout     float64 `gorm:"not null" json:"total_payout"`
	CashCollected   float64 `gorm:"not null" json:"cash_collected"`
	CashToRemit     float64 `gorm:"not null" json:"cash_to_remit"`
	OrderCount      int     `gorm:"not null" json:"order_count"`

	Status        SettlementStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	VerifiedBy    string           `gorm:"type:varchar(255)" json:"verified_by,omitempty"`
	VerifiedAt    *time.Time       `json:"verified_at,omitempty"`
	SettledAt     *time.Time       `json:"settled_at,omitempty"`
	DisputeReason string           `json:"dispute_reason,omitempty"`
}
