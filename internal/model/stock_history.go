package model

import "github.com/google/uuid"

// StockEventType classifies a stock-affecting event.
type StockEventType string

const (
	StockEventRestock    StockEventType = "restock"
	StockEventAdjustment StockEventType = "adjustment"
	StockEventReturn     StockEventType = "return"
	StockEventSale       StockEventType = "sale"
)

// StockHistory is an immutable ledger entry created atomically alongside every
// product stock mutation. NewStock == PreviousStock + QuantityDelta always
// holds; sale deltas are negative.
type StockHistory struct {
	BaseModel
	ProductID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product       `json:"product,omitempty" validate:"-"`
	Type          StockEventType `gorm:"type:varchar(20);not null" json:"type"`
	QuantityDelta int            `gorm:"not null" json:"quantity_delta"`
	PreviousStock int            `gorm:"not null" json:"previous_stock"`
	NewStock      int            `gorm:"not null" json:"new_stock"`
	OrderID       *uuid.UUID     `gorm:"type:uuid;index" json:"order_id,omitempty"`
	Note          string         `json:"note"`
	ActorID       string         `gorm:"type:varchar(255)" json:"actor_id"`
}
