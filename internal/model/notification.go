package model

import (
	"time"

	"github.com/google/uuid"
)

// StockAlertType names the threshold-crossing alert fired by the stock ledger.
type StockAlertType string

const (
	AlertLowStock    StockAlertType = "LOW_STOCK"
	AlertOutOfStock  StockAlertType = "OUT_OF_STOCK"
	AlertBackInStock StockAlertType = "BACK_IN_STOCK"
)

// Notification is a persisted alert shown on the admin dashboard. Delivery is
// fire-and-forget; a failed write never aborts the mutation that produced it.
type Notification struct {
	BaseModel
	Type      string     `gorm:"type:varchar(30);not null;index" json:"type"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	MessageAr string     `gorm:"type:text" json:"message_ar"`
	ProductID *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
}

// StockSubscription is a shopper's "notify me when back in stock" request.
type StockSubscription struct {
	BaseModel
	ProductID  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_subs_product_user" json:"product_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_stock_subs_product_user" json:"user_id"`
	NotifiedAt *time.Time `json:"notified_at,omitempty"`
}
