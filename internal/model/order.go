package model

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderPreparing OrderStatus = "PREPARING"
	OrderOnTheWay  OrderStatus = "ON_THE_WAY"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "CASH_ON_DELIVERY"
	PaymentOnline         PaymentMethod = "ONLINE"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Order may contain items from multiple companies; each item freezes its
// owning company, unit price and quantity at order time.
type Order struct {
	BaseModel
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User         `json:"user,omitempty"`
	Status        OrderStatus   `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(30);not null" json:"payment_method"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"payment_status"`
	Zone          string        `gorm:"type:varchar(50);not null" json:"zone"`
	DeliveryFee   float64       `gorm:"default:0" json:"delivery_fee"`
	DeliveredAt   *time.Time    `json:"delivered_at,omitempty"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CollectedBy   string        `gorm:"type:varchar(255)" json:"collected_by,omitempty"`
	Note          string        `json:"note"`

	Items []OrderItem `json:"items"`
}

type OrderItem struct {
	BaseModel
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index" json:"company_id"`
	UnitPrice float64   `gorm:"not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
}

// ItemsTotal is the order's item revenue, excluding the delivery fee.
func (o *Order) ItemsTotal() float64 {
	var total float64
	for _, item := range o.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	return total
}

// CompanyTotal is the slice of item revenue belonging to one company.
func (o *Order) CompanyTotal(companyID uuid.UUID) float64 {
	var total float64
	for _, item := range o.Items {
		if item.CompanyID == companyID {
			total += item.UnitPrice * float64(item.Quantity)
		}
	}
	return total
}

// Total is what the customer pays: items plus delivery fee.
func (o *Order) Total() float64 {
	return o.ItemsTotal() + o.DeliveryFee
}

// orderTransitions defines the allowed status lifecycle. CANCELLED is reachable
// from any state before DELIVERED.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderConfirmed, OrderCancelled},
	OrderConfirmed: {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderOnTheWay, OrderCancelled},
	OrderOnTheWay:  {OrderDelivered, OrderCancelled},
	OrderDelivered: {},
	OrderCancelled: {},
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (o *Order) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[o.Status] {
		if allowed == next {
			return true
		}
	}
	return false
}

// StockDeducted reports whether this order's stock has been taken from
// inventory (deduction happens on confirmation).
func (o *Order) StockDeducted() bool {
	switch o.Status {
	case OrderConfirmed, OrderPreparing, OrderOnTheWay, OrderDelivered:
		return true
	}
	return false
}
