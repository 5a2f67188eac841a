package repository

import (
	"time"

	"lilium-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	Create(order *model.Order) error
	FindByID(id uuid.UUID) (*model.Order, error)
	FindByUser(userID uuid.UUID) ([]model.Order, error)
	FindRecent(limit int) ([]model.Order, error)
	Save(order *model.Order) error
	CountByStatus(status model.OrderStatus) (int64, error)

	DeliveredForCompany(companyID uuid.UUID, start, end time.Time) ([]model.Order, error)
	ByStatusesForCompany(companyID uuid.UUID, statuses []model.OrderStatus, start, end time.Time) ([]model.Order, error)
	PendingCashForCompany(companyID uuid.UUID) ([]model.Order, error)
	DeliveredInRange(start, end time.Time) ([]model.Order, error)
	MarkCashCollected(id uuid.UUID, collectedBy string, at time.Time) (int64, error)

	SoldQuantitiesSince(since time.Time) (map[uuid.UUID]int, error)
	DeliveredItemRevenue(start, end time.Time) (float64, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(order *model.Order) error {
	return r.db.Create(order).Error
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("Items").Preload("Items.Product").First(&order, "id = ?", id).Error
	return &order, err
}

func (r *orderRepo) FindByUser(userID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindRecent(limit int) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").Order("created_at DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Save(order *model.Order) error {
	return r.db.Save(order).Error
}

func (r *orderRepo) CountByStatus(status model.OrderStatus) (int64, error) {
	var count int64
	err := r.db.Model(&model.Order{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// companyOrderIDs scopes a query to orders containing at least one item owned
// by the company. Settlement figures are then computed over the company's
// items only.
func (r *orderRepo) companyOrderIDs(companyID uuid.UUID) *gorm.DB {
	return r.db.Model(&model.OrderItem{}).
		Select("order_id").
		Where("company_id = ?", companyID)
}

func (r *orderRepo) DeliveredForCompany(companyID uuid.UUID, start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").
		Where("status = ?", model.OrderDelivered).
		Where("delivered_at BETWEEN ? AND ?", start, end).
		Where("id IN (?)", r.companyOrderIDs(companyID)).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) ByStatusesForCompany(companyID uuid.UUID, statuses []model.OrderStatus, start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").
		Where("status IN ?", statuses).
		Where("created_at BETWEEN ? AND ?", start, end).
		Where("id IN (?)", r.companyOrderIDs(companyID)).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) PendingCashForCompany(companyID uuid.UUID) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").
		Where("status = ? AND payment_method = ? AND payment_status <> ?",
			model.OrderDelivered, model.PaymentCashOnDelivery, model.PaymentPaid).
		Where("id IN (?)", r.companyOrderIDs(companyID)).
		Order("delivered_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) DeliveredInRange(start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Preload("Items").
		Where("status = ?", model.OrderDelivered).
		Where("delivered_at BETWEEN ? AND ?", start, end).
		Find(&orders).Error
	return orders, err
}

// MarkCashCollected flips the order to PAID. The status guard lives in the
// WHERE clause so concurrent collectors cannot both succeed; zero affected
// rows means the order was already paid.
func (r *orderRepo) MarkCashCollected(id uuid.UUID, collectedBy string, at time.Time) (int64, error) {
	result := r.db.Model(&model.Order{}).
		Where("id = ? AND payment_status <> ?", id, model.PaymentPaid).
		Updates(map[string]interface{}{
			"payment_status": model.PaymentPaid,
			"paid_at":        at,
			"collected_by":   collectedBy,
		})
	return result.RowsAffected, result.Error
}

// SoldQuantitiesSince aggregates units sold per product over the trailing
// window, excluding cancelled orders. Feeds restock-velocity analytics.
func (r *orderRepo) SoldQuantitiesSince(since time.Time) (map[uuid.UUID]int, error) {
	rows, err := r.db.Model(&model.OrderItem{}).
		Select("order_items.product_id, COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", model.OrderCancelled).
		Where("orders.created_at >= ?", since).
		Group("order_items.product_id").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sold := make(map[uuid.UUID]int)
	for rows.Next() {
		var productID uuid.UUID
		var qty int
		if err := rows.Scan(&productID, &qty); err != nil {
			return nil, err
		}
		sold[productID] = qty
	}
	return sold, nil
}

func (r *orderRepo) DeliveredItemRevenue(start, end time.Time) (float64, error) {
	var total float64
	err := r.db.Model(&model.OrderItem{}).
		Select("COALESCE(SUM(order_items.unit_price * order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", model.OrderDelivered).
		Where("orders.delivered_at BETWEEN ? AND ?", start, end).
		Scan(&total).Error
	return total, err
}
