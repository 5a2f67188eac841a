package repository

import (
	"time"

	"lilium-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(notification *model.Notification) error
	FindRecent(limit int) ([]model.Notification, error)
	MarkRead(id uuid.UUID) error
}

type notificationRepo struct {
	db *gorm.DB
}

func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db}
}

func (r *notificationRepo) Create(notification *model.Notification) error {
	return r.db.Create(notification).Error
}

func (r *notificationRepo) FindRecent(limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.Order("created_at DESC").Limit(limit).Find(&notifications).Error
	return notifications, err
}

func (r *notificationRepo) MarkRead(id uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&model.Notification{}).
		Where("id = ?", id).
		Update("read_at", now).Error
}

type StockSubscriptionRepository interface {
	Subscribe(productID, userID uuid.UUID) error
	PendingByProduct(productID uuid.UUID) ([]model.StockSubscription, error)
	MarkNotified(ids []uuid.UUID) error
}

type stockSubscriptionRepo struct {
	db *gorm.DB
}

func NewStockSubscriptionRepo(db *gorm.DB) StockSubscriptionRepository {
	return &stockSubscriptionRepo{db}
}

// Subscribe is idempotent: a duplicate request for the same product/user pair
// leaves the existing subscription untouched.
func (r *stockSubscriptionRepo) Subscribe(productID, userID uuid.UUID) error {
	var existing model.StockSubscription
	err := r.db.First(&existing, "product_id = ? AND user_id = ?", productID, userID).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.Create(&model.StockSubscription{
		ProductID: productID,
		UserID:    userID,
	}).Error
}

func (r *stockSubscriptionRepo) PendingByProduct(productID uuid.UUID) ([]model.StockSubscription, error) {
	var subs []model.StockSubscription
	err := r.db.Where("product_id = ? AND notified_at IS NULL", productID).Find(&subs).Error
	return subs, err
}

func (r *stockSubscriptionRepo) MarkNotified(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.Model(&model.StockSubscription{}).
		Where("id IN ?", ids).
		Update("notified_at", now).Error
}
