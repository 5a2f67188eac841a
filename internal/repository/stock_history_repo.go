package repository

import (
	"time"

	"lilium-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockHistoryRepository interface {
	Create(tx *gorm.DB, entry *model.StockHistory) error
	FindByProduct(productID uuid.UUID, limit int) ([]model.StockHistory, error)
	FindAll(limit int) ([]model.StockHistory, error)
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
}

// StockMovementData is one day of aggregated ledger activity for charts.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type stockHistoryRepo struct {
	db *gorm.DB
}

func NewStockHistoryRepo(db *gorm.DB) StockHistoryRepository {
	return &stockHistoryRepo{db}
}

// Create takes *gorm.DB so the ledger entry commits atomically with the
// product stock write it records.
func (r *stockHistoryRepo) Create(tx *gorm.DB, entry *model.StockHistory) error {
	return tx.Create(entry).Error
}

func (r *stockHistoryRepo) FindByProduct(productID uuid.UUID, limit int) ([]model.StockHistory, error) {
	var entries []model.StockHistory
	err := r.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *stockHistoryRepo) FindAll(limit int) ([]model.StockHistory, error) {
	var entries []model.StockHistory
	err := r.db.Preload("Product").Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}

func (r *stockHistoryRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	var results []StockMovementData

	rows, err := r.db.Model(&model.StockHistory{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN quantity_delta > 0 THEN quantity_delta ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN quantity_delta < 0 THEN -quantity_delta ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		results = append(results, data)
	}

	return results, nil
}
