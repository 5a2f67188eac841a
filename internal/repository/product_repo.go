package repository

import (
	"lilium-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll() ([]model.Product, error)
	FindByID(id uuid.UUID) (*model.Product, error)
	FindBySKU(sku string) (*model.Product, error)
	FindByCompany(companyID uuid.UUID) ([]model.Product, error)
	Update(product *model.Product) error
	AdjustStock(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) (int64, error)
	SetStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error
	CountAll() (int64, error)
	CountStockAtOrBelow(threshold int) (int64, error)
	StockValuation() (float64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return r.db.Create(product).Error
}

func (r *productRepo) FindAll() ([]model.Product, error) {
	var products []model.Product
	err := r.db.Preload("Category").Preload("Company").Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Category").Preload("Company").First(&product, "id = ?", id).Error
	return &product, err
}

func (r *productRepo) FindBySKU(sku string) (*model.Product, error) {
	var product model.Product
	err := r.db.First(&product, "sku = ?", sku).Error
	return &product, err
}

func (r *productRepo) FindByCompany(companyID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("company_id = ?", companyID).Find(&products).Error
	return products, err
}

func (r *productRepo) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

// AdjustStock applies a relative stock change evaluated server-side
// (stock = stock + delta) so concurrent mutations cannot clobber each other.
// The guard rejects updates that would drive stock negative; callers must
// check the returned row count. Takes *gorm.DB so it can run inside a
// transaction next to the history insert.
func (r *productRepo) AdjustStock(tx *gorm.DB, id uuid.UUID, delta int, updatedBy string) (int64, error) {
	res := tx.Model(&model.Product{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_by": updatedBy,
		})
	return res.RowsAffected, res.Error
}

// SetStock writes an absolute stock value (used for ADJUSTMENT events).
func (r *productRepo) SetStock(tx *gorm.DB, id uuid.UUID, newStock int, updatedBy string) error {
	return tx.Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      newStock,
			"updated_by": updatedBy,
		}).Error
}

func (r *productRepo) CountAll() (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Count(&count).Error
	return count, err
}

func (r *productRepo) CountStockAtOrBelow(threshold int) (int64, error) {
	var count int64
	err := r.db.Model(&model.Product{}).Where("stock <= ?", threshold).Count(&count).Error
	return count, err
}

// StockValuation returns the inventory value at cost.
func (r *productRepo) StockValuation() (float64, error) {
	var total float64
	err := r.db.Model(&model.Product{}).
		Select("COALESCE(SUM(stock * cost), 0)").
		Scan(&total).Error
	return total, err
}
