package repository

import (
	"time"

	"lilium-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettlementRepository interface {
	Create(settlement *model.Settlement) error
	FindByID(id uuid.UUID) (*model.Settlement, error)
	FindByCompanyPeriod(companyID uuid.UUID, periodStart, periodEnd time.Time) (*model.Settlement, error)
	FindByCompany(companyID uuid.UUID) ([]model.Settlement, error)
	Update(settlement *model.Settlement) error
}

type settlementRepo struct {
	db *gorm.DB
}

func NewSettlementRepo(db *gorm.DB) SettlementRepository {
	return &settlementRepo{db}
}

func (r *settlementRepo) Create(settlement *model.Settlement) error {
	return r.db.Create(settlement).Error
}

func (r *settlementRepo) FindByID(id uuid.UUID) (*model.Settlement, error) {
	var settlement model.Settlement
	err := r.db.Preload("Company").First(&settlement, "id = ?", id).Error
	return &settlement, err
}

func (r *settlementRepo) FindByCompanyPeriod(companyID uuid.UUID, periodStart, periodEnd time.Time) (*model.Settlement, error) {
	var settlement model.Settlement
	err := r.db.First(&settlement,
		"company_id = ? AND period_start = ? AND period_end = ?",
		companyID, periodStart, periodEnd).Error
	return &settlement, err
}

func (r *settlementRepo) FindByCompany(companyID uuid.UUID) ([]model.Settlement, error) {
	var settlements []model.Settlement
	err := r.db.Where("company_id = ?", companyID).
		Order("period_start DESC").Find(&settlements).Error
	return settlements, err
}

func (r *settlementRepo) Update(settlement *model.Settlement) error {
	return r.db.Save(settlement).Error
}
