package repository

import (
	"lilium-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyRepository interface {
	Create(company *model.Company) error
	FindAll() ([]model.Company, error)
	FindByID(id uuid.UUID) (*model.Company, error)
	Update(company *model.Company) error
	Delete(id uuid.UUID, deletedBy string) error
}

type companyRepo struct {
	db *gorm.DB
}

func NewCompanyRepo(db *gorm.DB) CompanyRepository {
	return &companyRepo{db}
}

func (r *companyRepo) Create(company *model.Company) error {
	return r.db.Create(company).Error
}

func (r *companyRepo) FindAll() ([]model.Company, error) {
	var companies []model.Company
	err := r.db.Find(&companies).Error
	return companies, err
}

func (r *companyRepo) FindByID(id uuid.UUID) (*model.Company, error) {
	var company model.Company
	err := r.db.First(&company, "id = ?", id).Error
	return &company, err
}

func (r *companyRepo) Update(company *model.Company) error {
	return r.db.Save(company).Error
}

func (r *companyRepo) Delete(id uuid.UUID, deletedBy string) error {
	if err := r.db.Model(&model.Company{}).Where("id = ?", id).
		Update("deleted_by", deletedBy).Error; err != nil {
		return err
	}
	return r.db.Delete(&model.Company{}, "id = ?", id).Error
}
