package service

import (
	"errors"

	"lilium-backend/internal/apperr"
	"lilium-backend/internal/model"
	"lilium-backend/internal/policy"
	"lilium-backend/internal/repository"
	"lilium-backend/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyService interface {
	CreateCompany(req *model.Company, actorID string) error
	UpdateCompany(id uuid.UUID, req *model.Company, actorID string) (*model.Company, error)
	GetCompany(id uuid.UUID) (*model.Company, error)
	ListCompanies(scope model.ZoneList) ([]model.Company, error)
}

type companyService struct {
	companyRepo repository.CompanyRepository
}

func NewCompanyService(cRepo repository.CompanyRepository) CompanyService {
	return &companyService{companyRepo: cRepo}
}

func (s *companyService) CreateCompany(req *model.Company, actorID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return apperr.InvalidStatef("company", "validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	req.CreatedBy = actorID
	req.UpdatedBy = actorID
	return apperr.Wrap("company", s.companyRepo.Create(req))
}

func (s *companyService) UpdateCompany(id uuid.UUID, req *model.Company, actorID string) (*model.Company, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return nil, apperr.InvalidStatef("company", "validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	existing, err := s.companyRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("company", "company %s not found", id)
		}
		return nil, apperr.Wrap("company", err)
	}

	existing.NameEn = req.NameEn
	existing.NameAr = req.NameAr
	existing.CommissionRate = req.CommissionRate
	existing.Zones = req.Zones
	existing.DeliveryFees = req.DeliveryFees
	existing.MinOrderAmount = req.MinOrderAmount
	existing.IsActive = req.IsActive
	existing.UpdatedBy = actorID

	if err := s.companyRepo.Update(existing); err != nil {
		return nil, apperr.Wrap("company", err)
	}
	return existing, nil
}

func (s *companyService) GetCompany(id uuid.UUID) (*model.Company, error) {
	company, err := s.companyRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("company", "company %s not found", id)
		}
		return nil, apperr.Wrap("company", err)
	}
	return company, nil
}

func (s *companyService) ListCompanies(scope model.ZoneList) ([]model.Company, error) {
	companies, err := s.companyRepo.FindAll()
	if err != nil {
		return nil, apperr.Wrap("company", err)
	}

	filtered := make([]model.Company, 0, len(companies))
	for _, company := range companies {
		if policy.InScope(scope, company.Zones) {
			filtered = append(filtered, company)
		}
	}
	return filtered, nil
}
