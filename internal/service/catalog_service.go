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

// ProductFilter narrows catalog listings. Scope nil means all zones.
type ProductFilter struct {
	Scope        model.ZoneList
	CategoryID   *uuid.UUID
	ActiveOnly   bool
	FeaturedOnly bool
}

type CatalogService interface {
	CreateProduct(req *model.Product, actorID string) error
	UpdateProduct(id uuid.UUID, req *model.Product, actorID string) (*model.Product, error)
	GetProduct(id uuid.UUID) (*model.Product, error)
	ListProducts(filter ProductFilter) ([]model.Product, error)

	CreateCategory(req *model.Category, actorID string) error
	ListCategories() ([]model.Category, error)

	SubscribeBackInStock(productID, userID uuid.UUID) error
}

type catalogService struct {
	productRepo      repository.ProductRepository
	categoryRepo     repository.CategoryRepository
	companyRepo      repository.CompanyRepository
	subscriptionRepo repository.StockSubscriptionRepository
}

func NewCatalogService(
	pRepo repository.ProductRepository,
	catRepo repository.CategoryRepository,
	cRepo repository.CompanyRepository,
	sRepo repository.StockSubscriptionRepository,
) CatalogService {
	return &catalogService{
		productRepo:      pRepo,
		categoryRepo:     catRepo,
		companyRepo:      cRepo,
		subscriptionRepo: sRepo,
	}
}

func (s *catalogService) CreateProduct(req *model.Product, actorID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return apperr.InvalidStatef("product", "validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}

	existing, _ := s.productRepo.FindBySKU(req.SKU)
	if existing != nil && existing.ID != uuid.Nil {
		return apperr.Conflictf("product", "SKU already exists")
	}

	if _, err := s.companyRepo.FindByID(req.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("company", "company %s not found", req.CompanyID)
		}
		return apperr.Wrap("company", err)
	}

	req.CreatedBy = actorID
	req.UpdatedBy = actorID
	return apperr.Wrap("product", s.productRepo.Create(req))
}

// UpdateProduct edits catalog fields only. Stock is owned by the inventory
// ledger and is deliberately not writable here.
func (s *catalogService) UpdateProduct(id uuid.UUID, req *model.Product, actorID string) (*model.Product, error) {
	existing, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("product", "product %s not found", id)
		}
		return nil, apperr.Wrap("product", err)
	}

	existing.SKU = req.SKU
	existing.NameEn = req.NameEn
	existing.NameAr = req.NameAr
	existing.DescriptionEn = req.DescriptionEn
	existing.DescriptionAr = req.DescriptionAr
	existing.Price = req.Price
	existing.Cost = req.Cost
	existing.CategoryID = req.CategoryID
	existing.Zones = req.Zones
	existing.IsActive = req.IsActive
	existing.IsFeatured = req.IsFeatured
	existing.UpdatedBy = actorID

	if err := s.productRepo.Update(existing); err != nil {
		return nil, apperr.Wrap("product", err)
	}
	return existing, nil
}

func (s *catalogService) GetProduct(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("product", "product %s not found", id)
		}
		return nil, apperr.Wrap("product", err)
	}
	return product, nil
}

func (s *catalogService) ListProducts(filter ProductFilter) ([]model.Product, error) {
	products, err := s.productRepo.FindAll()
	if err != nil {
		return nil, apperr.Wrap("product", err)
	}

	filtered := make([]model.Product, 0, len(products))
	for _, product := range products {
		if filter.ActiveOnly && !product.IsActive {
			continue
		}
		if filter.FeaturedOnly && !product.IsFeatured {
			continue
		}
		if filter.CategoryID != nil && (product.CategoryID == nil || *product.CategoryID != *filter.CategoryID) {
			continue
		}
		if !policy.InScope(filter.Scope, product.Zones) {
			continue
		}
		filtered = append(filtered, product)
	}
	return filtered, nil
}

func (s *catalogService) CreateCategory(req *model.Category, actorID string) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		first := errs[0]
		return apperr.InvalidStatef("category", "validation failed: field '%s' failed on tag '%s'", first.FailedField, first.Tag)
	}
	req.CreatedBy = actorID
	req.UpdatedBy = actorID
	return apperr.Wrap("category", s.categoryRepo.Create(req))
}

func (s *catalogService) ListCategories() ([]model.Category, error) {
	categories, err := s.categoryRepo.FindAll()
	return categories, apperr.Wrap("category", err)
}

func (s *catalogService) SubscribeBackInStock(productID, userID uuid.UUID) error {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("product", "product %s not found", productID)
		}
		return apperr.Wrap("product", err)
	}
	if product.Stock > 0 {
		return apperr.InvalidStatef("product", "product '%s' is in stock", product.NameEn)
	}
	return apperr.Wrap("subscription", s.subscriptionRepo.Subscribe(productID, userID))
}
