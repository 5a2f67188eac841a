package service

import (
	"testing"

	"lilium-backend/internal/apperr"
	"lilium-backend/internal/model"
	"lilium-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newCatalogFixture(t *testing.T) (CatalogService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewCatalogService(
		repository.NewProductRepo(db),
		repository.NewCategoryRepo(db),
		repository.NewCompanyRepo(db),
		repository.NewStockSubscriptionRepo(db),
	)
	return svc, db
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	svc, db := newCatalogFixture(t)
	company := seedCompany(t, db, 0)
	seedProduct(t, db, company.ID, "SKU-1", 1000, 10)

	err := svc.CreateProduct(&model.Product{
		SKU:       "SKU-1",
		NameEn:    "Duplicate",
		NameAr:    "مكرر",
		Price:     2000,
		CompanyID: company.ID,
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestCreateProductUnknownCompany(t *testing.T) {
	svc, _ := newCatalogFixture(t)

	err := svc.CreateProduct(&model.Product{
		SKU:       "SKU-1",
		NameEn:    "Orphan",
		NameAr:    "يتيم",
		Price:     2000,
		CompanyID: uuid.New(),
	}, "admin")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestUpdateProductNeverTouchesStock(t *testing.T) {
	svc, db := newCatalogFixture(t)
	company := seedCompany(t, db, 0)
	product := seedProduct(t, db, company.ID, "SKU-1", 1000, 25)

	updated, err := svc.UpdateProduct(product.ID, &model.Product{
		SKU:    "SKU-1",
		NameEn: "Renamed",
		NameAr: "معاد التسمية",
		Price:  3000,
		Stock:  999, // must be ignored
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.NameEn)
	assert.InDelta(t, 3000, updated.Price, 1e-9)
	assert.Equal(t, 25, updated.Stock)

	var stored model.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 25, stored.Stock)
}

func TestListProductsZoneScoped(t *testing.T) {
	svc, db := newCatalogFixture(t)
	company := seedCompany(t, db, 0)
	karkhOnly := seedProduct(t, db, company.ID, "KARKH", 1000, 10)
	karkhOnly.Zones = model.ZoneList{model.ZoneKarkh}
	require.NoError(t, db.Save(karkhOnly).Error)
	seedProduct(t, db, company.ID, "EVERYWHERE", 1000, 10)

	products, err := svc.ListProducts(ProductFilter{Scope: model.ZoneList{model.ZoneRusafa}})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "EVERYWHERE", products[0].SKU)

	all, err := svc.ListProducts(ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSubscribeBackInStock(t *testing.T) {
	svc, db := newCatalogFixture(t)
	company := seedCompany(t, db, 0)
	soldOut := seedProduct(t, db, company.ID, "OUT", 1000, 0)
	inStock := seedProduct(t, db, company.ID, "IN", 1000, 5)
	userID := uuid.New()

	require.NoError(t, svc.SubscribeBackInStock(soldOut.ID, userID))
	// repeating the request is harmless
	require.NoError(t, svc.SubscribeBackInStock(soldOut.ID, userID))

	var count int64
	require.NoError(t, db.Model(&model.StockSubscription{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	err := svc.SubscribeBackInStock(inStock.ID, userID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}
