package service

import (
	"sync"
	"testing"
	"time"

	"lilium-backend/internal/config"
	"lilium-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// in-memory sqlite: a second connection would see an empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Company{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.StockHistory{},
		&model.Settlement{},
		&model.Notification{},
		&model.StockSubscription{},
	))
	return db
}

func testStockConfig() config.StockConfig {
	return config.StockConfig{
		LowStockThreshold:      10,
		CriticalStockThreshold: 5,
		RestockRunwayDays:      14,
		RestockHorizonDays:     30,
	}
}

func testSettlementConfig() config.SettlementConfig {
	return config.SettlementConfig{
		DefaultCommissionPct: 10,
		CashTolerance:        0.01,
		SummaryWindowDays:    30,
	}
}

// fakeNotifier records alerts synchronously so tests can assert on them.
type fakeNotifier struct {
	mu          sync.Mutex
	alerts      []StockAlert
	backInStock []uuid.UUID
}

func (f *fakeNotifier) SendStockAlert(alert StockAlert) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, alert)
}

func (f *fakeNotifier) NotifyBackInStock(productID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.backInStock = append(f.backInStock, productID)
}

func (f *fakeNotifier) lastAlert(t *testing.T) StockAlert {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.alerts, "expected at least one alert")
	return f.alerts[len(f.alerts)-1]
}

func seedCompany(t *testing.T, db *gorm.DB, commissionRate float64) *model.Company {
	t.Helper()
	company := &model.Company{
		NameEn:         "Test Vendor",
		NameAr:         "مورد تجريبي",
		CommissionRate: commissionRate,
		Zones:          model.ZoneList{},
		DeliveryFees:   model.DeliveryFeeTable{model.ZoneKarkh: 5000, model.ZoneRusafa: 7000},
		IsActive:       true,
	}
	require.NoError(t, db.Create(company).Error)
	return company
}

func seedProduct(t *testing.T, db *gorm.DB, companyID uuid.UUID, sku string, price float64, stock int) *model.Product {
	t.Helper()
	product := &model.Product{
		SKU:       sku,
		NameEn:    "Product " + sku,
		NameAr:    "منتج " + sku,
		Price:     price,
		Cost:      price / 2,
		Stock:     stock,
		CompanyID: companyID,
		IsActive:  true,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

type seedOrderOpts struct {
	status        model.OrderStatus
	paymentMethod model.PaymentMethod
	paymentStatus model.PaymentStatus
	deliveryFee   float64
	deliveredAt   *time.Time
	items         []model.OrderItem
}

func seedOrder(t *testing.T, db *gorm.DB, opts seedOrderOpts) *model.Order {
	t.Helper()
	if opts.paymentMethod == "" {
		opts.paymentMethod = model.PaymentCashOnDelivery
	}
	if opts.paymentStatus == "" {
		opts.paymentStatus = model.PaymentPending
	}
	order := &model.Order{
		UserID:        uuid.New(),
		Status:        opts.status,
		PaymentMethod: opts.paymentMethod,
		PaymentStatus: opts.paymentStatus,
		Zone:          model.ZoneKarkh,
		DeliveryFee:   opts.deliveryFee,
		DeliveredAt:   opts.deliveredAt,
		Items:         opts.items,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func timePtr(v time.Time) *time.Time { return &v }
