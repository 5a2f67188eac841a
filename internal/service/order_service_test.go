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

func newOrderFixture(t *testing.T) (OrderService, *fakeNotifier, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	notifier := &fakeNotifier{}
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	inv := NewInventoryService(
		productRepo,
		repository.NewStockHistoryRepo(db),
		orderRepo,
		db,
		notifier,
		testStockConfig(),
	)
	svc := NewOrderService(orderRepo, productRepo, repository.NewCompanyRepo(db), inv)
	return svc, notifier, db
}

func TestPlaceOrderFreezesPricesAndFees(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 12000, 50)
	userID := uuid.New()

	order, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneKarkh,
		PaymentMethod: model.PaymentCashOnDelivery,
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 3}},
	}, userID)
	require.NoError(t, err)

	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, model.PaymentPending, order.PaymentStatus)
	require.Len(t, order.Items, 1)
	assert.Equal(t, company.ID, order.Items[0].CompanyID)
	assert.InDelta(t, 12000, order.Items[0].UnitPrice, 1e-9)
	assert.InDelta(t, 5000, order.DeliveryFee, 1e-9) // company's KARKH fee
	assert.InDelta(t, 41000, order.Total(), 1e-6)

	// placing an order never touches stock
	var stored model.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 50, stored.Stock)
}

func TestPlaceOrderSumsFeesAcrossCompanies(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	c1 := seedCompany(t, db, 10)
	c2 := seedCompany(t, db, 10)
	p1 := seedProduct(t, db, c1.ID, "SKU-1", 10000, 50)
	p2 := seedProduct(t, db, c2.ID, "SKU-2", 20000, 50)

	order, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneRusafa,
		PaymentMethod: model.PaymentOnline,
		Items: []OrderItemRequest{
			{ProductID: p1.ID, Quantity: 1},
			{ProductID: p2.ID, Quantity: 1},
		},
	}, uuid.New())
	require.NoError(t, err)

	assert.InDelta(t, 14000, order.DeliveryFee, 1e-9) // both companies charge RUSAFA
}

func TestPlaceOrderEnforcesMinimumPerCompany(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	company := seedCompany(t, db, 10)
	company.MinOrderAmount = 50000
	require.NoError(t, db.Save(company).Error)
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 50)

	_, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneKarkh,
		PaymentMethod: model.PaymentCashOnDelivery,
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 2}},
	}, uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestPlaceOrderRejectsInactiveProduct(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 50)
	require.NoError(t, db.Model(product).Update("is_active", false).Error)

	_, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneKarkh,
		PaymentMethod: model.PaymentCashOnDelivery,
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	}, uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestPlaceOrderRespectsProductZones(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 50)
	product.Zones = model.ZoneList{model.ZoneRusafa}
	require.NoError(t, db.Save(product).Error)

	_, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneKarkh,
		PaymentMethod: model.PaymentCashOnDelivery,
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	}, uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestPlaceOrderRejectsEmptyItems(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	_, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneKarkh,
		PaymentMethod: model.PaymentCashOnDelivery,
	}, uuid.New())
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestConfirmOrderDeductsStock(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 50)

	order, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneKarkh,
		PaymentMethod: model.PaymentCashOnDelivery,
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 8}},
	}, uuid.New())
	require.NoError(t, err)

	updated, err := svc.UpdateOrderStatus(order.ID, model.OrderConfirmed, "admin")
	require.NoError(t, err)
	assert.Equal(t, model.OrderConfirmed, updated.Status)

	var stored model.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 42, stored.Stock)

	var history model.StockHistory
	require.NoError(t, db.First(&history, "product_id = ?", product.ID).Error)
	assert.Equal(t, model.StockEventSale, history.Type)
	assert.Equal(t, -8, history.QuantityDelta)
}

func TestCancelAfterConfirmRestoresStock(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 50)

	order, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneKarkh,
		PaymentMethod: model.PaymentCashOnDelivery,
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 8}},
	}, uuid.New())
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(order.ID, model.OrderConfirmed, "admin")
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(order.ID, model.OrderCancelled, "admin")
	require.NoError(t, err)

	var stored model.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 50, stored.Stock)

	// both movements are on the ledger
	var count int64
	require.NoError(t, db.Model(&model.StockHistory{}).Where("product_id = ?", product.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCancelBeforeConfirmLeavesStockAlone(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 50)

	order, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneKarkh,
		PaymentMethod: model.PaymentCashOnDelivery,
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 8}},
	}, uuid.New())
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(order.ID, model.OrderCancelled, "admin")
	require.NoError(t, err)

	var stored model.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 50, stored.Stock)

	var count int64
	require.NoError(t, db.Model(&model.StockHistory{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOrderStatusTransitions(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 50)

	order, err := svc.PlaceOrder(&PlaceOrderRequest{
		Zone:          model.ZoneKarkh,
		PaymentMethod: model.PaymentCashOnDelivery,
		Items:         []OrderItemRequest{{ProductID: product.ID, Quantity: 1}},
	}, uuid.New())
	require.NoError(t, err)

	// skipping straight to delivery is not allowed
	_, err = svc.UpdateOrderStatus(order.ID, model.OrderDelivered, "admin")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))

	for _, next := range []model.OrderStatus{
		model.OrderConfirmed, model.OrderPreparing, model.OrderOnTheWay,
	} {
		_, err = svc.UpdateOrderStatus(order.ID, next, "admin")
		require.NoError(t, err, "transition to %s", next)
	}

	delivered, err := svc.UpdateOrderStatus(order.ID, model.OrderDelivered, "admin")
	require.NoError(t, err)
	assert.NotNil(t, delivered.DeliveredAt)

	// delivered is terminal
	_, err = svc.UpdateOrderStatus(order.ID, model.OrderCancelled, "admin")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestFailedDeductionLeavesOrderPending(t *testing.T) {
	svc, _, db := newOrderFixture(t)
	company := seedCompany(t, db, 10)

	// item references a product that no longer exists, so deduction fails
	order := seedOrder(t, db, seedOrderOpts{
		status: model.OrderPending,
		items: []model.OrderItem{
			{ProductID: uuid.New(), CompanyID: company.ID, UnitPrice: 10000, Quantity: 1},
		},
	})

	_, err := svc.UpdateOrderStatus(order.ID, model.OrderConfirmed, "admin")
	require.Error(t, err)

	// the failed confirmation must not stick, so it stays retryable
	var stored model.Order
	require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
	assert.Equal(t, model.OrderPending, stored.Status)
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	svc, _, _ := newOrderFixture(t)

	_, err := svc.UpdateOrderStatus(uuid.New(), model.OrderConfirmed, "admin")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}
