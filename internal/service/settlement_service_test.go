package service

import (
	"testing"
	"time"

	"lilium-backend/internal/apperr"
	"lilium-backend/internal/model"
	"lilium-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSettlementFixture(t *testing.T) (SettlementService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	svc := NewSettlementService(
		repository.NewSettlementRepo(db),
		repository.NewOrderRepo(db),
		repository.NewCompanyRepo(db),
		testSettlementConfig(),
	)
	return svc, db
}

func settlementPeriod() (time.Time, time.Time) {
	end := time.Now()
	return end.AddDate(0, 0, -30), end
}

func TestCreateSettlementArithmetic(t *testing.T) {
	svc, db := newSettlementFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 50000, 100)
	start, end := settlementPeriod()
	delivered := timePtr(end.AddDate(0, 0, -5))

	seedOrder(t, db, seedOrderOpts{
		status:        model.OrderDelivered,
		paymentStatus: model.PaymentPaid,
		deliveredAt:   delivered,
		items: []model.OrderItem{
			{ProductID: product.ID, CompanyID: company.ID, UnitPrice: 50000, Quantity: 2},
		},
	})
	seedOrder(t, db, seedOrderOpts{
		status:        model.OrderDelivered,
		paymentStatus: model.PaymentPaid,
		deliveredAt:   delivered,
		items: []model.OrderItem{
			{ProductID: product.ID, CompanyID: company.ID, UnitPrice: 50000, Quantity: 1},
		},
	})

	settlement, err := svc.CreateSettlement(company.ID, start, end, "admin")
	require.NoError(t, err)

	assert.InDelta(t, 0.10, settlement.CommissionRate, 1e-9)
	assert.InDelta(t, 150000, settlement.TotalRevenue, 1e-6)
	assert.InDelta(t, 15000, settlement.TotalCommission, 1e-6)
	assert.InDelta(t, 135000, settlement.TotalPayout, 1e-6)
	assert.InDelta(t, 150000, settlement.CashCollected, 1e-6)
	assert.InDelta(t, 15000, settlement.CashToRemit, 1e-6)
	assert.Equal(t, 2, settlement.OrderCount)
	assert.Equal(t, model.SettlementPending, settlement.Status)
}

func TestCreateSettlementUsesDefaultRate(t *testing.T) {
	svc, db := newSettlementFixture(t)
	company := seedCompany(t, db, 0) // no rate set, default 10% applies
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 100)
	start, end := settlementPeriod()

	seedOrder(t, db, seedOrderOpts{
		status:      model.OrderDelivered,
		deliveredAt: timePtr(end.AddDate(0, 0, -1)),
		items: []model.OrderItem{
			{ProductID: product.ID, CompanyID: company.ID, UnitPrice: 10000, Quantity: 1},
		},
	})

	settlement, err := svc.CreateSettlement(company.ID, start, end, "admin")
	require.NoError(t, err)
	assert.InDelta(t, 0.10, settlement.CommissionRate, 1e-9)
	assert.InDelta(t, 1000, settlement.TotalCommission, 1e-6)
	// delivered but unpaid COD is not collected cash yet
	assert.Zero(t, settlement.CashCollected)
}

func TestCreateSettlementExcludesOtherCompanies(t *testing.T) {
	svc, db := newSettlementFixture(t)
	mine := seedCompany(t, db, 10)
	other := seedCompany(t, db, 10)
	p1 := seedProduct(t, db, mine.ID, "MINE", 20000, 10)
	p2 := seedProduct(t, db, other.ID, "OTHER", 30000, 10)
	start, end := settlementPeriod()

	// one shared order, two companies; each settlement sees only its slice
	seedOrder(t, db, seedOrderOpts{
		status:        model.OrderDelivered,
		paymentStatus: model.PaymentPaid,
		deliveredAt:   timePtr(end.AddDate(0, 0, -1)),
		items: []model.OrderItem{
			{ProductID: p1.ID, CompanyID: mine.ID, UnitPrice: 20000, Quantity: 1},
			{ProductID: p2.ID, CompanyID: other.ID, UnitPrice: 30000, Quantity: 1},
		},
	})

	settlement, err := svc.CreateSettlement(mine.ID, start, end, "admin")
	require.NoError(t, err)
	assert.InDelta(t, 20000, settlement.TotalRevenue, 1e-6)
	assert.Equal(t, 1, settlement.OrderCount)
}

func TestCreateSettlementDuplicatePeriod(t *testing.T) {
	svc, db := newSettlementFixture(t)
	company := seedCompany(t, db, 10)
	start, end := settlementPeriod()

	_, err := svc.CreateSettlement(company.ID, start, end, "admin")
	require.NoError(t, err)

	_, err = svc.CreateSettlement(company.ID, start, end, "admin")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.Conflict))
}

func TestCreateSettlementInvalidPeriod(t *testing.T) {
	svc, db := newSettlementFixture(t)
	company := seedCompany(t, db, 10)
	start, end := settlementPeriod()

	_, err := svc.CreateSettlement(company.ID, end, start, "admin")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestMarkCashCollected(t *testing.T) {
	newDeliveredOrder := func(t *testing.T, db *gorm.DB, method model.PaymentMethod, status model.OrderStatus) *model.Order {
		company := seedCompany(t, db, 10)
		product := seedProduct(t, db, company.ID, "SKU-1", 50000, 10)
		var deliveredAt *time.Time
		if status == model.OrderDelivered {
			deliveredAt = timePtr(time.Now().Add(-time.Hour))
		}
		return seedOrder(t, db, seedOrderOpts{
			status:        status,
			paymentMethod: method,
			deliveryFee:   5000,
			deliveredAt:   deliveredAt,
			items: []model.OrderItem{
				{ProductID: product.ID, CompanyID: company.ID, UnitPrice: 50000, Quantity: 3},
			},
		})
	}

	t.Run("exact amount marks paid", func(t *testing.T) {
		svc, db := newSettlementFixture(t)
		order := newDeliveredOrder(t, db, model.PaymentCashOnDelivery, model.OrderDelivered)

		updated, err := svc.MarkCashCollected(order.ID, 155000, "driver-7")
		require.NoError(t, err)
		assert.Equal(t, model.PaymentPaid, updated.PaymentStatus)
		assert.NotNil(t, updated.PaidAt)
		assert.Equal(t, "driver-7", updated.CollectedBy)

		var stored model.Order
		require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
		assert.Equal(t, model.PaymentPaid, stored.PaymentStatus)
	})

	t.Run("amount within tolerance accepted", func(t *testing.T) {
		svc, db := newSettlementFixture(t)
		order := newDeliveredOrder(t, db, model.PaymentCashOnDelivery, model.OrderDelivered)

		_, err := svc.MarkCashCollected(order.ID, 155000.005, "driver-7")
		require.NoError(t, err)
	})

	t.Run("amount mismatch rejected", func(t *testing.T) {
		svc, db := newSettlementFixture(t)
		order := newDeliveredOrder(t, db, model.PaymentCashOnDelivery, model.OrderDelivered)

		_, err := svc.MarkCashCollected(order.ID, 150000, "driver-7")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.AmountMismatch))

		var stored model.Order
		require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
		assert.Equal(t, model.PaymentPending, stored.PaymentStatus)
	})

	t.Run("second collection conflicts", func(t *testing.T) {
		svc, db := newSettlementFixture(t)
		order := newDeliveredOrder(t, db, model.PaymentCashOnDelivery, model.OrderDelivered)

		_, err := svc.MarkCashCollected(order.ID, 155000, "driver-7")
		require.NoError(t, err)

		_, err = svc.MarkCashCollected(order.ID, 155000, "driver-7")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.Conflict))
	})

	t.Run("already-paid order is not overwritten even past the pre-check", func(t *testing.T) {
		svc, db := newSettlementFixture(t)
		order := newDeliveredOrder(t, db, model.PaymentCashOnDelivery, model.OrderDelivered)

		_, err := svc.MarkCashCollected(order.ID, 155000, "driver-7")
		require.NoError(t, err)

		// a racing collector that read the order before it was paid lands on
		// the repository's WHERE guard instead of the service check
		rows, err := repository.NewOrderRepo(db).MarkCashCollected(order.ID, "driver-9", time.Now())
		require.NoError(t, err)
		assert.Zero(t, rows)

		var stored model.Order
		require.NoError(t, db.First(&stored, "id = ?", order.ID).Error)
		assert.Equal(t, "driver-7", stored.CollectedBy)
	})

	t.Run("undelivered order rejected", func(t *testing.T) {
		svc, db := newSettlementFixture(t)
		order := newDeliveredOrder(t, db, model.PaymentCashOnDelivery, model.OrderOnTheWay)

		_, err := svc.MarkCashCollected(order.ID, 155000, "driver-7")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.InvalidState))
	})

	t.Run("online order rejected", func(t *testing.T) {
		svc, db := newSettlementFixture(t)
		order := newDeliveredOrder(t, db, model.PaymentOnline, model.OrderDelivered)

		_, err := svc.MarkCashCollected(order.ID, 155000, "driver-7")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.InvalidState))
	})

	t.Run("unknown order", func(t *testing.T) {
		svc, _ := newSettlementFixture(t)
		_, err := svc.MarkCashCollected(uuid.New(), 100, "driver-7")
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.NotFound))
	})
}

func TestGetSettlementSummary(t *testing.T) {
	svc, db := newSettlementFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 100)
	now := time.Now()
	item := func(qty int) []model.OrderItem {
		return []model.OrderItem{{ProductID: product.ID, CompanyID: company.ID, UnitPrice: 10000, Quantity: qty}}
	}

	// delivered COD, cash already in hand
	seedOrder(t, db, seedOrderOpts{
		status:        model.OrderDelivered,
		paymentStatus: model.PaymentPaid,
		deliveredAt:   timePtr(now.Add(-48 * time.Hour)),
		items:         item(3),
	})
	// delivered COD, cash still with the driver
	seedOrder(t, db, seedOrderOpts{
		status:      model.OrderDelivered,
		deliveredAt: timePtr(now.Add(-24 * time.Hour)),
		items:       item(2),
	})
	// still being fulfilled
	seedOrder(t, db, seedOrderOpts{
		status: model.OrderConfirmed,
		items:  item(4),
	})
	// online payment contributes revenue but no cash figures
	seedOrder(t, db, seedOrderOpts{
		status:        model.OrderDelivered,
		paymentMethod: model.PaymentOnline,
		paymentStatus: model.PaymentPaid,
		deliveredAt:   timePtr(now.Add(-12 * time.Hour)),
		items:         item(1),
	})

	summary, err := svc.GetSettlementSummary(company.ID, nil, nil)
	require.NoError(t, err)

	assert.InDelta(t, 60000, summary.TotalRevenue, 1e-6) // 3+2+1 delivered items
	assert.InDelta(t, 6000, summary.TotalCommission, 1e-6)
	assert.InDelta(t, 54000, summary.TotalPayout, 1e-6)
	assert.InDelta(t, 30000, summary.CashCollected, 1e-6)
	assert.InDelta(t, 20000, summary.PendingCash, 1e-6)
	assert.InDelta(t, 40000, summary.ToCollect, 1e-6)
	assert.Equal(t, 3, summary.OrderCount)
}

func TestReconcileCash(t *testing.T) {
	svc, db := newSettlementFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 25000, 100)
	start, end := settlementPeriod()
	delivered := timePtr(end.Add(-time.Hour))

	seedOrder(t, db, seedOrderOpts{
		status:        model.OrderDelivered,
		paymentStatus: model.PaymentPaid,
		deliveredAt:   delivered,
		items:         []model.OrderItem{{ProductID: product.ID, CompanyID: company.ID, UnitPrice: 25000, Quantity: 2}},
	})
	seedOrder(t, db, seedOrderOpts{
		status:      model.OrderDelivered,
		deliveredAt: delivered,
		items:       []model.OrderItem{{ProductID: product.ID, CompanyID: company.ID, UnitPrice: 25000, Quantity: 1}},
	})

	report, err := svc.ReconcileCash(company.ID, start, end)
	require.NoError(t, err)

	require.Len(t, report.Entries, 2)
	assert.InDelta(t, 50000, report.VerifiedTotal, 1e-6)
	assert.InDelta(t, 25000, report.DiscrepancyTotal, 1e-6)

	// reporting only: nothing may change in the orders
	var paid int64
	require.NoError(t, db.Model(&model.Order{}).Where("payment_status = ?", model.PaymentPaid).Count(&paid).Error)
	assert.Equal(t, int64(1), paid)
}

func TestGetPendingCashCollections(t *testing.T) {
	svc, db := newSettlementFixture(t)
	company := seedCompany(t, db, 10)
	product := seedProduct(t, db, company.ID, "SKU-1", 10000, 100)

	seedOrder(t, db, seedOrderOpts{
		status:      model.OrderDelivered,
		deliveredAt: timePtr(time.Now().Add(-72 * time.Hour)),
		items:       []model.OrderItem{{ProductID: product.ID, CompanyID: company.ID, UnitPrice: 10000, Quantity: 2}},
	})

	pending, err := svc.GetPendingCashCollections(company.ID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.InDelta(t, 20000, pending[0].Amount, 1e-6)
	assert.Equal(t, 3, pending[0].DaysPending)
}

func TestCalculatePlatformEarnings(t *testing.T) {
	svc, db := newSettlementFixture(t)
	cheap := seedCompany(t, db, 5)
	dear := seedCompany(t, db, 20)
	p1 := seedProduct(t, db, cheap.ID, "CHEAP", 10000, 100)
	p2 := seedProduct(t, db, dear.ID, "DEAR", 40000, 100)
	start, end := settlementPeriod()

	seedOrder(t, db, seedOrderOpts{
		status:      model.OrderDelivered,
		deliveredAt: timePtr(end.Add(-time.Hour)),
		items: []model.OrderItem{
			{ProductID: p1.ID, CompanyID: cheap.ID, UnitPrice: 10000, Quantity: 2},
			{ProductID: p2.ID, CompanyID: dear.ID, UnitPrice: 40000, Quantity: 1},
		},
	})

	earnings, err := svc.CalculatePlatformEarnings(start, end)
	require.NoError(t, err)

	assert.InDelta(t, 60000, earnings.TotalRevenue, 1e-6)
	assert.InDelta(t, 20000*0.05+40000*0.20, earnings.TotalCommission, 1e-6)

	require.Contains(t, earnings.ByCompany, cheap.ID)
	require.Contains(t, earnings.ByCompany, dear.ID)
	assert.InDelta(t, 20000, earnings.ByCompany[cheap.ID].Revenue, 1e-6)
	assert.InDelta(t, 1000, earnings.ByCompany[cheap.ID].Commission, 1e-6)
	assert.InDelta(t, 19000, earnings.ByCompany[cheap.ID].Payout, 1e-6)
	assert.Equal(t, 1, earnings.ByCompany[cheap.ID].OrderCount)
	assert.InDelta(t, 8000, earnings.ByCompany[dear.ID].Commission, 1e-6)
}

func TestSettlementLifecycle(t *testing.T) {
	svc, db := newSettlementFixture(t)
	company := seedCompany(t, db, 10)
	start, end := settlementPeriod()

	settlement, err := svc.CreateSettlement(company.ID, start, end, "admin")
	require.NoError(t, err)

	// settling before verification is not allowed
	_, err = svc.MarkSettled(settlement.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))

	verified, err := svc.VerifySettlement(settlement.ID, "auditor")
	require.NoError(t, err)
	assert.Equal(t, model.SettlementVerified, verified.Status)
	assert.Equal(t, "auditor", verified.VerifiedBy)
	assert.NotNil(t, verified.VerifiedAt)

	settled, err := svc.MarkSettled(settlement.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SettlementSettled, settled.Status)
	assert.NotNil(t, settled.SettledAt)

	// a settled settlement can no longer be disputed
	_, err = svc.DisputeSettlement(settlement.ID, "numbers look wrong")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestDisputeSettlement(t *testing.T) {
	svc, db := newSettlementFixture(t)
	company := seedCompany(t, db, 10)
	start, end := settlementPeriod()

	settlement, err := svc.CreateSettlement(company.ID, start, end, "admin")
	require.NoError(t, err)

	disputed, err := svc.DisputeSettlement(settlement.ID, "missing two orders")
	require.NoError(t, err)
	assert.Equal(t, model.SettlementDisputed, disputed.Status)
	assert.Equal(t, "missing two orders", disputed.DisputeReason)
}
