package service

import (
	"errors"
	"math"
	"time"

	"lilium-backend/internal/apperr"
	"lilium-backend/internal/config"
	"lilium-backend/internal/model"
	"lilium-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// toCollectStatuses are the in-flight states whose cash-on-delivery totals are
// future collections, not yet revenue.
var toCollectStatuses = []model.OrderStatus{
	model.OrderConfirmed,
	model.OrderPreparing,
	model.OrderOnTheWay,
}

// SettlementSummary is the broader period view: delivered figures plus cash
// still in flight.
type SettlementSummary struct {
	CompanyID       uuid.UUID `json:"company_id"`
	PeriodStart     time.Time `json:"period_start"`
	PeriodEnd       time.Time `json:"period_end"`
	TotalRevenue    float64   `json:"total_revenue"`
	TotalCommission float64   `json:"total_commission"`
	TotalPayout     float64   `json:"total_payout"`
	CashCollected   float64   `json:"cash_collected"`
	PendingCash     float64   `json:"pending_cash"` // delivered COD not yet marked paid
	ToCollect       float64   `json:"to_collect"`   // COD orders still being fulfilled
	OrderCount      int       `json:"order_count"`
}

type CashReconciliationEntry struct {
	OrderID     uuid.UUID  `json:"order_id"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	Amount      float64    `json:"amount"`
	Verified    bool       `json:"verified"`
	Discrepancy float64    `json:"discrepancy"`
}

// CashReconciliationReport is a read-only view; it never mutates order state.
type CashReconciliationReport struct {
	CompanyID        uuid.UUID                 `json:"company_id"`
	PeriodStart      time.Time                 `json:"period_start"`
	PeriodEnd        time.Time                 `json:"period_end"`
	Entries          []CashReconciliationEntry `json:"entries"`
	VerifiedTotal    float64                   `json:"verified_total"`
	DiscrepancyTotal float64                   `json:"discrepancy_total"`
}

type PendingCashCollection struct {
	OrderID     uuid.UUID  `json:"order_id"`
	Amount      float64    `json:"amount"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	DaysPending int        `json:"days_pending"`
}

type CompanyEarnings struct {
	CompanyID  uuid.UUID `json:"company_id"`
	Revenue    float64   `json:"revenue"`
	Commission float64   `json:"commission"`
	Payout     float64   `json:"payout"`
	OrderCount int       `json:"order_count"`
}

// PlatformEarnings is the cross-company aggregate, attributing each item's
// revenue through its owning company's commission rate.
type PlatformEarnings struct {
	PeriodStart     time.Time                      `json:"period_start"`
	PeriodEnd       time.Time                      `json:"period_end"`
	TotalRevenue    float64                        `json:"total_revenue"`
	TotalCommission float64                        `json:"total_commission"`
	ByCompany       map[uuid.UUID]*CompanyEarnings `json:"by_company"`
}

type SettlementService interface {
	CreateSettlement(companyID uuid.UUID, periodStart, periodEnd time.Time, actorID string) (*model.Settlement, error)
	GetSettlementSummary(companyID uuid.UUID, startDate, endDate *time.Time) (*SettlementSummary, error)
	ReconcileCash(companyID uuid.UUID, start, end time.Time) (*CashReconciliationReport, error)
	MarkCashCollected(orderID uuid.UUID, amount float64, collectedBy string) (*model.Order, error)
	GetPendingCashCollections(companyID uuid.UUID) ([]PendingCashCollection, error)
	CalculatePlatformEarnings(start, end time.Time) (*PlatformEarnings, error)

	VerifySettlement(id uuid.UUID, verifiedBy string) (*model.Settlement, error)
	MarkSettled(id uuid.UUID) (*model.Settlement, error)
	DisputeSettlement(id uuid.UUID, reason string) (*model.Settlement, error)
	GetSettlementsForCompany(companyID uuid.UUID) ([]model.Settlement, error)
}

type settlementService struct {
	settlementRepo repository.SettlementRepository
	orderRepo      repository.OrderRepository
	companyRepo    repository.CompanyRepository
	cfg            config.SettlementConfig
}

func NewSettlementService(
	sRepo repository.SettlementRepository,
	oRepo repository.OrderRepository,
	cRepo repository.CompanyRepository,
	cfg config.SettlementConfig,
) SettlementService {
	return &settlementService{
		settlementRepo: sRepo,
		orderRepo:      oRepo,
		companyRepo:    cRepo,
		cfg:            cfg,
	}
}

func (s *settlementService) findCompany(companyID uuid.UUID) (*model.Company, error) {
	company, err := s.companyRepo.FindByID(companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("company", "company %s not found", companyID)
		}
		return nil, apperr.Wrap("company", err)
	}
	return company, nil
}

// CreateSettlement computes and persists the commercial split for a company
// over a period. The unique index on (company, period) rejects duplicates.
func (s *settlementService) CreateSettlement(companyID uuid.UUID, periodStart, periodEnd time.Time, actorID string) (*model.Settlement, error) {
	if !periodEnd.After(periodStart) {
		return nil, apperr.InvalidStatef("settlement", "period end must be after period start")
	}

	company, err := s.findCompany(companyID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.settlementRepo.FindByCompanyPeriod(companyID, periodStart, periodEnd); err == nil && existing != nil {
		return nil, apperr.Conflictf("settlement", "settlement already exists for this company and period")
	}

	orders, err := s.orderRepo.DeliveredForCompany(companyID, periodStart, periodEnd)
	if err != nil {
		return nil, apperr.Wrap("settlement", err)
	}

	rate := company.EffectiveCommissionRate(s.cfg.DefaultCommissionPct)

	var totalRevenue, cashCollected float64
	for i := range orders {
		order := &orders[i]
		revenue := order.CompanyTotal(companyID)
		totalRevenue += revenue
		if order.PaymentMethod == model.PaymentCashOnDelivery && order.PaymentStatus == model.PaymentPaid {
			cashCollected += revenue
		}
	}

	settlement := &model.Settlement{
		CompanyID:       companyID,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		CommissionRate:  rate,
		TotalRevenue:    totalRevenue,
		TotalCommission: totalRevenue * rate,
		TotalPayout:     totalRevenue - totalRevenue*rate,
		CashCollected:   cashCollected,
		CashToRemit:     cashCollected * rate,
		OrderCount:      len(orders),
		Status:          model.SettlementPending,
	}
	settlement.CreatedBy = actorID
	settlement.UpdatedBy = actorID

	if err := s.settlementRepo.Create(settlement); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflictf("settlement", "settlement already exists for this company and period")
		}
		return nil, apperr.Wrap("settlement", err)
	}
	return settlement, nil
}

// GetSettlementSummary defaults to the trailing configured window when no
// bounds are given.
func (s *settlementService) GetSettlementSummary(companyID uuid.UUID, startDate, endDate *time.Time) (*SettlementSummary, error) {
	company, err := s.findCompany(companyID)
	if err != nil {
		return nil, err
	}

	end := time.Now()
	if endDate != nil {
		end = *endDate
	}
	start := end.AddDate(0, 0, -s.cfg.SummaryWindowDays)
	if startDate != nil {
		start = *startDate
	}

	rate := company.EffectiveCommissionRate(s.cfg.DefaultCommissionPct)

	delivered, err := s.orderRepo.DeliveredForCompany(companyID, start, end)
	if err != nil {
		return nil, apperr.Wrap("settlement", err)
	}

	summary := &SettlementSummary{
		CompanyID:   companyID,
		PeriodStart: start,
		PeriodEnd:   end,
		OrderCount:  len(delivered),
	}

	for i := range delivered {
		order := &delivered[i]
		revenue := order.CompanyTotal(companyID)
		summary.TotalRevenue += revenue
		if order.PaymentMethod == model.PaymentCashOnDelivery {
			if order.PaymentStatus == model.PaymentPaid {
				summary.CashCollected += revenue
			} else {
				summary.PendingCash += revenue
			}
		}
	}
	summary.TotalCommission = summary.TotalRevenue * rate
	summary.TotalPayout = summary.TotalRevenue - summary.TotalCommission

	inFlight, err := s.orderRepo.ByStatusesForCompany(companyID, toCollectStatuses, start, end)
	if err != nil {
		return nil, apperr.Wrap("settlement", err)
	}
	for i := range inFlight {
		order := &inFlight[i]
		if order.PaymentMethod == model.PaymentCashOnDelivery {
			summary.ToCollect += order.CompanyTotal(companyID)
		}
	}

	return summary, nil
}

// ReconcileCash compares each delivered COD order's computed amount against
// its collection status. Reporting only; no state changes.
func (s *settlementService) ReconcileCash(companyID uuid.UUID, start, end time.Time) (*CashReconciliationReport, error) {
	if _, err := s.findCompany(companyID); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.DeliveredForCompany(companyID, start, end)
	if err != nil {
		return nil, apperr.Wrap("reconciliation", err)
	}

	report := &CashReconciliationReport{
		CompanyID:   companyID,
		PeriodStart: start,
		PeriodEnd:   end,
	}

	for i := range orders {
		order := &orders[i]
		if order.PaymentMethod != model.PaymentCashOnDelivery {
			continue
		}
		amount := order.CompanyTotal(companyID)
		verified := order.PaymentStatus == model.PaymentPaid

		entry := CashReconciliationEntry{
			OrderID:     order.ID,
			DeliveredAt: order.DeliveredAt,
			Amount:      amount,
			Verified:    verified,
		}
		if verified {
			report.VerifiedTotal += amount
		} else {
			entry.Discrepancy = amount
			report.DiscrepancyTotal += amount
		}
		report.Entries = append(report.Entries, entry)
	}

	return report, nil
}

// MarkCashCollected is the component's sole mutation. The amount must match
// the computed order total within the configured tolerance; partial and over
// payments are rejected rather than recorded as discrepancies. A second call
// for the same order fails with a conflict, which gives the at-most-once
// guarantee for collections.
func (s *settlementService) MarkCashCollected(orderID uuid.UUID, amount float64, collectedBy string) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("order", "order %s not found", orderID)
		}
		return nil, apperr.Wrap("order", err)
	}

	if order.PaymentMethod != model.PaymentCashOnDelivery {
		return nil, apperr.InvalidStatef("order", "order is not cash-on-delivery")
	}
	if order.Status != model.OrderDelivered {
		return nil, apperr.InvalidStatef("order", "cash cannot be marked before delivery (status %s)", order.Status)
	}
	if order.PaymentStatus == model.PaymentPaid {
		return nil, apperr.Conflictf("order", "cash already marked collected for this order")
	}

	total := order.Total()
	if math.Abs(amount-total) > s.cfg.CashTolerance {
		return nil, apperr.AmountMismatchf("order", "collected amount %.2f does not match order total %.2f", amount, total)
	}

	now := time.Now()
	rows, err := s.orderRepo.MarkCashCollected(orderID, collectedBy, now)
	if err != nil {
		return nil, apperr.Wrap("order", err)
	}
	if rows == 0 {
		return nil, apperr.Conflictf("order", "cash already marked collected for this order")
	}

	order.PaymentStatus = model.PaymentPaid
	order.PaidAt = &now
	order.CollectedBy = collectedBy
	return order, nil
}

func (s *settlementService) GetPendingCashCollections(companyID uuid.UUID) ([]PendingCashCollection, error) {
	if _, err := s.findCompany(companyID); err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.PendingCashForCompany(companyID)
	if err != nil {
		return nil, apperr.Wrap("pending_cash", err)
	}

	now := time.Now()
	collections := make([]PendingCashCollection, 0, len(orders))
	for i := range orders {
		order := &orders[i]
		entry := PendingCashCollection{
			OrderID:     order.ID,
			Amount:      order.CompanyTotal(companyID),
			DeliveredAt: order.DeliveredAt,
		}
		if order.DeliveredAt != nil {
			entry.DaysPending = int(now.Sub(*order.DeliveredAt).Hours() / 24)
		}
		collections = append(collections, entry)
	}
	return collections, nil
}

// CalculatePlatformEarnings attributes every delivered item's revenue and
// commission to its owning company.
func (s *settlementService) CalculatePlatformEarnings(start, end time.Time) (*PlatformEarnings, error) {
	companies, err := s.companyRepo.FindAll()
	if err != nil {
		return nil, apperr.Wrap("earnings", err)
	}
	rates := make(map[uuid.UUID]float64, len(companies))
	for i := range companies {
		rates[companies[i].ID] = companies[i].EffectiveCommissionRate(s.cfg.DefaultCommissionPct)
	}

	orders, err := s.orderRepo.DeliveredInRange(start, end)
	if err != nil {
		return nil, apperr.Wrap("earnings", err)
	}

	earnings := &PlatformEarnings{
		PeriodStart: start,
		PeriodEnd:   end,
		ByCompany:   make(map[uuid.UUID]*CompanyEarnings),
	}

	for i := range orders {
		order := &orders[i]
		seen := make(map[uuid.UUID]bool)
		for _, item := range order.Items {
			rate, ok := rates[item.CompanyID]
			if !ok {
				rate = s.cfg.DefaultCommissionPct / 100
			}
			revenue := item.UnitPrice * float64(item.Quantity)
			commission := revenue * rate

			earnings.TotalRevenue += revenue
			earnings.TotalCommission += commission

			entry := earnings.ByCompany[item.CompanyID]
			if entry == nil {
				entry = &CompanyEarnings{CompanyID: item.CompanyID}
				earnings.ByCompany[item.CompanyID] = entry
			}
			entry.Revenue += revenue
			entry.Commission += commission
			entry.Payout = entry.Revenue - entry.Commission
			if !seen[item.CompanyID] {
				entry.OrderCount++
				seen[item.CompanyID] = true
			}
		}
	}

	return earnings, nil
}

func (s *settlementService) findSettlement(id uuid.UUID) (*model.Settlement, error) {
	settlement, err := s.settlementRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("settlement", "settlement %s not found", id)
		}
		return nil, apperr.Wrap("settlement", err)
	}
	return settlement, nil
}

func (s *settlementService) VerifySettlement(id uuid.UUID, verifiedBy string) (*model.Settlement, error) {
	settlement, err := s.findSettlement(id)
	if err != nil {
		return nil, err
	}
	if settlement.Status != model.SettlementPending {
		return nil, apperr.InvalidStatef("settlement", "only pending settlements can be verified (status %s)", settlement.Status)
	}

	now := time.Now()
	settlement.Status = model.SettlementVerified
	settlement.VerifiedBy = verifiedBy
	settlement.VerifiedAt = &now
	if err := s.settlementRepo.Update(settlement); err != nil {
		return nil, apperr.Wrap("settlement", err)
	}
	return settlement, nil
}

func (s *settlementService) MarkSettled(id uuid.UUID) (*model.Settlement, error) {
	settlement, err := s.findSettlement(id)
	if err != nil {
		return nil, err
	}
	if settlement.Status != model.SettlementVerified {
		return nil, apperr.InvalidStatef("settlement", "only verified settlements can be settled (status %s)", settlement.Status)
	}

	now := time.Now()
	settlement.Status = model.SettlementSettled
	settlement.SettledAt = &now
	if err := s.settlementRepo.Update(settlement); err != nil {
		return nil, apperr.Wrap("settlement", err)
	}
	return settlement, nil
}

func (s *settlementService) DisputeSettlement(id uuid.UUID, reason string) (*model.Settlement, error) {
	settlement, err := s.findSettlement(id)
	if err != nil {
		return nil, err
	}
	if settlement.Status == model.SettlementSettled || settlement.Status == model.SettlementDisputed {
		return nil, apperr.InvalidStatef("settlement", "settlement can no longer be disputed (status %s)", settlement.Status)
	}

	settlement.Status = model.SettlementDisputed
	settlement.DisputeReason = reason
	if err := s.settlementRepo.Update(settlement); err != nil {
		return nil, apperr.Wrap("settlement", err)
	}
	return settlement, nil
}

func (s *settlementService) GetSettlementsForCompany(companyID uuid.UUID) ([]model.Settlement, error) {
	if _, err := s.findCompany(companyID); err != nil {
		return nil, err
	}
	settlements, err := s.settlementRepo.FindByCompany(companyID)
	return settlements, apperr.Wrap("settlement", err)
}
