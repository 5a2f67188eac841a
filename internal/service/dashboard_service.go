package service

import (
	"time"

	"lilium-backend/internal/apperr"
	"lilium-backend/internal/config"
	"lilium-backend/internal/model"
	"lilium-backend/internal/repository"
)

// DashboardStats is the admin overview.
type DashboardStats struct {
	TotalProducts      int64   `json:"total_products"`
	LowStockCount      int64   `json:"low_stock_count"`
	CriticalStockCount int64   `json:"critical_stock_count"`
	InventoryValuation float64 `json:"inventory_valuation"` // at cost
	PendingOrders      int64   `json:"pending_orders"`
}

type RevenueSummary struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	Revenue     float64   `json:"revenue"`
}

type DashboardService interface {
	GetDashboardStats() (*DashboardStats, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
	GetRevenueSummary(days int) (*RevenueSummary, error)
}

type dashboardService struct {
	productRepo repository.ProductRepository
	historyRepo repository.StockHistoryRepository
	orderRepo   repository.OrderRepository
	cfg         config.StockConfig
}

func NewDashboardService(
	pRepo repository.ProductRepository,
	hRepo repository.StockHistoryRepository,
	oRepo repository.OrderRepository,
	cfg config.StockConfig,
) DashboardService {
	return &dashboardService{
		productRepo: pRepo,
		historyRepo: hRepo,
		orderRepo:   oRepo,
		cfg:         cfg,
	}
}

func (s *dashboardService) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalProducts, err = s.productRepo.CountAll(); err != nil {
		return nil, apperr.Wrap("dashboard", err)
	}
	if stats.LowStockCount, err = s.productRepo.CountStockAtOrBelow(s.cfg.LowStockThreshold); err != nil {
		return nil, apperr.Wrap("dashboard", err)
	}
	if stats.CriticalStockCount, err = s.productRepo.CountStockAtOrBelow(s.cfg.CriticalStockThreshold); err != nil {
		return nil, apperr.Wrap("dashboard", err)
	}
	if stats.InventoryValuation, err = s.productRepo.StockValuation(); err != nil {
		return nil, apperr.Wrap("dashboard", err)
	}
	if stats.PendingOrders, err = s.orderRepo.CountByStatus(model.OrderPending); err != nil {
		return nil, apperr.Wrap("dashboard", err)
	}

	return stats, nil
}

func (s *dashboardService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	data, err := s.historyRepo.GetStockMovement(startDate, endDate)
	return data, apperr.Wrap("dashboard", err)
}

func (s *dashboardService) GetRevenueSummary(days int) (*RevenueSummary, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	revenue, err := s.orderRepo.DeliveredItemRevenue(start, end)
	if err != nil {
		return nil, apperr.Wrap("dashboard", err)
	}
	return &RevenueSummary{PeriodStart: start, PeriodEnd: end, Revenue: revenue}, nil
}
