package handler

import (
	"strconv"

	"lilium-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetDashboardStats returns overview statistics
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

// GetStockMovement returns daily ledger activity for charts
// Query params: days (default 7)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.GetStockMovement(days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetRevenueSummary returns delivered-order revenue for the trailing window
func (h *DashboardHandler) GetRevenueSummary(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days <= 0 {
		days = 30
	}

	summary, err := h.service.GetRevenueSummary(days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}
