package handler

import (
	"time"

	"lilium-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type SettlementHandler struct {
	service service.SettlementService
}

func NewSettlementHandler(s service.SettlementService) *SettlementHandler {
	return &SettlementHandler{service: s}
}

const dateLayout = "2006-01-02"

// CreateSettlement handles POST /companies/:id/settlements
func (h *SettlementHandler) CreateSettlement(c *fiber.Ctx) error {
	companyID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	var body struct {
		PeriodStart string `json:"period_start"`
		PeriodEnd   string `json:"period_end"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	start, err := time.Parse(dateLayout, body.PeriodStart)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "period_start must be YYYY-MM-DD"})
	}
	end, err := time.Parse(dateLayout, body.PeriodEnd)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "period_end must be YYYY-MM-DD"})
	}

	settlement, err := h.service.CreateSettlement(companyID, start, end, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Settlement created", "data": settlement})
}

// GetSettlementSummary handles GET /companies/:id/settlements/summary
func (h *SettlementHandler) GetSettlementSummary(c *fiber.Ctx) error {
	companyID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	var startPtr, endPtr *time.Time
	if v := c.Query("start_date"); v != "" {
		start, err := time.Parse(dateLayout, v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "start_date must be YYYY-MM-DD"})
		}
		startPtr = &start
	}
	if v := c.Query("end_date"); v != "" {
		end, err := time.Parse(dateLayout, v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "end_date must be YYYY-MM-DD"})
		}
		endPtr = &end
	}

	summary, err := h.service.GetSettlementSummary(companyID, startPtr, endPtr)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// ReconcileCash handles GET /companies/:id/settlements/reconcile
func (h *SettlementHandler) ReconcileCash(c *fiber.Ctx) error {
	companyID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	start, err := time.Parse(dateLayout, c.Query("start_date"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	end, err := time.Parse(dateLayout, c.Query("end_date"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "end_date must be YYYY-MM-DD"})
	}

	report, err := h.service.ReconcileCash(companyID, start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(report)
}

// MarkCashCollected handles POST /orders/:id/cash-collected
func (h *SettlementHandler) MarkCashCollected(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.MarkCashCollected(orderID, body.Amount, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cash collection recorded", "data": order})
}

// GetPendingCashCollections handles GET /companies/:id/settlements/pending-cash
func (h *SettlementHandler) GetPendingCashCollections(c *fiber.Ctx) error {
	companyID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	collections, err := h.service.GetPendingCashCollections(companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(collections)
}

// GetPlatformEarnings handles GET /settlements/platform-earnings
func (h *SettlementHandler) GetPlatformEarnings(c *fiber.Ctx) error {
	start, err := time.Parse(dateLayout, c.Query("start_date"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "start_date must be YYYY-MM-DD"})
	}
	end, err := time.Parse(dateLayout, c.Query("end_date"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "end_date must be YYYY-MM-DD"})
	}

	earnings, err := h.service.CalculatePlatformEarnings(start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(earnings)
}

// ListSettlements handles GET /companies/:id/settlements
func (h *SettlementHandler) ListSettlements(c *fiber.Ctx) error {
	companyID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	settlements, err := h.service.GetSettlementsForCompany(companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(settlements)
}

// VerifySettlement handles POST /settlements/:id/verify
func (h *SettlementHandler) VerifySettlement(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid settlement ID"})
	}

	settlement, err := h.service.VerifySettlement(id, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Settlement verified", "data": settlement})
}

// MarkSettled handles POST /settlements/:id/settle
func (h *SettlementHandler) MarkSettled(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid settlement ID"})
	}

	settlement, err := h.service.MarkSettled(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Settlement settled", "data": settlement})
}

// DisputeSettlement handles POST /settlements/:id/dispute
func (h *SettlementHandler) DisputeSettlement(c *fiber.Ctx) error {
	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid settlement ID"})
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	settlement, err := h.service.DisputeSettlement(id, body.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Settlement disputed", "data": settlement})
}
