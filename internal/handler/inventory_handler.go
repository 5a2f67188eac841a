package handler

import (
	"strconv"

	"lilium-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

// UpdateStock handles POST /inventory/stock
func (h *InventoryHandler) UpdateStock(c *fiber.Ctx) error {
	var req service.UpdateStockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	result, err := h.service.UpdateStock(&req, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Stock updated", "data": result})
}

// BulkUpdateStock handles POST /inventory/stock/bulk
func (h *InventoryHandler) BulkUpdateStock(c *fiber.Ctx) error {
	var body struct {
		Updates []service.UpdateStockRequest `json:"updates"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if len(body.Updates) == 0 {
		return c.Status(400).JSON(fiber.Map{"error": "No updates provided"})
	}

	result, err := h.service.BulkUpdateStock(body.Updates, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(result)
}

// GetStockHistory handles GET /products/:id/history
func (h *InventoryHandler) GetStockHistory(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	entries, err := h.service.GetStockHistory(productID, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// GetRestockSuggestions handles GET /inventory/restock-suggestions
func (h *InventoryHandler) GetRestockSuggestions(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "30"))
	if err != nil || days <= 0 {
		days = 30
	}

	suggestions, err := h.service.GetRestockSuggestions(days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"period_days": days,
		"suggestions": suggestions,
	})
}
