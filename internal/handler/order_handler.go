package handler

import (
	"strconv"

	"lilium-backend/internal/model"
	"lilium-backend/internal/policy"
	"lilium-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// PlaceOrder handles POST /orders
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	var req service.PlaceOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user identity"})
	}

	order, err := h.service.PlaceOrder(&req, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order placed", "data": order})
}

// UpdateOrderStatus handles PUT /orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	var body struct {
		Status model.OrderStatus `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.UpdateOrderStatus(orderID, body.Status, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order status updated", "data": order})
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	orderID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid order ID"})
	}

	order, err := h.service.GetOrder(orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// GetMyOrders handles GET /orders/mine
func (h *OrderHandler) GetMyOrders(c *fiber.Ctx) error {
	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user identity"})
	}

	orders, err := h.service.GetOrdersForUser(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GetOrders handles GET /orders (admin listing, limited to the caller's zones)
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	orders, err := h.service.GetRecentOrders(limit)
	if err != nil {
		return respondError(c, err)
	}

	scope := zoneScope(c)
	visible := make([]model.Order, 0, len(orders))
	for _, order := range orders {
		if policy.InScope(scope, model.ZoneList{order.Zone}) {
			visible = append(visible, order)
		}
	}
	return c.JSON(visible)
}
