package handler

import (
	"lilium-backend/internal/apperr"
	"lilium-backend/internal/model"
	"lilium-backend/internal/policy"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Context helpers for identity set by the auth middleware.

func getUserID(c *fiber.Ctx) string {
	userID := c.Locals("user_id")
	if userID == nil {
		return "system" // shouldn't happen on protected routes
	}
	return userID.(string)
}

func getUserRole(c *fiber.Ctx) string {
	role := c.Locals("user_role")
	if role == nil {
		return ""
	}
	return role.(string)
}

func getUserZones(c *fiber.Ctx) model.ZoneList {
	zones := c.Locals("user_zones")
	if zones == nil {
		return nil
	}
	return zones.(model.ZoneList)
}

// zoneScope resolves the caller's visibility through the central policy.
func zoneScope(c *fiber.Ctx) model.ZoneList {
	return policy.ZoneScope(getUserRole(c), getUserZones(c))
}

func parseUUID(id string) (uuid.UUID, error) {
	return uuid.Parse(id)
}

// respondError maps a tagged domain error to an HTTP status.
func respondError(c *fiber.Ctx, err error) error {
	status := 500
	switch apperr.KindOf(err) {
	case apperr.NotFound:
		status = 404
	case apperr.InvalidState, apperr.AmountMismatch:
		status = 400
	case apperr.Conflict:
		status = 409
	}
	if status == 500 {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
