package handler

import (
	"lilium-backend/internal/model"
	"lilium-backend/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CompanyHandler struct {
	service service.CompanyService
}

func NewCompanyHandler(s service.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: s}
}

// CreateCompany handles POST /companies
func (h *CompanyHandler) CreateCompany(c *fiber.Ctx) error {
	var company model.Company
	if err := c.BodyParser(&company); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateCompany(&company, getUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Company created", "data": company})
}

// UpdateCompany handles PUT /companies/:id
func (h *CompanyHandler) UpdateCompany(c *fiber.Ctx) error {
	companyID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	var company model.Company
	if err := c.BodyParser(&company); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateCompany(companyID, &company, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Company updated", "data": updated})
}

// GetCompany handles GET /companies/:id
func (h *CompanyHandler) GetCompany(c *fiber.Ctx) error {
	companyID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid company ID"})
	}

	company, err := h.service.GetCompany(companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(company)
}

// GetCompanies handles GET /companies (zone-scoped)
func (h *CompanyHandler) GetCompanies(c *fiber.Ctx) error {
	companies, err := h.service.ListCompanies(zoneScope(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(companies)
}
