package handler

import (
	"lilium-backend/internal/model"
	"lilium-backend/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(s service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: s}
}

// CreateProduct handles POST /products
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateProduct(&product, getUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// UpdateProduct handles PUT /products/:id
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var product model.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateProduct(productID, &product, getUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// GetProduct handles GET /products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.service.GetProduct(productID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// GetProducts handles GET /products. Listings are zone-scoped through the
// central policy; query params narrow further.
func (h *CatalogHandler) GetProducts(c *fiber.Ctx) error {
	filter := service.ProductFilter{
		Scope:        zoneScope(c),
		ActiveOnly:   c.QueryBool("active_only", false),
		FeaturedOnly: c.QueryBool("featured_only", false),
	}
	if v := c.Query("category_id"); v != "" {
		categoryID, err := uuid.Parse(v)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid category ID"})
		}
		filter.CategoryID = &categoryID
	}

	products, err := h.service.ListProducts(filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// CreateCategory handles POST /categories
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var category model.Category
	if err := c.BodyParser(&category); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.service.CreateCategory(&category, getUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Category created", "data": category})
}

// GetCategories handles GET /categories
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// SubscribeBackInStock handles POST /products/:id/notify-me
func (h *CatalogHandler) SubscribeBackInStock(c *fiber.Ctx) error {
	productID, err := parseUUID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	userID, err := parseUUID(getUserID(c))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid user identity"})
	}

	if err := h.service.SubscribeBackInStock(productID, userID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "You will be notified when this product is back in stock"})
}
