package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/jvegav/EcoTrade/internal/api/dto"
	"github.com/jvegav/EcoTrade/internal/service"
)

// ProductsHandler exposes the product resource family.
type ProductsHandler struct {
	products *service.ProductService
}

// NewProductsHandler constructs handler.
func NewProductsHandler(products *service.ProductService) *ProductsHandler {
	return &ProductsHandler{products: products}
}

// List handles GET /products.
func (h *ProductsHandler) List(c *fiber.Ctx) error {
	products, err := h.products.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductResponses(products))
}

// GetByID handles GET /products/:id.
func (h *ProductsHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	product, err := h.products.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductResponse(product))
}

// ListByOwner handles GET /products/user/:userId.
func (h *ProductsHandler) ListByOwner(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	products, err := h.products.ListByOwner(c.UserContext(), ownerID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductResponses(products))
}

// Create handles POST /products/user/:userId (publish).
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	ownerID, err := parseID(c, "userId")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	product, err := h.products.Create(c.UserContext(), ownerID, service.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		UseTime:     req.UseTime,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewProductResponse(product))
}

// Update handles PUT /products/:id.
func (h *ProductsHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	product, err := h.products.Update(c.UserContext(), id, service.ProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		UseTime:     req.UseTime,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductResponse(product))
}

// Delete handles DELETE /products/:id.
func (h *ProductsHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.products.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "product deleted"})
}
