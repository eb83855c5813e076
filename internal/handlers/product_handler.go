package handlers

import (
	"errors"
	"log"

	"productapi/internal/repositories"
	"productapi/internal/services"
	"productapi/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Post("/", h.HandleCreateProduct)
	// Registered ahead of /:id so "dashboard" is not read as an id.
	productRoutes.Get("/dashboard", h.HandleGetDashboard)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/", h.HandleDeleteProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts lists every product.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err, "retrieve products")
	}
	return c.JSON(products)
}

// HandleGetDashboard lists the products of the creator named in the
// "creator" query parameter. Without the parameter every product is listed.
func (h *ProductHandler) HandleGetDashboard(c *fiber.Ctx) error {
	args := c.Context().QueryArgs()
	if !args.Has("creator") {
		return h.HandleGetProducts(c)
	}

	creator := string(args.Peek("creator"))
	if creator == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "creator query parameter must not be empty",
		})
	}

	products, err := h.service.GetProductsByCreator(c.UserContext(), creator)
	if err != nil {
		return respondError(c, err, "retrieve products")
	}
	return c.JSON(products)
}

// HandleCreateProduct validates and stores a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	payload, err := parsePayload(c)
	if err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	input, err := validation.ValidateProduct(payload)
	if err != nil {
		return respondValidation(c, err)
	}

	product, err := h.service.CreateProduct(c.UserContext(), input)
	if err != nil {
		return respondError(c, err, "create product")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Product created successfully",
		"id":      product.ID,
	})
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID, ok := validation.NormalizeID(c.Params("id"))
	if !ok {
		return respondInvalidID(c)
	}

	product, err := h.service.GetProductByID(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err, "retrieve product")
	}
	return c.JSON(product)
}

// HandleUpdateProduct replaces the fields of an existing product. The id
// is checked before the body is looked at.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID, ok := validation.NormalizeID(c.Params("id"))
	if !ok {
		return respondInvalidID(c)
	}

	payload, err := parsePayload(c)
	if err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	input, err := validation.ValidateProduct(payload)
	if err != nil {
		return respondValidation(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), productID, input)
	if err != nil {
		return respondError(c, err, "update product")
	}

	return c.JSON(fiber.Map{
		"message": "Product updated successfully",
		"product": product,
	})
}

// HandleDeleteProduct removes a product and echoes its prior state.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if c.Params("id") == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product id is required",
		})
	}
	productID, ok := validation.NormalizeID(c.Params("id"))
	if !ok {
		return respondInvalidID(c)
	}

	product, err := h.service.DeleteProduct(c.UserContext(), productID)
	if err != nil {
		return respondError(c, err, "delete product")
	}

	return c.JSON(fiber.Map{
		"message":        "Product deleted successfully",
		"deletedProduct": product,
	})
}

// parsePayload decodes the request body into a generic JSON object so
// that field types can be checked before anything is converted.
func parsePayload(c *fiber.Ctx) (map[string]interface{}, error) {
	var payload map[string]interface{}
	if err := c.BodyParser(&payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return payload, nil
}

func respondValidation(c *fiber.Ctx, err error) error {
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": fieldErrs,
		})
	}
	log.Printf("Error validating product: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Could not validate product",
	})
}

func respondInvalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Invalid product id",
	})
}

// respondError maps repository and connection failures to a response.
// Only not-found is reported as such; everything else is a generic 500
// and the cause stays in the server log.
func respondError(c *fiber.Ctx, err error, action string) error {
	if errors.Is(err, repositories.ErrProductNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	}
	log.Printf("Error trying to %s: %v", action, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Could not " + action,
	})
}
