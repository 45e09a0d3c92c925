package handlers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"catalog/internal/apperror"
	"catalog/internal/dto"
	"catalog/internal/models"
	"catalog/internal/services"
)

var errPageOutOfRange = errors.New("page offset exceeds the addressable range")

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service         *services.ProductService
	validate        *validator.Validate
	defaultPageSize int
	maxPageSize     int
}

// NewProductHandler creates a new ProductHandler. Requested page sizes
// below one fall back to defaultPageSize and are capped at maxPageSize.
func NewProductHandler(service *services.ProductService, validate *validator.Validate, defaultPageSize, maxPageSize int) *ProductHandler {
	return &ProductHandler{
		service:         service,
		validate:        validate,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// RegisterRoutes registers the product routes on router.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	// Registered before /:id so "vendors" is not taken for an id.
	productRoutes.Get("/vendors", h.HandleGetVendors)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// HandleGetProducts returns one page of products matching the query filters.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	pageReq, err := h.parsePageRequest(c)
	if err != nil {
		return err
	}

	page, err := h.service.ListProducts(c.UserContext(), filter, pageReq)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProductPage(page))
}

// HandleGetVendors returns every distinct vendor, ascending.
func (h *ProductHandler) HandleGetVendors(c *fiber.Ctx) error {
	vendors, err := h.service.GetDistinctVendors(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(vendors)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.ToDTO(*product))
}

// HandleCreateProduct stores a new product and answers 201 with its location.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	req, err := h.parseBody(c)
	if err != nil {
		return err
	}

	product := req.ToEntity()
	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return err
	}

	c.Location(fmt.Sprintf("%s/%d", strings.TrimSuffix(c.Path(), "/"), product.ID))
	return c.Status(fiber.StatusCreated).JSON(dto.ToDTO(*product))
}

// HandleUpdateProduct overwrites every mutable field of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	req, err := h.parseBody(c)
	if err != nil {
		return err
	}

	product := req.ToEntity()
	product.ID = id
	if err := h.service.UpdateProduct(c.UserContext(), product); err != nil {
		return err
	}
	return c.JSON(dto.ToDTO(*product))
}

// HandleDeleteProduct removes a product and answers 204.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) parseBody(c *fiber.Ctx) (dto.ProductRequest, error) {
	var req dto.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return req, apperror.NewInvalidInput("body", "malformed JSON", err)
	}
	req.Normalize()
	if err := h.validate.Struct(req); err != nil {
		if fields := dto.FieldErrors(err); fields != nil {
			return req, apperror.NewValidation("request validation failed", fields)
		}
		return req, err
	}
	return req, nil
}

func (h *ProductHandler) parsePageRequest(c *fiber.Ctx) (models.PageRequest, error) {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return models.PageRequest{}, err
	}
	if page < 0 {
		page = 0
	}

	size, err := queryInt(c, "size", h.defaultPageSize)
	if err != nil {
		return models.PageRequest{}, err
	}
	if size < 1 {
		size = h.defaultPageSize
	}
	if size > h.maxPageSize {
		size = h.maxPageSize
	}
	if page > math.MaxInt/size {
		return models.PageRequest{}, apperror.NewInvalidInput("page", strconv.Itoa(page), errPageOutOfRange)
	}

	// sort may repeat: ?sort=vendor&sort=price,desc
	var rawSort []string
	for _, v := range c.Context().QueryArgs().PeekMulti("sort") {
		rawSort = append(rawSort, string(v))
	}
	sorts, err := models.ParseSort(rawSort, models.ProductSortColumns)
	if err != nil {
		return models.PageRequest{}, apperror.NewInvalidInput("sort", strings.Join(rawSort, ";"), err)
	}

	return models.PageRequest{Page: page, Size: size, Sort: sorts}, nil
}

func parseFilter(c *fiber.Ctx) (models.ProductFilter, error) {
	filter := models.ProductFilter{
		Search: c.Query("search"),
		Vendor: c.Query("vendor"),
	}
	var err error
	if filter.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return filter, err
	}
	if filter.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseID(c *fiber.Ctx) (int64, error) {
	raw := c.Params("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.NewInvalidInput("id", raw, err)
	}
	return id, nil
}

func queryInt(c *fiber.Ctx, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewInvalidInput(key, raw, err)
	}
	return v, nil
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperror.NewInvalidInput(key, raw, err)
	}
	return &d, nil
}
