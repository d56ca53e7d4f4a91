package handler

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"catalog-service/internal/catalog"
	"catalog-service/internal/model"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const productIDLength = 36

// ProductHandler serves the /products routes
type ProductHandler struct {
	svc *catalog.Service
}

func NewProductHandler(svc *catalog.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// ListProducts handles filtered, sorted and paginated listing
func (h *ProductHandler) ListProducts(c echo.Context) error {
	log := logger.FromContext(c)

	req := newListProductsRequest()
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		log.Warn("Invalid list query parameters", zap.Error(err))
		return invalid(c, err)
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("List query failed validation", zap.Error(err))
		return invalid(c, err)
	}

	log.Info("Listing products",
		zap.String("name", req.Name),
		zap.Bool("sort_by_price", req.SortByPrice),
		zap.String("order", req.Order),
		zap.Int("limit", req.Limit),
		zap.Int("offset", req.Offset))

	page, err := h.svc.List(c.Request().Context(), req.toQuery())
	switch {
	case err == nil:
	case errors.Is(err, catalog.ErrNoMatchingProducts):
		prometheus.RecordNoMatch()
		prometheus.RecordProductOperation("list", "no_match")
		log.Info("No products matched", zap.String("name", req.Name))
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, catalog.ErrInvalidQuery):
		return invalid(c, err)
	default:
		prometheus.RecordProductOperation("list", "error")
		log.Error("Failed to list products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve products"})
	}

	prometheus.RecordProductOperation("list", "ok")
	log.Info("Products listed", zap.Int("total", page.Total), zap.Int("returned", len(page.Items)))
	return c.JSON(http.StatusOK, page)
}

// GetProduct handles retrieving a single product by ID
func (h *ProductHandler) GetProduct(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	if utf8.RuneCountInString(id) != productIDLength {
		log.Warn("Malformed product id", zap.String("product_id", id))
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "product id must be 36 characters"})
	}

	product, err := h.svc.Get(c.Request().Context(), id)
	if errors.Is(err, model.ErrProductNotFound) {
		prometheus.RecordProductOperation("get", "not_found")
		log.Info("Product not found", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	}
	if err != nil {
		prometheus.RecordProductOperation("get", "error")
		log.Error("Failed to get product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve product"})
	}

	prometheus.RecordProductOperation("get", "ok")
	return c.JSON(http.StatusOK, product)
}

// CreateProduct handles creating a new product
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid request data", zap.Error(err))
		return invalid(c, err)
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Product payload failed validation", zap.Error(err))
		return invalid(c, err)
	}

	product, err := h.svc.Create(c.Request().Context(), req.toNewProduct())
	if errors.Is(err, model.ErrDuplicateProduct) {
		prometheus.RecordProductOperation("create", "rejected")
		log.Warn("Product rejected by store", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err != nil {
		prometheus.RecordProductOperation("create", "error")
		log.Error("Failed to create product", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create product"})
	}

	prometheus.RecordProductOperation("create", "ok")
	log.Info("Product created successfully",
		zap.String("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Float64("price", product.Price))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct handles partial updates of an existing product
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id, ok := productUUID(c)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "product id must be a UUID"})
	}

	var req ProductPatchRequest
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid request data", zap.String("product_id", id), zap.Error(err))
		return invalid(c, err)
	}
	if err := c.Validate(&req); err != nil {
		log.Warn("Product patch failed validation", zap.String("product_id", id), zap.Error(err))
		return invalid(c, err)
	}

	product, err := h.svc.Update(c.Request().Context(), id, req.toPatch())
	switch {
	case err == nil:
	case errors.Is(err, model.ErrProductNotFound):
		prometheus.RecordProductOperation("update", "not_found")
		log.Info("Product not found for update", zap.String("product_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Product not found"})
	case errors.Is(err, model.ErrDuplicateProduct):
		prometheus.RecordProductOperation("update", "rejected")
		log.Warn("Product update rejected by store", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		prometheus.RecordProductOperation("update", "error")
		log.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update product"})
	}

	prometheus.RecordProductOperation("update", "ok")
	log.Info("Product updated successfully",
		zap.String("product_id", id),
		zap.String("name", product.Name),
		zap.Float64("price", product.Price))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct handles removing a product
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)

	id, ok := productUUID(c)
	if !ok {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "product id must be a UUID"})
	}

	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		prometheus.RecordProductOperation("delete", "error")
		log.Warn("Failed to delete product", zap.String("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	prometheus.RecordProductOperation("delete", "ok")
	log.Info("Product deleted successfully", zap.String("product_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Product deleted successfully",
		"id":      id,
	})
}

// productUUID parses the id path parameter into its canonical lower-case form
func productUUID(c echo.Context) (string, bool) {
	raw := c.Param("id")
	parsed, err := uuid.Parse(raw)
	if err != nil {
		logger.FromContext(c).Warn("Malformed product id", zap.String("product_id", raw), zap.Error(err))
		return "", false
	}
	return parsed.String(), true
}

// invalid reports a request that failed binding or validation
func invalid(c echo.Context, err error) error {
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	}
	return c.JSON(http.StatusUnprocessableEntity, echo.Map{
		"error":   "Invalid request data",
		"details": msg,
	})
}
