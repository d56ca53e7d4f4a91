package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"catalog-service/internal/catalog"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/store"
	"catalog-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func setupServer(t *testing.T) *echo.Echo {
	t.Helper()
	logger.SetLogger(zaptest.NewLogger(t))

	svc := catalog.NewService(store.NewFileStore(filepath.Join(t.TempDir(), "products.json")))

	e := echo.New()
	e.Validator = NewRequestValidator()
	e.Use(mid.RequestIDMiddleware)
	RegisterRoutes(e, NewProductHandler(svc), "products.json")
	return e
}

func do(t *testing.T, e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// seedProducts creates Mouse, Laptop and Lapdog Toy and returns their ids in that order
func seedProducts(t *testing.T, e *echo.Echo) []string {
	t.Helper()
	var ids []string
	for _, body := range []string{
		`{"name": "Mouse", "price": 20}`,
		`{"name": "Laptop", "price": 1000, "brand": "Acme"}`,
		`{"name": "Lapdog Toy", "price": 5}`,
	} {
		rec := do(t, e, http.MethodPost, "/products", body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ids = append(ids, decode(t, rec)["id"].(string))
	}
	return ids
}

func itemNames(t *testing.T, body map[string]any) []string {
	t.Helper()
	items, ok := body["items"].([]any)
	require.True(t, ok, "items must be a JSON array")
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.(map[string]any)["name"].(string))
	}
	return names
}

func TestRootAndHealth(t *testing.T) {
	e := setupServer(t)

	rec := do(t, e, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "products.json", decode(t, rec)["data_path"])

	rec = do(t, e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestCreateProduct(t *testing.T) {
	e := setupServer(t)

	rec := do(t, e, http.MethodPost, "/products", `{"name": "Laptop", "price": 1000, "brand": "Acme", "id": "client-chosen"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode(t, rec)
	assert.Len(t, body["id"], 36)
	assert.NotEqual(t, "client-chosen", body["id"])
	assert.NotEmpty(t, body["created_at"])
	assert.Equal(t, "Acme", body["brand"])
	assert.NotEmpty(t, rec.Header().Get(logger.RequestIDKey))
}

func TestCreateProductValidation(t *testing.T) {
	e := setupServer(t)

	for name, payload := range map[string]string{
		"missing name":   `{"price": 10}`,
		"missing price":  `{"name": "Mouse"}`,
		"negative price": `{"name": "Mouse", "price": -1}`,
		"wrong type":     `{"name": "Mouse", "price": "ten"}`,
		"not an object":  `[1, 2]`,
		"malformed":      `{"name": `,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, e, http.MethodPost, "/products", payload)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
}

func TestCreateProductDuplicateIsBadRequest(t *testing.T) {
	e := setupServer(t)
	seedProducts(t, e)

	rec := do(t, e, http.MethodPost, "/products", `{"name": "laptop", "price": 1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "already exists")
}

func TestListProductsFilterSortPaginate(t *testing.T) {
	e := setupServer(t)
	seedProducts(t, e)

	rec := do(t, e, http.MethodGet, "/products?name=lap&sort_by_price=true&order=desc", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, float64(10), body["limit"])
	assert.Equal(t, float64(0), body["offset"])
	assert.Equal(t, []string{"Laptop", "Lapdog Toy"}, itemNames(t, body))

	rec = do(t, e, http.MethodGet, "/products?name=lap&limit=1&offset=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(2), body["total"])
	assert.Equal(t, []string{"Lapdog Toy"}, itemNames(t, body))

	rec = do(t, e, http.MethodGet, "/products?name=lap&offset=50", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, float64(2), body["total"])
	assert.Empty(t, itemNames(t, body))
}

func TestListProductsDefaults(t *testing.T) {
	e := setupServer(t)
	seedProducts(t, e)

	rec := do(t, e, http.MethodGet, "/products?sort_by_price=true&order=Desc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Lapdog Toy", "Mouse", "Laptop"}, itemNames(t, decode(t, rec)))
}

func TestListProductsNoMatch(t *testing.T) {
	e := setupServer(t)
	seedProducts(t, e)

	rec := do(t, e, http.MethodGet, "/products?name=xyz", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No product found matching name = xyz", decode(t, rec)["error"])
}

func TestListProductsEmptyCatalogIsNotFound(t *testing.T) {
	e := setupServer(t)

	rec := do(t, e, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProductsInvalidParams(t *testing.T) {
	e := setupServer(t)
	seedProducts(t, e)

	for _, query := range []string{
		"limit=0",
		"limit=101",
		"offset=-1",
		"limit=abc",
		"sort_by_price=maybe",
		"name=" + strings.Repeat("x", 51),
	} {
		t.Run(query, func(t *testing.T) {
			rec := do(t, e, http.MethodGet, "/products?"+query, "")
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		})
	}
}

func TestGetProduct(t *testing.T) {
	e := setupServer(t)
	ids := seedProducts(t, e)

	rec := do(t, e, http.MethodGet, "/products/"+ids[1], "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Laptop", body["name"])
	assert.Equal(t, "Acme", body["brand"])

	rec = do(t, e, http.MethodGet, "/products/00000000-0000-4000-8000-000000000000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decode(t, rec)["error"])

	rec = do(t, e, http.MethodGet, "/products/short", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetProductCountsIDLengthInCharacters(t *testing.T) {
	e := setupServer(t)
	seedProducts(t, e)

	rec := do(t, e, http.MethodGet, "/products/"+strings.Repeat("é", 36), "")
	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

	rec = do(t, e, http.MethodGet, "/products/"+strings.Repeat("é", 18), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestUpdateProduct(t *testing.T) {
	e := setupServer(t)
	ids := seedProducts(t, e)

	created := decode(t, do(t, e, http.MethodGet, "/products/"+ids[0], ""))

	rec := do(t, e, http.MethodPut, "/products/"+ids[0], `{"price": 25.5, "color": "black", "created_at": "1999-01-01T00:00:00Z"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "Mouse", body["name"])
	assert.Equal(t, 25.5, body["price"])
	assert.Equal(t, "black", body["color"])
	assert.Equal(t, created["created_at"], body["created_at"])

	fetched := decode(t, do(t, e, http.MethodGet, "/products/"+ids[0], ""))
	assert.Equal(t, 25.5, fetched["price"])
}

func TestUpdateProductErrors(t *testing.T) {
	e := setupServer(t)
	ids := seedProducts(t, e)

	rec := do(t, e, http.MethodPut, "/products/00000000-0000-4000-8000-000000000000", `{"price": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodPut, "/products/not-a-uuid", `{"price": 1}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, e, http.MethodPut, "/products/"+ids[0], `{"price": -3}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, e, http.MethodPut, "/products/"+ids[0], `{"name": ""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, e, http.MethodPut, "/products/"+ids[0], `{"name": "Laptop"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProductAcceptsUppercaseUUID(t *testing.T) {
	e := setupServer(t)
	ids := seedProducts(t, e)

	rec := do(t, e, http.MethodPut, "/products/"+strings.ToUpper(ids[2]), `{"name": "Lapdog Plush"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, ids[2], decode(t, rec)["id"])
}

func TestDeleteProduct(t *testing.T) {
	e := setupServer(t)
	ids := seedProducts(t, e)

	rec := do(t, e, http.MethodDelete, "/products/"+ids[0], "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Product deleted successfully", body["message"])
	assert.Equal(t, ids[0], body["id"])

	rec = do(t, e, http.MethodGet, "/products/"+ids[0], "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodDelete, "/products/"+ids[0], "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodDelete, "/products/nope", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
