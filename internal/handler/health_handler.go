package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Root returns the welcome payload with the location of the catalog
func Root(dataPath string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"message":   "Welcome to the catalog API",
			"data_path": dataPath,
		})
	}
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes mounts the catalog API on e
func RegisterRoutes(e *echo.Echo, products *ProductHandler, dataPath string) {
	e.GET("/", Root(dataPath))
	e.GET("/health", Health)

	productAPI := e.Group("/products")
	productAPI.GET("", products.ListProducts)
	productAPI.GET("/:id", products.GetProduct)
	productAPI.POST("", products.CreateProduct)
	productAPI.PUT("/:id", products.UpdateProduct)
	productAPI.DELETE("/:id", products.DeleteProduct)
}
