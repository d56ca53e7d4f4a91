package middleware

import (
	"catalog-service/prometheus"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// MetricsMiddleware records request count and duration per route
func MetricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}

		status := c.Response().Status
		if err != nil && !c.Response().Committed {
			// the error handler has not written yet; report what it will send
			status = http.StatusInternalServerError
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
		}

		prometheus.RecordHTTPRequest(c.Request().Method, path, strconv.Itoa(status), time.Since(start))
		return err
	}
}
