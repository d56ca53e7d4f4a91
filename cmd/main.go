package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"catalog-service/internal/catalog"
	"catalog-service/internal/handler"
	mid "catalog-service/internal/middleware"
	"catalog-service/internal/store"
	"catalog-service/pkg/config"
	"catalog-service/pkg/database"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	client "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	// Load configuration (reads .env when present)
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	logger.InitLogger(appConfig)
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting catalog-service", appConfig.LogFields()...)

	prometheus.InitMetrics(appConfig, client.DefaultRegisterer)
	log.Info("Prometheus metrics initialized",
		zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	catalogStore, err := store.New(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize catalog store", zap.Error(err))
	}
	log.Info("Catalog store ready",
		zap.String("driver", appConfig.Storage.Driver),
		zap.String("data_path", appConfig.DataPath()))

	products := handler.NewProductHandler(catalog.NewService(catalogStore))

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	// Middleware
	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(mid.MetricsMiddleware)
	e.Use(logger.Middleware())

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	handler.RegisterRoutes(e, products, appConfig.DataPath())

	port := appConfig.Server.Port
	go func() {
		log.Info("Starting server", zap.String("port", port))
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		appConfig.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Info("Shutting down HTTP server")
				return e.Shutdown(ctx)
			},
			"database": func(ctx context.Context) error {
				return database.Close()
			},
		},
	)

	exitCode := <-wait
	log.Info("catalog-service stopped", zap.Int("exit_code", exitCode))
	_ = log.Sync()
	os.Exit(exitCode)
}
