package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/nunatech/sila/internal/api/http"
	"github.com/nunatech/sila/internal/cache"
	"github.com/nunatech/sila/internal/config"
	"github.com/nunatech/sila/internal/geomag"
	"github.com/nunatech/sila/internal/scheduler"
	"github.com/nunatech/sila/internal/seaice"
	"github.com/nunatech/sila/internal/weather"
	"github.com/nunatech/sila/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	locations, err := config.LoadLocations(cfg.LocationsFile)
	if err != nil {
		logger.Fatal("failed to load locations", zap.Error(err))
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	snapshots := cache.New(cache.WithTTL(cfg.CacheTTL))

	primary := providers.NewMetGateway(httpClient, "", cfg.UserAgent, logger)
	fallback := providers.NewWeatherAPIGateway(httpClient, "", cfg.WeatherAPIKey, logger)

	service := weather.NewService(primary, fallback, snapshots, locations,
		weather.WithLogger(logger))

	kpFeed := geomag.NewClient(httpClient, "", logger)
	iceModel := seaice.NewEstimator(rand.NewSource(time.Now().UnixNano()))

	// Background cache warmer.
	refresher := scheduler.New(service, cfg.RefreshInterval, cfg.HTTPTimeout*2, logger)
	if err := refresher.Start(); err != nil {
		logger.Fatal("failed to start refresher", zap.Error(err))
	}
	defer refresher.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "sila",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "sila",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service: service,
		Geomag:  kpFeed,
		SeaIce:  iceModel,
	})

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}
