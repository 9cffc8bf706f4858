package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/octobees/nzwalks/api/internal/config"
	"github.com/octobees/nzwalks/api/internal/database"
	"github.com/octobees/nzwalks/api/internal/handler"
	"github.com/octobees/nzwalks/api/internal/logger"
	middlewarepkg "github.com/octobees/nzwalks/api/internal/middleware"
	"github.com/octobees/nzwalks/api/internal/repository"
	"github.com/octobees/nzwalks/api/internal/router"
	"github.com/octobees/nzwalks/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction())
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	regionsRepo, closeStore, err := openRegionsRepository(ctx, cfg)
	if err != nil {
		zl.Fatal("failed to connect database", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	regionService := service.NewRegionService(regionsRepo)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middlewarepkg.NewHTTPMetrics(registry)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(zl))
	e.Use(metrics.Middleware())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, registry, router.Handlers{
		Health:  handler.NewHealthHandler(regionService),
		Regions: handler.NewRegionsHandler(regionService, zl),
	})

	serverErr := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("port", cfg.Port), zap.String("driver", cfg.StoreDriver))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		zl.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("graceful shutdown failed", zap.Error(err))
	}
}

func openRegionsRepository(ctx context.Context, cfg *config.Config) (repository.RegionsRepository, func(), error) {
	if cfg.StoreDriver == config.DriverPostgres {
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPGXRegionsRepository(pool), pool.Close, nil
	}

	db, err := database.OpenGorm(ctx, cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return repository.NewGormRegionsRepository(db), func() { _ = database.CloseGorm(db) }, nil
}
