package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/octobees/nzwalks/api/internal/config"
	"github.com/octobees/nzwalks/api/internal/handler"
	middlewarepkg "github.com/octobees/nzwalks/api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Health  *handler.HealthHandler
	Regions *handler.RegionsHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, gatherer prometheus.Gatherer, handlers Handlers) {
	e.GET("/healthz", handlers.Health.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	regions := e.Group(handler.RegionsPath, middlewarepkg.WriteRateLimiter(cfg.RateLimitWrites))
	regions.GET("", handlers.Regions.List)
	regions.POST("", handlers.Regions.Create)
	regions.DELETE("", handlers.Regions.Delete)
	regions.GET("/:id", handlers.Regions.Get)
	regions.PUT("/:id", handlers.Regions.Update)
	regions.DELETE("/:id", handlers.Regions.Delete)
}
