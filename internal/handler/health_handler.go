package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is implemented by anything that can verify its backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service liveness together with storage reachability.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler constructs a handler instance.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check handles GET /healthz.
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return Error(c, http.StatusServiceUnavailable, "database unreachable")
	}
	return Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
}
