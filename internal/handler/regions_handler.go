package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/nzwalks/api/internal/dto"
	"github.com/octobees/nzwalks/api/internal/middleware"
	"github.com/octobees/nzwalks/api/internal/repository"
	"github.com/octobees/nzwalks/api/internal/service"
)

// RegionsPath is the resource root the region routes are mounted under.
const RegionsPath = "/api/regions"

// RegionsHandler exposes CRUD endpoints for regions.
type RegionsHandler struct {
	regions *service.RegionService
	logger  *zap.Logger
}

// NewRegionsHandler constructs a handler instance.
func NewRegionsHandler(regions *service.RegionService, logger *zap.Logger) *RegionsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegionsHandler{regions: regions, logger: logger}
}

// List handles GET /api/regions.
func (h *RegionsHandler) List(c echo.Context) error {
	regions, err := h.regions.ListRegions(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "failed to list regions")
	}
	return c.JSON(http.StatusOK, regions)
}

// Get handles GET /api/regions/:id.
func (h *RegionsHandler) Get(c echo.Context) error {
	result, err := h.regions.GetRegion(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err, "failed to load region")
	}
	setETag(c, result.Version)
	return c.JSON(http.StatusOK, result.Region)
}

// Create handles POST /api/regions.
func (h *RegionsHandler) Create(c echo.Context) error {
	var req dto.AddRegionRequestDto
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	result, err := h.regions.CreateRegion(c.Request().Context(), req)
	if err != nil {
		return h.fail(c, err, "failed to create region")
	}

	c.Response().Header().Set(echo.HeaderLocation, RegionsPath+"/"+result.Region.ID.String())
	setETag(c, result.Version)
	return c.JSON(http.StatusCreated, result.Region)
}

// Update handles PUT /api/regions/:id.
func (h *RegionsHandler) Update(c echo.Context) error {
	var req dto.UpdateRegionRequestDto
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	var expected int64
	if ifMatch := c.Request().Header.Get("If-Match"); ifMatch != "" && ifMatch != "*" {
		version, err := service.ParseVersion(ifMatch)
		if err != nil {
			return Error(c, http.StatusPreconditionFailed, err.Error())
		}
		expected = version
	}

	result, err := h.regions.UpdateRegion(c.Request().Context(), c.Param("id"), req, expected)
	if err != nil {
		return h.fail(c, err, "failed to update region")
	}
	setETag(c, result.Version)
	return c.JSON(http.StatusOK, result.Region)
}

// Delete handles DELETE /api/regions/:id as well as DELETE /api/regions?id=.
func (h *RegionsHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		id = c.QueryParam("id")
	}

	if err := h.regions.DeleteRegion(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "failed to delete region")
	}
	return c.NoContent(http.StatusOK)
}

func (h *RegionsHandler) fail(c echo.Context, err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrRegionNotFound):
		return Error(c, http.StatusNotFound, "region not found")
	case errors.Is(err, service.ErrInvalidRegionID), errors.Is(err, service.ErrRegionIDMismatch):
		return Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrConcurrentModification):
		return Error(c, http.StatusConflict, err.Error())
	default:
		h.logger.Error(message,
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.Error(err),
		)
		return Error(c, http.StatusInternalServerError, message)
	}
}

func setETag(c echo.Context, version int64) {
	c.Response().Header().Set("ETag", strconv.Quote(strconv.FormatInt(version, 10)))
}
