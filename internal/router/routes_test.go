package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/nzwalks/api/internal/config"
	"github.com/octobees/nzwalks/api/internal/database"
	"github.com/octobees/nzwalks/api/internal/dto"
	"github.com/octobees/nzwalks/api/internal/handler"
	middlewarepkg "github.com/octobees/nzwalks/api/internal/middleware"
	"github.com/octobees/nzwalks/api/internal/repository"
	"github.com/octobees/nzwalks/api/internal/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := database.OpenGorm(context.Background(), config.DriverSQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseGorm(db) })

	regions := service.NewRegionService(repository.NewGormRegionsRepository(db))
	registry := prometheus.NewRegistry()

	e := echo.New()
	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.NewHTTPMetrics(registry).Middleware())
	Register(e, &config.Config{}, registry, Handlers{
		Health:  handler.NewHealthHandler(regions),
		Regions: handler.NewRegionsHandler(regions, nil),
	})
	return e
}

func do(e *echo.Echo, method, target string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegionsLifecycle(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/regions", map[string]any{"code": "WLG", "name": "Wellington", "regionImage": nil}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created dto.RegionDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "WLG", created.Code)
	assert.Nil(t, created.RegionImage)
	location := rec.Header().Get(echo.HeaderLocation)
	assert.Equal(t, "/api/regions/"+created.ID.String(), location)

	rec = do(e, http.MethodGet, location, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched dto.RegionDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
	assert.Equal(t, `"1"`, rec.Header().Get("ETag"))

	rec = do(e, http.MethodDelete, location, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, location, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegionsUpdate(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodPost, "/api/regions", dto.AddRegionRequestDto{Code: "AKL", Name: "Auckland"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created dto.RegionDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	path := "/api/regions/" + created.ID.String()

	image := "https://example.com/akl.png"
	rec = do(e, http.MethodPut, path, dto.UpdateRegionRequestDto{ID: created.ID, Code: "AUK", Name: "Tāmaki Makaurau", RegionImage: &image}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `"2"`, rec.Header().Get("ETag"))

	var updated dto.RegionDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, dto.RegionDto{ID: created.ID, Code: "AUK", Name: "Tāmaki Makaurau", RegionImage: &image}, updated)

	rec = do(e, http.MethodPut, path, dto.UpdateRegionRequestDto{Code: "AKL", Name: "Auckland"}, map[string]string{"If-Match": `"1"`})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPut, path, dto.UpdateRegionRequestDto{Code: "AKL", Name: "Auckland"}, map[string]string{"If-Match": `"2"`})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodPut, path, dto.UpdateRegionRequestDto{ID: created.ID}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	other := "/api/regions/" + "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	rec = do(e, http.MethodPut, other, dto.UpdateRegionRequestDto{ID: created.ID, Code: "X", Name: "X"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPut, other, dto.UpdateRegionRequestDto{Code: "X", Name: "X"}, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegionsListAfterCreatesAndDeletes(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/api/regions", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	var ids []string
	for _, code := range []string{"NTL", "AKL", "WKO", "BOP"} {
		rec := do(e, http.MethodPost, "/api/regions", dto.AddRegionRequestDto{Code: code, Name: code}, nil)
		require.Equal(t, http.StatusCreated, rec.Code)
		var created dto.RegionDto
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		ids = append(ids, created.ID.String())
	}

	require.Equal(t, http.StatusOK, do(e, http.MethodDelete, "/api/regions/"+ids[1], nil, nil).Code)
	require.Equal(t, http.StatusOK, do(e, http.MethodDelete, "/api/regions?id="+ids[2], nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodDelete, "/api/regions/"+ids[2], nil, nil).Code)

	rec = do(e, http.MethodGet, "/api/regions", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var regions []dto.RegionDto
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	assert.Len(t, regions, 2)
}

func TestOperationalRoutes(t *testing.T) {
	e := newTestServer(t)

	rec := do(e, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	_ = do(e, http.MethodGet, "/api/regions", nil, nil)
	rec = do(e, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{code="200",method="GET",route="/api/regions"}`)
}
