package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const pingTimeout = 2 * time.Second

// Pinger checks that a backing store is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves liveness and database readiness checks
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new health handler. Pass a nil interface when
// PostgreSQL is not configured.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// HealthResponse is the response of GET /health
type HealthResponse struct {
	Status string `json:"status"`
}

// DatabaseHealthResponse is the response of GET /health/postgres. Error never
// carries driver text.
type DatabaseHealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "healthy"})
}

// PostgresHealth handles GET /health/postgres
func (h *HealthHandler) PostgresHealth(c echo.Context) error {
	resp := DatabaseHealthResponse{Database: "postgres"}
	if h.db == nil {
		resp.Status = "not_configured"
		resp.Error = "PostgreSQL is not configured"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	start := time.Now()
	if h.db.PingContext(ctx) != nil {
		resp.Status = "error"
		resp.Error = "PostgreSQL is not reachable"
		return c.JSON(http.StatusServiceUnavailable, resp)
	}
	resp.Status = "connected"
	resp.LatencyMS = time.Since(start).Milliseconds()
	return c.JSON(http.StatusOK, resp)
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.GET("/health/postgres", h.PostgresHealth)
}
