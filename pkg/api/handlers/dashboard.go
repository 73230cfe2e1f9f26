package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadpipe/pkg/api/errors"
	"github.com/jordanlanch/leadpipe/pkg/dashboard"
	"github.com/jordanlanch/leadpipe/pkg/database"
)

// DashboardHandler serves the chart series for the reports tab
type DashboardHandler struct {
	dashboard *dashboard.Service
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{dashboard: svc}
}

// Register mounts the dashboard routes on the API group
func (h *DashboardHandler) Register(g *echo.Group) {
	g.GET("/dashboard/stats", h.Stats)
}

// Stats returns the aggregated dashboard series
func (h *DashboardHandler) Stats(c echo.Context) error {
	stats, err := h.dashboard.Stats(c.Request().Context())
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// HealthHandler reports service liveness
type HealthHandler struct {
	db *database.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.Client) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health returns 200 when the database answers, 503 otherwise
func (h *HealthHandler) Health(c echo.Context) error {
	status := "ok"
	code := http.StatusOK
	if err := h.db.Ping(c.Request().Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
