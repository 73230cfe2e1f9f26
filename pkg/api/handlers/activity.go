package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadpipe/pkg/activities"
	"github.com/jordanlanch/leadpipe/pkg/api/errors"
	"github.com/jordanlanch/leadpipe/pkg/dashboard"
	"github.com/jordanlanch/leadpipe/pkg/metrics"
	"github.com/jordanlanch/leadpipe/pkg/models"
)

// ActivityHandler handles agenda endpoints
type ActivityHandler struct {
	activities *activities.Service
	dashboard  *dashboard.Service
	metrics    *metrics.Metrics
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(svc *activities.Service, dash *dashboard.Service, m *metrics.Metrics) *ActivityHandler {
	return &ActivityHandler{activities: svc, dashboard: dash, metrics: m}
}

// Register mounts the activity routes on the API group
func (h *ActivityHandler) Register(g *echo.Group) {
	g.GET("/activities", h.List)
	g.POST("/activities", h.Create)
	g.PUT("/activities/:id", h.Update)
	g.DELETE("/activities/:id", h.Delete)
}

// List returns all activities ordered by scheduled date
func (h *ActivityHandler) List(c echo.Context) error {
	result, err := h.activities.List(c.Request().Context())
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Create schedules a new activity
func (h *ActivityHandler) Create(c echo.Context) error {
	var req models.ActivityRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}

	activity, err := h.activities.Create(c.Request().Context(), req)
	if err != nil {
		return errors.Respond(c, err)
	}

	h.metrics.RecordActivityScheduled()
	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, activity)
}

// Update replaces the editable fields of an activity
func (h *ActivityHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid activity id")
	}

	var req models.ActivityRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}

	activity, err := h.activities.Update(c.Request().Context(), id, req)
	if err != nil {
		return errors.Respond(c, err)
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, activity)
}

// Delete removes an activity from the agenda
func (h *ActivityHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid activity id")
	}

	if err := h.activities.Delete(c.Request().Context(), id); err != nil {
		return errors.Respond(c, err)
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"message": "Atividade excluída com sucesso"})
}
