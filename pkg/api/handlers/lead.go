package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadpipe/pkg/api/errors"
	"github.com/jordanlanch/leadpipe/pkg/dashboard"
	"github.com/jordanlanch/leadpipe/pkg/leads"
	"github.com/jordanlanch/leadpipe/pkg/metrics"
	"github.com/jordanlanch/leadpipe/pkg/models"
)

// LeadHandler handles lead endpoints
type LeadHandler struct {
	leads     *leads.Service
	dashboard *dashboard.Service
	metrics   *metrics.Metrics
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(svc *leads.Service, dash *dashboard.Service, m *metrics.Metrics) *LeadHandler {
	return &LeadHandler{leads: svc, dashboard: dash, metrics: m}
}

// Register mounts the lead routes on the API group
func (h *LeadHandler) Register(g *echo.Group) {
	g.GET("/leads", h.List)
	g.GET("/leads/:id", h.Get)
	g.POST("/leads", h.Create)
	g.PUT("/leads/:id", h.Update)
	g.PUT("/leads/:id/status", h.UpdateStatus)
	g.DELETE("/leads/:id", h.Delete)
}

// List returns all leads, newest first
func (h *LeadHandler) List(c echo.Context) error {
	result, err := h.leads.List(c.Request().Context())
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Get returns one lead
func (h *LeadHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid lead id")
	}

	lead, err := h.leads.Get(c.Request().Context(), id)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, lead)
}

// Create registers a new lead
func (h *LeadHandler) Create(c echo.Context) error {
	var req models.LeadRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}

	lead, err := h.leads.Create(c.Request().Context(), req)
	if err != nil {
		return errors.Respond(c, err)
	}

	h.metrics.RecordLeadCreated()
	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, lead)
}

// Update replaces the editable fields of a lead
func (h *LeadHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid lead id")
	}

	var req models.LeadRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}

	lead, err := h.leads.Update(c.Request().Context(), id, req)
	if err != nil {
		return errors.Respond(c, err)
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, lead)
}

// statusRequest is the narrow body of the Kanban move endpoint
type statusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves a lead to another pipeline stage
func (h *LeadHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid lead id")
	}

	var req statusRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}

	lead, err := h.leads.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return errors.Respond(c, err)
	}

	h.metrics.RecordLeadMoved(lead.Status)
	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, lead)
}

// Delete removes a lead and its notes
func (h *LeadHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid lead id")
	}

	if err := h.leads.Delete(c.Request().Context(), id); err != nil {
		return errors.Respond(c, err)
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"message": "Lead excluído com sucesso"})
}

// pathID parses the :id route parameter
func pathID(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("id"))
}
