package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadpipe/pkg/api/errors"
	"github.com/jordanlanch/leadpipe/pkg/export"
	"github.com/jordanlanch/leadpipe/pkg/leads"
	"github.com/jordanlanch/leadpipe/pkg/metrics"
)

// ExportHandler streams the lead list as a downloadable file
type ExportHandler struct {
	leads   *leads.Service
	metrics *metrics.Metrics
}

// NewExportHandler creates a new export handler
func NewExportHandler(svc *leads.Service, m *metrics.Metrics) *ExportHandler {
	return &ExportHandler{leads: svc, metrics: m}
}

// Register mounts the export routes on the API group
func (h *ExportHandler) Register(g *echo.Group) {
	g.GET("/exports/leads", h.Leads)
}

// Leads exports all leads as ?format=csv or ?format=xlsx (default csv)
func (h *ExportHandler) Leads(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = export.FormatCSV
	}
	if !export.ValidFormat(format) {
		return errors.BadRequestError(c, fmt.Sprintf("unsupported format %q", format))
	}

	all, err := h.leads.List(c.Request().Context())
	if err != nil {
		return errors.Respond(c, err)
	}

	filename := fmt.Sprintf("leads_%s.%s", time.Now().Format("2006-01-02"), format)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", filename))

	h.metrics.RecordExportCreated()

	if format == export.FormatExcel {
		c.Response().Header().Set(echo.HeaderContentType,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Response().WriteHeader(http.StatusOK)
		return export.WriteExcel(c.Response(), all)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteCSV(c.Response(), all)
}
