package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadpipe/pkg/api/errors"
	"github.com/jordanlanch/leadpipe/pkg/metrics"
	"github.com/jordanlanch/leadpipe/pkg/models"
	"github.com/jordanlanch/leadpipe/pkg/notes"
)

// NoteHandler handles sticky note endpoints
type NoteHandler struct {
	notes   *notes.Service
	metrics *metrics.Metrics
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(svc *notes.Service, m *metrics.Metrics) *NoteHandler {
	return &NoteHandler{notes: svc, metrics: m}
}

// Register mounts the note routes on the API group
func (h *NoteHandler) Register(g *echo.Group) {
	g.GET("/notes", h.List)
	g.POST("/notes", h.Create)
	g.DELETE("/notes/:id", h.Delete)
}

// List returns notes, optionally scoped to one lead via ?lead_id=
func (h *NoteHandler) List(c echo.Context) error {
	var leadID *int
	if raw := c.QueryParam("lead_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return errors.BadRequestError(c, "invalid lead_id")
		}
		leadID = &id
	}

	result, err := h.notes.List(c.Request().Context(), leadID)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Create pins a new note to a lead
func (h *NoteHandler) Create(c echo.Context) error {
	var req models.NoteRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}

	note, err := h.notes.Create(c.Request().Context(), req)
	if err != nil {
		return errors.Respond(c, err)
	}

	h.metrics.RecordNoteCreated()
	return c.JSON(http.StatusCreated, note)
}

// Delete removes a note
func (h *NoteHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid note id")
	}

	if err := h.notes.Delete(c.Request().Context(), id); err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Nota excluída com sucesso"})
}
