package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadpipe/pkg/api/errors"
	"github.com/jordanlanch/leadpipe/pkg/audit"
	"github.com/jordanlanch/leadpipe/pkg/models"
)

// LogHandler exposes the audit history. Most entries are written by the
// mutation paths themselves; POST exists for client-sourced events the
// server cannot observe.
type LogHandler struct {
	db       *sqlx.DB
	recorder *audit.Recorder
	validate *validator.Validate
}

// NewLogHandler creates a new log handler
func NewLogHandler(db *sqlx.DB, recorder *audit.Recorder) *LogHandler {
	return &LogHandler{db: db, recorder: recorder, validate: validator.New()}
}

// Register mounts the log routes on the API group
func (h *LogHandler) Register(g *echo.Group) {
	g.GET("/logs", h.List)
	g.POST("/logs", h.Create)
}

// List returns log entries newest first, narrowed by ?type, ?start_date
// and ?end_date (inclusive day bounds).
func (h *LogHandler) List(c echo.Context) error {
	var filter models.LogFilter
	if err := c.Bind(&filter); err != nil {
		return errors.BadRequestError(c, "invalid filter")
	}
	if err := h.validate.Struct(filter); err != nil {
		return errors.BadRequestError(c, "dates must be YYYY-MM-DD")
	}

	logs, err := h.recorder.List(c.Request().Context(), filter)
	if err != nil {
		return errors.InternalError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}

// Create appends a client-sourced log entry
func (h *LogHandler) Create(c echo.Context) error {
	var req models.LogRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	entry := audit.Entry{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		UserID:      req.UserID,
		LeadID:      req.LeadID,
	}
	logRow, err := h.recorder.Record(c.Request().Context(), h.db, entry)
	if err != nil {
		return errors.InternalError(c, err)
	}
	return c.JSON(http.StatusCreated, logRow)
}
