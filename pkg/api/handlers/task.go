package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jordanlanch/leadpipe/pkg/api/errors"
	"github.com/jordanlanch/leadpipe/pkg/dashboard"
	"github.com/jordanlanch/leadpipe/pkg/metrics"
	"github.com/jordanlanch/leadpipe/pkg/models"
	"github.com/jordanlanch/leadpipe/pkg/tasks"
)

// TaskHandler handles task endpoints
type TaskHandler struct {
	tasks     *tasks.Service
	dashboard *dashboard.Service
	metrics   *metrics.Metrics
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(svc *tasks.Service, dash *dashboard.Service, m *metrics.Metrics) *TaskHandler {
	return &TaskHandler{tasks: svc, dashboard: dash, metrics: m}
}

// Register mounts the task routes on the API group
func (h *TaskHandler) Register(g *echo.Group) {
	g.GET("/tasks", h.List)
	g.POST("/tasks", h.Create)
	g.PUT("/tasks/:id", h.Update)
	g.PUT("/tasks/:id/status", h.UpdateStatus)
	g.DELETE("/tasks/:id", h.Delete)
}

// List returns all tasks ordered by due date
func (h *TaskHandler) List(c echo.Context) error {
	result, err := h.tasks.List(c.Request().Context())
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Create registers a new task
func (h *TaskHandler) Create(c echo.Context) error {
	var req models.TaskRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}

	task, err := h.tasks.Create(c.Request().Context(), req)
	if err != nil {
		return errors.Respond(c, err)
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusCreated, task)
}

// Update replaces the editable fields of a task
func (h *TaskHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid task id")
	}

	var req models.TaskRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}

	task, err := h.tasks.Update(c.Request().Context(), id, req)
	if err != nil {
		return errors.Respond(c, err)
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, task)
}

// UpdateStatus toggles a task between pending and completed
func (h *TaskHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid task id")
	}

	var req models.TaskStatusRequest
	if err := c.Bind(&req); err != nil {
		return errors.BadRequestError(c, "invalid request body")
	}

	task, err := h.tasks.UpdateStatus(c.Request().Context(), id, req)
	if err != nil {
		return errors.Respond(c, err)
	}

	if task.Status == models.TaskStatusCompleted {
		h.metrics.RecordTaskCompleted()
	}
	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, task)
}

// Delete removes a task
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return errors.BadRequestError(c, "invalid task id")
	}

	if err := h.tasks.Delete(c.Request().Context(), id); err != nil {
		return errors.Respond(c, err)
	}

	h.dashboard.Invalidate(c.Request().Context())
	return c.JSON(http.StatusOK, map[string]string{"message": "Tarefa excluída com sucesso"})
}
