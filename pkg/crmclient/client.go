// Package crmclient is the Go client for the leadpipe REST API, plus a
// Store that mirrors the server state for UI-style consumers.
package crmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to the leadpipe API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given base URL, e.g.
// "http://localhost:8080/api".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body models.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			apiErr.Code = body.Error
			apiErr.Message = body.Message
		}
		return apiErr
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// ListLeads fetches every lead, newest first.
func (c *Client) ListLeads(ctx context.Context) ([]models.Lead, error) {
	var leads []models.Lead
	if err := c.do(ctx, http.MethodGet, "/leads", nil, &leads); err != nil {
		return nil, err
	}
	return leads, nil
}

// GetLead fetches one lead by id.
func (c *Client) GetLead(ctx context.Context, id int) (*models.Lead, error) {
	var lead models.Lead
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/leads/%d", id), nil, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// CreateLead creates a lead and returns the stored row.
func (c *Client) CreateLead(ctx context.Context, req models.LeadRequest) (*models.Lead, error) {
	var lead models.Lead
	if err := c.do(ctx, http.MethodPost, "/leads", req, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// UpdateLead updates a lead and returns the stored row.
func (c *Client) UpdateLead(ctx context.Context, id int, req models.LeadRequest) (*models.Lead, error) {
	var lead models.Lead
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/leads/%d", id), req, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// UpdateLeadStatus moves a lead to another pipeline stage.
func (c *Client) UpdateLeadStatus(ctx context.Context, id int, status string) (*models.Lead, error) {
	var lead models.Lead
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/leads/%d/status", id), body, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// DeleteLead removes a lead.
func (c *Client) DeleteLead(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/leads/%d", id), nil, nil)
}

// ListTasks fetches every task ordered by due date.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, req models.TaskRequest) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask updates a task.
func (c *Client) UpdateTask(ctx context.Context, id int, req models.TaskRequest) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTaskStatus toggles a task between pending and completed.
func (c *Client) UpdateTaskStatus(ctx context.Context, id int, status string) (*models.Task, error) {
	var task models.Task
	body := map[string]string{"status": status}
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d/status", id), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}

// ListActivities fetches the agenda ordered by scheduled date.
func (c *Client) ListActivities(ctx context.Context) ([]models.Activity, error) {
	var activities []models.Activity
	if err := c.do(ctx, http.MethodGet, "/activities", nil, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

// CreateActivity schedules an activity.
func (c *Client) CreateActivity(ctx context.Context, req models.ActivityRequest) (*models.Activity, error) {
	var activity models.Activity
	if err := c.do(ctx, http.MethodPost, "/activities", req, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// UpdateActivity updates an activity.
func (c *Client) UpdateActivity(ctx context.Context, id int, req models.ActivityRequest) (*models.Activity, error) {
	var activity models.Activity
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/activities/%d", id), req, &activity); err != nil {
		return nil, err
	}
	return &activity, nil
}

// DeleteActivity removes an activity.
func (c *Client) DeleteActivity(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/activities/%d", id), nil, nil)
}

// ListNotes fetches sticky notes, optionally scoped to one lead.
func (c *Client) ListNotes(ctx context.Context, leadID *int) ([]models.Note, error) {
	path := "/notes"
	if leadID != nil {
		path += "?lead_id=" + url.QueryEscape(fmt.Sprint(*leadID))
	}
	var notes []models.Note
	if err := c.do(ctx, http.MethodGet, path, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote attaches a sticky note to a lead.
func (c *Client) CreateNote(ctx context.Context, req models.NoteRequest) (*models.Note, error) {
	var note models.Note
	if err := c.do(ctx, http.MethodPost, "/notes", req, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// DeleteNote removes a sticky note.
func (c *Client) DeleteNote(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil, nil)
}

// ListLogs fetches audit log entries with optional filters.
func (c *Client) ListLogs(ctx context.Context, filter models.LogFilter) ([]models.Log, error) {
	params := url.Values{}
	if filter.Type != "" {
		params.Set("type", filter.Type)
	}
	if filter.StartDate != "" {
		params.Set("start_date", filter.StartDate)
	}
	if filter.EndDate != "" {
		params.Set("end_date", filter.EndDate)
	}
	path := "/logs"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	var logs []models.Log
	if err := c.do(ctx, http.MethodGet, path, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// DashboardStats fetches the aggregated dashboard numbers.
func (c *Client) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
