package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jordanlanch/leadpipe/pkg/models"
)

// TaskMonitor inspects the pipeline for work that needs a nudge.
type TaskMonitor struct {
	db     *sqlx.DB
	logger *log.Logger
}

// NewTaskMonitor creates a new task monitor
func NewTaskMonitor(db *sqlx.DB, logger *log.Logger) *TaskMonitor {
	if logger == nil {
		logger = log.Default()
	}
	return &TaskMonitor{db: db, logger: logger}
}

// DetectDueTasks returns pending tasks due today or already overdue,
// grouped by assignee. Tasks without an assignee are grouped under "".
func (m *TaskMonitor) DetectDueTasks(ctx context.Context) (map[string][]models.Task, error) {
	var tasks []models.Task
	query := m.db.Rebind(`
		SELECT * FROM tasks
		WHERE status = 'pending' AND due_date IS NOT NULL AND DATE(due_date) <= DATE(?)
		ORDER BY due_date ASC`)
	if err := m.db.SelectContext(ctx, &tasks, query, time.Now().Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("failed to detect due tasks: %w", err)
	}

	byAssignee := make(map[string][]models.Task)
	for _, t := range tasks {
		assignee := ""
		if t.Assignee != nil {
			assignee = *t.Assignee
		}
		byAssignee[assignee] = append(byAssignee[assignee], t)
	}
	return byAssignee, nil
}

// DailySummary aggregates what happened today across the pipeline.
type DailySummary struct {
	LeadsCreated        int
	TasksCompleted      int
	ActivitiesScheduled int
	OpenTasks           int
}

// GetDailySummary counts today's movement across leads, tasks and activities.
func (m *TaskMonitor) GetDailySummary(ctx context.Context) (*DailySummary, error) {
	today := time.Now().Format("2006-01-02")
	summary := &DailySummary{}

	counts := []struct {
		into  *int
		query string
		args  []any
	}{
		{&summary.LeadsCreated, "SELECT COUNT(*) FROM leads WHERE DATE(created_at) = DATE(?)", []any{today}},
		{&summary.TasksCompleted, "SELECT COUNT(*) FROM tasks WHERE status = 'completed' AND DATE(updated_at) = DATE(?)", []any{today}},
		{&summary.ActivitiesScheduled, "SELECT COUNT(*) FROM activities WHERE DATE(created_at) = DATE(?)", []any{today}},
		{&summary.OpenTasks, "SELECT COUNT(*) FROM tasks WHERE status = 'pending'", nil},
	}
	for _, c := range counts {
		if err := m.db.GetContext(ctx, c.into, m.db.Rebind(c.query), c.args...); err != nil {
			return nil, fmt.Errorf("failed to build daily summary: %w", err)
		}
	}

	return summary, nil
}
