// Package jobs runs the scheduled maintenance work: reminder digests,
// nightly backups and the end-of-day summary.
package jobs

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"

	"github.com/jordanlanch/leadpipe/pkg/audit"
	"github.com/jordanlanch/leadpipe/pkg/backup"
	"github.com/jordanlanch/leadpipe/pkg/email"
)

// CronManager manages scheduled jobs
type CronManager struct {
	cron     *cron.Cron
	db       *sqlx.DB
	monitor  *TaskMonitor
	recorder *audit.Recorder
	email    *email.Service
	backup   *backup.Service // nil when S3 is not configured
	logger   *log.Logger
}

// NewCronManager creates a new cron manager. The backup service may be
// nil when no S3 bucket is configured.
func NewCronManager(db *sqlx.DB, recorder *audit.Recorder, emailSvc *email.Service, backupSvc *backup.Service, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}

	return &CronManager{
		cron:     cron.New(),
		db:       db,
		monitor:  NewTaskMonitor(db, logger),
		recorder: recorder,
		email:    emailSvc,
		backup:   backupSvc,
		logger:   logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Daily at 8 AM: send task reminder digests
	_, err := cm.cron.AddFunc("0 8 * * *", func() {
		cm.logger.Println("🕐 Running task reminder job...")

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		if err := cm.RunTaskReminders(ctx); err != nil {
			cm.logger.Printf("❌ Task reminder job failed: %v", err)
			return
		}
		cm.logger.Println("✅ Task reminder job completed")
	})
	if err != nil {
		return err
	}

	// Daily at 2 AM: back up the data set
	_, err = cm.cron.AddFunc("0 2 * * *", func() {
		if cm.backup == nil {
			return
		}
		cm.logger.Println("🕐 Running nightly backup job...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
		defer cancel()

		result, err := cm.backup.CreateBackup(ctx)
		if err != nil {
			cm.logger.Printf("❌ Nightly backup failed: %v", err)
			return
		}
		cm.logger.Printf("✅ Nightly backup completed: %s (%d bytes)", result.S3Key, result.Size)
	})
	if err != nil {
		return err
	}

	// Daily at 11 PM: record the day's summary in the activity log
	_, err = cm.cron.AddFunc("0 23 * * *", func() {
		cm.logger.Println("🕐 Running daily summary job...")

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()

		if err := cm.RunDailySummary(ctx); err != nil {
			cm.logger.Printf("❌ Daily summary job failed: %v", err)
			return
		}
		cm.logger.Println("✅ Daily summary job completed")
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Println("  - Daily at 8 AM: Task reminder digests")
	cm.logger.Println("  - Daily at 2 AM: Data backup")
	cm.logger.Println("  - Daily at 11 PM: Daily summary")

	return nil
}

// RunTaskReminders emails each assignee their due and overdue tasks.
// Exposed so a manual trigger can run it outside the schedule.
func (cm *CronManager) RunTaskReminders(ctx context.Context) error {
	byAssignee, err := cm.monitor.DetectDueTasks(ctx)
	if err != nil {
		return err
	}

	if len(byAssignee) == 0 {
		cm.logger.Println("✅ No due tasks found")
		return nil
	}

	for assignee, tasks := range byAssignee {
		name := assignee
		if name == "" {
			name = "Equipe"
		}
		if err := cm.email.SendTaskDigest(assigneeEmail(name), name, tasks); err != nil {
			cm.logger.Printf("⚠️  Failed to send digest to %s: %v", name, err)
			continue
		}
		cm.logger.Printf("📬 Sent %d task reminder(s) to %s", len(tasks), name)
	}
	return nil
}

// RunDailySummary writes the day's aggregate numbers as a system log entry.
func (cm *CronManager) RunDailySummary(ctx context.Context) error {
	summary, err := cm.monitor.GetDailySummary(ctx)
	if err != nil {
		return err
	}

	cm.logger.Printf("📊 Daily summary: %d leads, %d tasks completed, %d activities, %d open tasks",
		summary.LeadsCreated, summary.TasksCompleted, summary.ActivitiesScheduled, summary.OpenTasks)

	description := fmt.Sprintf(
		"%d novo(s) lead(s), %d tarefa(s) concluída(s), %d atividade(s) agendada(s), %d tarefa(s) em aberto",
		summary.LeadsCreated, summary.TasksCompleted, summary.ActivitiesScheduled, summary.OpenTasks)

	_, err = cm.recorder.Record(ctx, cm.db, audit.System("Resumo diário", description))
	return err
}

// assigneeEmail derives a mailbox from the assignee's display name.
// There is no user directory yet, so addresses follow a fixed convention.
func assigneeEmail(name string) string {
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return slug + "@leadpipe.local"
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}

// GetMonitor returns the task monitor (for manual triggers)
func (cm *CronManager) GetMonitor() *TaskMonitor {
	return cm.monitor
}
