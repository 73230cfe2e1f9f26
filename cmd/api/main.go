package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordanlanch/leadpipe/config"
	"github.com/jordanlanch/leadpipe/pkg/activities"
	"github.com/jordanlanch/leadpipe/pkg/api/handlers"
	"github.com/jordanlanch/leadpipe/pkg/audit"
	"github.com/jordanlanch/leadpipe/pkg/backup"
	"github.com/jordanlanch/leadpipe/pkg/cache"
	"github.com/jordanlanch/leadpipe/pkg/dashboard"
	"github.com/jordanlanch/leadpipe/pkg/database"
	"github.com/jordanlanch/leadpipe/pkg/email"
	"github.com/jordanlanch/leadpipe/pkg/identity"
	"github.com/jordanlanch/leadpipe/pkg/jobs"
	"github.com/jordanlanch/leadpipe/pkg/leads"
	"github.com/jordanlanch/leadpipe/pkg/logger"
	"github.com/jordanlanch/leadpipe/pkg/metrics"
	custommiddleware "github.com/jordanlanch/leadpipe/pkg/middleware"
	"github.com/jordanlanch/leadpipe/pkg/notes"
	"github.com/jordanlanch/leadpipe/pkg/tasks"
)

func main() {
	// Load .env if present (ignored in production containers)
	if err := godotenv.Load(); err == nil {
		log.Printf("📄 Loaded environment from .env")
	}

	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat).With("service", "leadpipe-api")

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Database
	db, err := database.NewClientWithSSL(cfg.DatabaseURL, &database.SSLConfig{Mode: cfg.DBSSLMode})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Schema and sample data
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Initialize(ctx, db.DB, cfg.ForceDBReset); err != nil {
		cancel()
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	cancel()

	// Redis cache (optional: the dashboard recomputes when absent)
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, dashboard caching disabled: %v", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	prometheusMetrics := metrics.New()
	prometheusMetrics.ObserveDBPool(db.DB)
	log.Printf("✅ Prometheus metrics initialized")

	// Identity: the acting user and the responsible rotation
	actor := identity.New(cfg.CurrentUser)
	assigner := identity.NewAssigner(cfg.ResponsibleRotation)

	// Services
	recorder := audit.NewRecorder(db.DB)
	dashboardService := dashboard.NewService(db.DB, redisClient, prometheusMetrics)
	leadService := leads.NewService(db.DB, recorder, actor, assigner)
	taskService := tasks.NewService(db.DB, recorder, actor)
	activityService := activities.NewService(db.DB, recorder, actor)
	noteService := notes.NewService(db.DB, recorder, actor)

	emailService := email.NewService(cfg.EmailFrom, cfg.EmailFromName, cfg.SendGridAPIKey)

	var backupService *backup.Service
	if cfg.BackupEnabled {
		backupService, err = backup.NewService(db.DB, backup.Config{
			AWSAccessKeyID:     cfg.AWSAccessKeyID,
			AWSSecretAccessKey: cfg.AWSSecretAccessKey,
			AWSRegion:          cfg.AWSRegion,
			S3Bucket:           cfg.BackupS3Bucket,
			RetentionDays:      cfg.BackupRetentionDays,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize backup service: %v", err)
		} else {
			log.Printf("✅ Backup service initialized (S3: %s, retention: %d days)",
				cfg.BackupS3Bucket, cfg.BackupRetentionDays)
		}
	} else {
		log.Printf("ℹ️  Backup service disabled (BACKUP_ENABLED=false)")
	}

	// Cron jobs: reminders, backups, daily summary
	cronManager := jobs.NewCronManager(db.DB, recorder, emailService, backupService, log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()

	// Echo
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				appLogger.Error("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status, "error", v.Error)
				return nil
			}
			appLogger.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))

	rateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	e.Use(rateLimiter.RateLimitMiddleware())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "LeadPipe CRM API",
			"version":     "1.0.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})
	e.GET("/health", handlers.NewHealthHandler(db).Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API routes
	api := e.Group("/api")
	handlers.NewLeadHandler(leadService, dashboardService, prometheusMetrics).Register(api)
	handlers.NewTaskHandler(taskService, dashboardService, prometheusMetrics).Register(api)
	handlers.NewActivityHandler(activityService, dashboardService, prometheusMetrics).Register(api)
	handlers.NewNoteHandler(noteService, prometheusMetrics).Register(api)
	handlers.NewLogHandler(db.DB, recorder).Register(api)
	handlers.NewDashboardHandler(dashboardService).Register(api)
	handlers.NewExportHandler(leadService, prometheusMetrics).Register(api)

	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 LeadPipe CRM API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🌍 CORS: %v", cfg.CORSAllowedOrigins)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("👤 Acting user: %s, rotation: %v", cfg.CurrentUser, cfg.ResponsibleRotation)
	log.Printf("⏰ Cron jobs: Daily 8AM (task reminders), Daily 2AM (backup), Daily 11PM (summary)")

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
