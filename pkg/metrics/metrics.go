package metrics

import (
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	LeadsCreated        prometheus.Counter
	LeadsMoved          *prometheus.CounterVec
	TasksCompleted      prometheus.Counter
	NotesCreated        prometheus.Counter
	ActivitiesScheduled prometheus.Counter
	ExportsCreated      prometheus.Counter

	// Database metrics
	DBConnections prometheus.Gauge

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		LeadsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_leads_created_total",
			Help: "Total number of leads created",
		}),
		LeadsMoved: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_leads_moved_total",
				Help: "Total number of Kanban moves by destination stage",
			},
			[]string{"status"},
		),
		TasksCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_tasks_completed_total",
			Help: "Total number of tasks marked completed",
		}),
		NotesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_notes_created_total",
			Help: "Total number of notes created",
		}),
		ActivitiesScheduled: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_activities_scheduled_total",
			Help: "Total number of activities scheduled",
		}),
		ExportsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "crm_exports_created_total",
			Help: "Total number of lead exports generated",
		}),

		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of dashboard cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of dashboard cache misses",
		}),
	}
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // route pattern, not the raw URL

			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, status).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// RecordLeadCreated increments the created-leads counter
func (m *Metrics) RecordLeadCreated() {
	m.LeadsCreated.Inc()
}

// RecordLeadMoved counts a Kanban move into the given stage
func (m *Metrics) RecordLeadMoved(status string) {
	m.LeadsMoved.WithLabelValues(status).Inc()
}

// RecordTaskCompleted increments the completed-tasks counter
func (m *Metrics) RecordTaskCompleted() {
	m.TasksCompleted.Inc()
}

// RecordNoteCreated increments the created-notes counter
func (m *Metrics) RecordNoteCreated() {
	m.NotesCreated.Inc()
}

// RecordActivityScheduled increments the scheduled-activities counter
func (m *Metrics) RecordActivityScheduled() {
	m.ActivitiesScheduled.Inc()
}

// RecordExportCreated increments the exports counter
func (m *Metrics) RecordExportCreated() {
	m.ExportsCreated.Inc()
}

// RecordCacheHit increments the dashboard cache hit counter
func (m *Metrics) RecordCacheHit() {
	m.CacheHits.Inc()
}

// RecordCacheMiss increments the dashboard cache miss counter
func (m *Metrics) RecordCacheMiss() {
	m.CacheMisses.Inc()
}

// UpdateDBConnections updates the active connections gauge
func (m *Metrics) UpdateDBConnections(count float64) {
	m.DBConnections.Set(count)
}

// ObserveDBPool samples the pool's open connection count every 15s.
func (m *Metrics) ObserveDBPool(db *sqlx.DB) {
	go func() {
		for range time.Tick(15 * time.Second) {
			m.UpdateDBConnections(float64(db.Stats().OpenConnections))
		}
	}()
}
