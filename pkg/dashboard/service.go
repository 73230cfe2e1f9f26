// Package dashboard derives the chart series for the reports tab from
// the relational store. Results are memoized in Redis for a short TTL
// and invalidated whenever a mutation goes through the API.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jordanlanch/leadpipe/pkg/cache"
	"github.com/jordanlanch/leadpipe/pkg/domain"
	"github.com/jordanlanch/leadpipe/pkg/metrics"
	"github.com/jordanlanch/leadpipe/pkg/models"
)

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 60 * time.Second
)

// Service computes dashboard statistics.
type Service struct {
	db      *sqlx.DB
	cache   *cache.Client    // nil disables caching
	metrics *metrics.Metrics // nil disables hit/miss counters
}

// NewService creates a dashboard service. The cache client and metrics
// may be nil.
func NewService(db *sqlx.DB, c *cache.Client, m *metrics.Metrics) *Service {
	return &Service{db: db, cache: c, metrics: m}
}

// Stats returns the aggregated dashboard series, served from cache when
// a fresh copy exists.
func (s *Service) Stats(ctx context.Context) (*models.DashboardStats, error) {
	// cache trouble is never a reason to fail the dashboard
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, statsCacheKey); err == nil {
			var stats models.DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				if s.metrics != nil {
					s.metrics.RecordCacheHit()
				}
				return &stats, nil
			}
		}
		if s.metrics != nil {
			s.metrics.RecordCacheMiss()
		}
	}

	stats, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			_ = s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL)
		}
	}
	return stats, nil
}

// Invalidate drops the cached series. Called after every mutation so the
// charts never show stale data for longer than one request.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, statsCacheKey)
	}
}

type countRow struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

type sumRow struct {
	Key string  `db:"key"`
	Sum float64 `db:"sum"`
}

func (s *Service) compute(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{
		LeadsByStatus:      map[string]int{},
		LeadsByTemperature: map[string]int{},
		ValueByStatus:      map[string]float64{},
		TasksByStatus:      map[string]int{},
		ActivitiesByType:   map[string]int{},
		NewLeadsByMonth:    []models.MonthCount{},
	}

	countQueries := []struct {
		query string
		into  map[string]int
	}{
		{"SELECT status AS key, COUNT(*) AS count FROM leads GROUP BY status", stats.LeadsByStatus},
		{"SELECT temperature AS key, COUNT(*) AS count FROM leads GROUP BY temperature", stats.LeadsByTemperature},
		{"SELECT status AS key, COUNT(*) AS count FROM tasks GROUP BY status", stats.TasksByStatus},
		{"SELECT type AS key, COUNT(*) AS count FROM activities GROUP BY type", stats.ActivitiesByType},
	}
	for _, q := range countQueries {
		rows := []countRow{}
		if err := s.db.SelectContext(ctx, &rows, q.query); err != nil {
			return nil, domain.NewInternalError(fmt.Errorf("failed aggregating dashboard: %w", err))
		}
		for _, r := range rows {
			q.into[r.Key] = r.Count
		}
	}

	values := []sumRow{}
	err := s.db.SelectContext(ctx, &values,
		"SELECT status AS key, COALESCE(SUM(value), 0) AS sum FROM leads GROUP BY status")
	if err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed aggregating pipeline value: %w", err))
	}
	for _, r := range values {
		stats.ValueByStatus[r.Key] = r.Sum
		stats.TotalPipelineValue += r.Sum
		if r.Key == models.LeadStatusGanho {
			stats.WonValue = r.Sum
		}
	}

	for _, count := range stats.LeadsByStatus {
		stats.TotalLeads += count
	}

	months := []countRow{}
	if err := s.db.SelectContext(ctx, &months, s.monthQuery()); err != nil {
		return nil, domain.NewInternalError(fmt.Errorf("failed aggregating monthly leads: %w", err))
	}
	for _, r := range months {
		stats.NewLeadsByMonth = append(stats.NewLeadsByMonth, models.MonthCount{Month: r.Key, Count: r.Count})
	}

	return stats, nil
}

// monthQuery extracts YYYY-MM per driver; date formatting is the one
// aggregation SQL has no portable spelling for.
func (s *Service) monthQuery() string {
	if s.db.DriverName() == "sqlite3" {
		return `SELECT strftime('%Y-%m', created_at) AS key, COUNT(*) AS count
			FROM leads GROUP BY key ORDER BY key ASC`
	}
	return `SELECT to_char(created_at, 'YYYY-MM') AS key, COUNT(*) AS count
		FROM leads GROUP BY 1 ORDER BY 1 ASC`
}
