package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sightreadpro-backend/internal/platform/logger"
)

// Metrics is the process's Prometheus registry. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	performances *CounterVec
	xpAwarded    *CounterVec
	uploads      *CounterVec
	uploadBytes  *CounterVec
	rateLimited  *CounterVec
	dbStats      *GaugeVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("sightread_api_requests_total", "HTTP requests by method, route and status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("sightread_api_request_duration_seconds", "HTTP request latency.", []string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5}),
		apiInflight:  NewGauge("sightread_api_inflight_requests", "HTTP requests currently being served."),
		performances: NewCounterVec("sightread_performances_total", "Performance submissions by outcome.", []string{"outcome"}),
		xpAwarded:    NewCounterVec("sightread_xp_awarded_total", "Experience points awarded.", []string{"streak_incremented"}),
		uploads:      NewCounterVec("sightread_uploads_total", "Score uploads by file type and parse status.", []string{"file_type", "parse_status"}),
		uploadBytes:  NewCounterVec("sightread_upload_bytes_total", "Bytes stored from uploads.", []string{"file_type"}),
		rateLimited:  NewCounterVec("sightread_rate_limited_total", "Requests rejected by a rate limiter.", []string{"route"}),
		dbStats:      NewGaugeVec("sightread_db_pool", "database/sql pool statistics.", []string{"stat"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.performances, m.xpAwarded,
		m.uploads, m.uploadBytes, m.rateLimited,
		m.dbStats,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObservePerformance records one submission outcome (accepted, invalid,
// not_found or error) and the XP it earned.
func (m *Metrics) ObservePerformance(outcome string, xp int, streakIncremented bool) {
	if m == nil {
		return
	}
	m.performances.Inc(outcome)
	if xp > 0 {
		m.xpAwarded.Add(float64(xp), strconv.FormatBool(streakIncremented))
	}
}

func (m *Metrics) ObserveUpload(fileType, parseStatus string, size int64) {
	if m == nil {
		return
	}
	m.uploads.Inc(fileType, parseStatus)
	if size > 0 {
		m.uploadBytes.Add(float64(size), fileType)
	}
}

func (m *Metrics) IncRateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.Inc(route)
}

// StartDBCollector samples the connection pool every interval until ctx ends.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CollectDBStats(log, db)
			}
		}
	}()
}

func (m *Metrics) CollectDBStats(log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("metrics: db stats unavailable", "error", err)
		return
	}
	stats := sqlDB.Stats()
	m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
	m.dbStats.Set(float64(stats.InUse), "in_use")
	m.dbStats.Set(float64(stats.Idle), "idle")
	m.dbStats.Set(float64(stats.WaitCount), "wait_count")
	m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
	m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
}
