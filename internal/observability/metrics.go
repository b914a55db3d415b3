package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/nutribridge-backend/internal/pkg/logger"
	"github.com/yungbote/nutribridge-backend/internal/platform/envutil"
)

// Metrics is the process-wide registry. A nil *Metrics is valid and records
// nothing, so call sites never check Enabled themselves.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *GaugeVec
	llmRequests  *CounterVec
	llmLatency   *HistogramVec
	llmTokens    *CounterVec
	jobRuns      *CounterVec
	jobDuration  *HistogramVec
	queueDepth   *GaugeVec
	cascadeSteps *CounterVec
	adherence    *CounterVec
	dbStats      *GaugeVec
	redisUp      *GaugeVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	return envutil.Bool("METRICS_ENABLED", false)
}

// Current returns the registry installed by Init, or nil.
func Current() *Metrics {
	return instance
}

// Init installs the registry when METRICS_ENABLED is set.
func Init(log *logger.Logger) *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = newMetrics()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func newMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("nutri_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("nutri_api_request_duration_seconds", "API latency by method/route.",
			[]string{"method", "route"}, []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}),
		apiInflight: NewGaugeVec("nutri_api_inflight_requests", "In-flight API requests.", nil),
		llmRequests: NewCounterVec("nutri_llm_requests_total", "Chat completion calls by model/status.", []string{"model", "status"}),
		llmLatency: NewHistogramVec("nutri_llm_request_duration_seconds", "Chat completion latency by model.",
			[]string{"model"}, []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60}),
		llmTokens:    NewCounterVec("nutri_llm_tokens_total", "Tokens by model and kind.", []string{"model", "kind"}),
		jobRuns:      NewCounterVec("nutri_job_runs_total", "Finished job runs by type/status.", []string{"job_type", "status"}),
		jobDuration:  NewHistogramVec("nutri_job_duration_seconds", "Job handler runtime.", []string{"job_type"}, []float64{0.1, 0.5, 1, 5, 15, 60, 300}),
		queueDepth:   NewGaugeVec("nutri_job_queue_depth", "job_run rows by status.", []string{"status"}),
		cascadeSteps: NewCounterVec("nutri_cascade_steps_total", "Recompute cascade steps by outcome.", []string{"cascade", "step", "outcome"}),
		adherence:    NewCounterVec("nutri_adherence_ratio_total", "Adherence ratios assigned.", []string{"ratio"}),
		dbStats:      NewGaugeVec("nutri_db_pool", "database/sql pool stats.", []string{"stat"}),
		redisUp:      NewGaugeVec("nutri_redis_up", "1 when the last redis ping succeeded.", nil),
	}
}

type promWriter interface {
	WritePrometheus(w io.Writer) error
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []promWriter{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.llmRequests, m.llmLatency, m.llmTokens,
		m.jobRuns, m.jobDuration, m.queueDepth,
		m.cascadeSteps, m.adherence, m.dbStats, m.redisUp,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

// StartServer serves /metrics on addr until ctx is done.
func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil || strings.TrimSpace(addr) == "" {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.WriteHTTP)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed && log != nil {
			log.Error("metrics server failed", "error", err, "addr", addr)
		}
	}()
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

func (m *Metrics) APIInflight(delta float64) {
	if m == nil {
		return
	}
	m.apiInflight.Add(delta)
}

func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	m.llmRequests.Inc(model, status)
	m.llmLatency.Observe(dur.Seconds(), model)
	if inputTokens > 0 {
		m.llmTokens.Add(float64(inputTokens), model, "input")
	}
	if outputTokens > 0 {
		m.llmTokens.Add(float64(outputTokens), model, "output")
	}
}

func (m *Metrics) ObserveJob(jobType, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.Inc(jobType, status)
	m.jobDuration.Observe(dur.Seconds(), jobType)
}

// ObserveCascadeStep records ok / skipped / failed per recompute step.
func (m *Metrics) ObserveCascadeStep(cascade, step, outcome string) {
	if m == nil {
		return
	}
	m.cascadeSteps.Inc(cascade, step, outcome)
}

func (m *Metrics) ObserveAdherenceRatio(ratio float64) {
	if m == nil {
		return
	}
	m.adherence.Inc(strconv.FormatFloat(ratio, 'f', 1, 64))
}

func scrapeInterval() time.Duration {
	return envutil.Seconds("METRICS_SCRAPE_INTERVAL_SECONDS", 10*time.Second)
}

// StartDBCollector samples database/sql pool stats.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go tick(ctx, scrapeInterval(), func() {
		sqlDB, err := db.DB()
		if err != nil {
			log.Warn("metrics: db stats unavailable", "error", err)
			return
		}
		s := sqlDB.Stats()
		m.dbStats.Set(float64(s.OpenConnections), "open_connections")
		m.dbStats.Set(float64(s.InUse), "in_use")
		m.dbStats.Set(float64(s.Idle), "idle")
		m.dbStats.Set(float64(s.WaitCount), "wait_count")
	})
}

// StartRedisCollector pings the given client.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient) {
	if m == nil || rdb == nil {
		return
	}
	go tick(ctx, scrapeInterval(), func() {
		if err := rdb.Ping(ctx).Err(); err != nil {
			m.redisUp.Set(0)
			log.Warn("metrics: redis ping failed", "error", err)
			return
		}
		m.redisUp.Set(1)
	})
}

// StartJobQueueCollector groups job_run by status.
func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	statuses := []string{"queued", "running", "succeeded", "failed", "canceled"}
	go tick(ctx, scrapeInterval(), func() {
		for _, s := range statuses {
			m.queueDepth.Set(0, s)
		}
		var rows []struct {
			Status string
			Count  int64
		}
		if err := db.WithContext(ctx).Table("job_run").
			Select("status, count(*) as count").
			Where("deleted_at IS NULL").
			Group("status").
			Scan(&rows).Error; err != nil {
			log.Warn("metrics: job queue depth query failed", "error", err)
			return
		}
		for _, row := range rows {
			m.queueDepth.Set(float64(row.Count), row.Status)
		}
	})
}

func tick(ctx context.Context, every time.Duration, fn func()) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}
