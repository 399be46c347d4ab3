// Package metrics provides Prometheus metrics collection for the chat service:
// HTTP request counters plus chat-turn and memory subsystem counters.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/lewisedginton/persona_chatbot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	subsystem = "persona_chat"
)

// Chat metric counter indices.
const (
	ChatMetricTurnsTotal = iota
	ChatMetricTurnsFailed
	ChatMetricMemoriesCreated
	ChatMetricSummariesCompressed
	ChatMetricMemoriesCleared
)

// Metrics provides Prometheus metrics collection for HTTP requests and chat turns.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	HTTPRequestsCounters     map[int]prometheus.Counter
	HTTPDurationHistogram    prometheus.Histogram

	ChatCounters          map[int]prometheus.Counter
	TurnDurationHistogram prometheus.Histogram

	customMetrics []prometheus.Collector

	server *http.Server
	log    logger.Logger
}

// NewMetrics creates a new Metrics instance with the specified collectors enabled.
func NewMetrics(httpCounters, chatCounters bool, l logger.Logger) Metrics {
	m := Metrics{
		reg: prometheus.NewRegistry(),
		log: l,
	}
	if httpCounters {
		m.TotalHTTPRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "total_http_requests",
			Help:      "Total HTTP requests",
		})
		m.reg.MustRegister(m.TotalHTTPRequestsCounter)
		m.HTTPRequestsCounters = make(map[int]prometheus.Counter)

		m.HTTPDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0},
		})
		m.reg.MustRegister(m.HTTPDurationHistogram)
	}
	if chatCounters {
		m.ChatCounters = getChatMetricCounters()
		for k := range m.ChatCounters {
			m.reg.MustRegister(m.ChatCounters[k])
		}

		m.TurnDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "chat_turn_duration_seconds",
			Help:      "Full chat turn duration, including the completion call",
			Buckets:   []float64{0.5, 1.0, 2.0, 5.0, 10.0, 20.0, 30.0},
		})
		m.reg.MustRegister(m.TurnDurationHistogram)
	}
	return m
}

func getChatMetricCounters() map[int]prometheus.Counter {
	m := make(map[int]prometheus.Counter)
	m[ChatMetricTurnsTotal] = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_chat_turns",
		Help:      "Total chat turns handled",
	})
	m[ChatMetricTurnsFailed] = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_chat_turns_failed",
		Help:      "Total chat turns that failed upstream",
	})
	m[ChatMetricMemoriesCreated] = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_memories_created",
		Help:      "Total memories extracted from exchanges",
	})
	m[ChatMetricSummariesCompressed] = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_summaries_compressed",
		Help:      "Total conversation summaries written",
	})
	m[ChatMetricMemoriesCleared] = prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      "total_memory_clears",
		Help:      "Total persona memory clear operations",
	})
	return m
}

// IncChatCounter increments one of the chat counters if chat metrics are enabled.
func (m *Metrics) IncChatCounter(which int) {
	if m.ChatCounters == nil {
		return
	}
	if c, ok := m.ChatCounters[which]; ok {
		c.Inc()
	}
}

// ObserveTurnDuration records a completed chat turn duration.
func (m *Metrics) ObserveTurnDuration(d time.Duration) {
	if m.TurnDurationHistogram != nil {
		m.TurnDurationHistogram.Observe(d.Seconds())
	}
}

// AddCustomMetric registers a custom Prometheus collector.
func (m *Metrics) AddCustomMetric(c prometheus.Collector) {
	m.customMetrics = append(m.customMetrics, c)
	m.reg.MustRegister(m.customMetrics[len(m.customMetrics)-1])
}

// IncrementHTTPResponseCounter increments the counter for the given HTTP status code.
func (m *Metrics) IncrementHTTPResponseCounter(code int) {
	_, ok := m.HTTPRequestsCounters[code]
	if !ok {
		m.HTTPRequestsCounters[code] = newTotalHTTPReqMetric(code)
		m.reg.MustRegister(m.HTTPRequestsCounters[code])
	}
	m.HTTPRequestsCounters[code].Inc()
}

func newTotalHTTPReqMetric(code int) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Subsystem: subsystem,
		Name:      fmt.Sprintf("total_%d_http_responses", code),
		Help:      fmt.Sprintf("Total %s HTTP responses returned", http.StatusText(code)),
	})
}

// HTTPMiddleware returns a Chi-compatible middleware that tracks HTTP metrics
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: 200}
			next.ServeHTTP(rw, r)

			duration := time.Since(start)
			m.HTTPDurationHistogram.Observe(duration.Seconds())
			m.IncrementHTTPResponseCounter(rw.statusCode)
		})
	}
}

// Handler returns the /metrics handler for mounting on an existing router.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listen starts the metrics HTTP server on the specified port.
func (m *Metrics) Listen(port int) {
	m.log.Info("Starting metrics listener", logger.IntField("port", port))
	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", m.Handler())
	m.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.log.Error("metrics listener failed", logger.ErrorField(err))
		}
	}()
}

// Shutdown stops the metrics HTTP server if it was started.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	m.log.Info("Stopping metrics listener")
	return m.server.Shutdown(ctx)
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
