package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "filebrowser"

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so domain packages can take one optionally.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// View metrics
	ViewsActive    prometheus.Gauge
	DirectoryLoads *prometheus.CounterVec
	LoadDuration   *prometheus.HistogramVec

	// Search metrics
	Searches        *prometheus.CounterVec
	SearchDuration  prometheus.Histogram
	SearchEntries   prometheus.Counter
	MutationsTotal  *prometheus.CounterVec
	MutationLatency *prometheus.HistogramVec

	// Session metrics
	SessionsActive prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot
	mu       sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	ActiveViews    int64   `json:"active_views"`
	ActiveSessions int64   `json:"active_sessions"`
	AvgLatencyMS   float64 `json:"avg_latency_ms"`
	UptimeSeconds  float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector registered with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates a metrics collector registered with reg.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)
	m.ResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
		},
		[]string{"method", "path"},
	)

	m.ViewsActive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "views_active",
		Help:      "Number of open directory views",
	})
	m.DirectoryLoads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "directory_loads_total",
			Help:      "Directory listings by result",
		},
		[]string{"result"},
	)
	m.LoadDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "directory_load_duration_seconds",
			Help:      "Directory listing duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5},
		},
		[]string{"result"},
	)

	m.Searches = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Root searches by result",
		},
		[]string{"result"},
	)
	m.SearchDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Root search duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
	})
	m.SearchEntries = factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "search_entries_total",
		Help:      "Entries discovered by root searches",
	})
	m.MutationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Filesystem mutations by operation and result",
		},
		[]string{"op", "result"},
	)
	m.MutationLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mutation_duration_seconds",
			Help:      "Filesystem mutation duration in seconds",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5, 30},
		},
		[]string{"op"},
	)

	m.SessionsActive = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Number of active browser sessions",
	})
	m.WSConnections = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections_active",
		Help:      "Number of active WebSocket connections",
	})
	m.WSMessages = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "Total number of WebSocket messages",
		},
		[]string{"direction", "type"},
	)

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "uptime_seconds",
		Help:      "Process uptime in seconds",
	}, func() float64 { return time.Since(m.startTime).Seconds() })

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordViewOpened counts a newly opened view.
func (m *Metrics) RecordViewOpened() {
	if m == nil {
		return
	}
	m.ViewsActive.Inc()
	m.mu.Lock()
	m.snapshot.ActiveViews++
	m.mu.Unlock()
}

// RecordViewClosed counts a closed view.
func (m *Metrics) RecordViewClosed() {
	if m == nil {
		return
	}
	m.ViewsActive.Dec()
	m.mu.Lock()
	m.snapshot.ActiveViews--
	m.mu.Unlock()
}

// RecordDirectoryLoad records one listing. result is "ok" or an error kind.
func (m *Metrics) RecordDirectoryLoad(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.DirectoryLoads.WithLabelValues(result).Inc()
	m.LoadDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordSearch records a finished or cancelled root search.
func (m *Metrics) RecordSearch(result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(result).Inc()
	m.SearchDuration.Observe(duration.Seconds())
}

// RecordSearchEntries adds n discovered entries.
func (m *Metrics) RecordSearchEntries(n int) {
	if m == nil {
		return
	}
	m.SearchEntries.Add(float64(n))
}

// RecordMutation records one filesystem mutation.
func (m *Metrics) RecordMutation(op, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.MutationsTotal.WithLabelValues(op, result).Inc()
	m.MutationLatency.WithLabelValues(op).Observe(duration.Seconds())
}

// SetSessionsActive sets the number of active sessions
func (m *Metrics) SetSessionsActive(count int) {
	if m == nil {
		return
	}
	m.SessionsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveSessions = int64(count)
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

// Snapshot returns the current summary values for the health endpoint.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if s.TotalRequests > 0 {
		s.AvgLatencyMS = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
