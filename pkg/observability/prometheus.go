package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics implements every hook interface on top of Prometheus collectors.
type Metrics struct {
	layouts         *prometheus.CounterVec
	layoutDuration  *prometheus.HistogramVec
	layoutMembers   prometheus.Gauge
	renders         *prometheus.CounterVec
	renderDuration  *prometheus.HistogramVec
	renderBytes     *prometheus.HistogramVec
	cacheEvents     *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inflight        prometheus.Gauge
}

// NewMetrics creates the collectors on reg. A nil reg uses the default
// Prometheus registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		layouts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kintree_layouts_total",
			Help: "Layouts computed, by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		layoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kintree_layout_duration_seconds",
			Help:    "Duration of layout computations",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.25},
		}, []string{"strategy"}),
		layoutMembers: f.NewGauge(prometheus.GaugeOpts{
			Name: "kintree_layout_members",
			Help: "Members in the most recent layout request",
		}),
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kintree_renders_total",
			Help: "Artifacts rendered, by format and outcome",
		}, []string{"format", "outcome"}),
		renderDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kintree_render_duration_seconds",
			Help:    "Duration of render calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
		renderBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kintree_render_bytes",
			Help:    "Size of rendered artifacts",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}, []string{"format"}),
		cacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kintree_cache_events_total",
			Help: "Cache hits, misses and writes by key type",
		}, []string{"key_type", "event"}),
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "kintree_http_requests_total",
			Help: "HTTP responses by route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kintree_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "kintree_http_requests_in_flight",
			Help: "Requests currently being served",
		}),
	}
}

// Register installs m as the global pipeline, cache and HTTP hooks.
func (m *Metrics) Register() {
	SetPipelineHooks(m)
	SetCacheHooks(m)
	SetHTTPHooks(m)
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnLayoutStart(_ context.Context, _ string, memberCount int) {
	m.layoutMembers.Set(float64(memberCount))
}

func (m *Metrics) OnLayoutComplete(_ context.Context, strategy string, _ int, d time.Duration, err error) {
	m.layouts.WithLabelValues(strategy, outcome(err)).Inc()
	m.layoutDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, format string, size int, d time.Duration, err error) {
	m.renders.WithLabelValues(format, outcome(err)).Inc()
	m.renderDuration.WithLabelValues(format).Observe(d.Seconds())
	if err == nil {
		m.renderBytes.WithLabelValues(format).Observe(float64(size))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, _ int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inflight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inflight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PipelineHooks = (*Metrics)(nil)
	_ CacheHooks    = (*Metrics)(nil)
	_ HTTPHooks     = (*Metrics)(nil)
)
