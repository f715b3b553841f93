package observability

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	buildsTotal     *prometheus.CounterVec
	buildDuration   prometheus.Histogram
	buildNodes      prometheus.Histogram
	resolveTotal    *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
	circularSkips   prometheus.Counter
	cacheEvents     *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewPrometheus creates the collectors and registers them with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ziplock_builds_total",
				Help: "Number of dependency tree builds by result.",
			},
			[]string{"result"},
		),
		buildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ziplock_build_duration_seconds",
				Help:    "Time taken to build a dependency tree.",
				Buckets: prometheus.DefBuckets,
			},
		),
		buildNodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ziplock_build_nodes",
				Help:    "Number of nodes in successfully built trees.",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		resolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ziplock_resolve_total",
				Help: "Number of backend resolutions by backend and result.",
			},
			[]string{"backend", "result"},
		),
		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ziplock_resolve_duration_seconds",
				Help:    "Time taken by a single backend resolution.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
		circularSkips: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "ziplock_circular_skips_total",
				Help: "Dependencies skipped because an ancestor already satisfies them.",
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ziplock_cache_events_total",
				Help: "Cache hits, misses and writes by key type.",
			},
			[]string{"event", "key_type"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ziplock_http_requests_total",
				Help: "Outgoing HTTP requests by host and status.",
			},
			[]string{"host", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ziplock_http_request_duration_seconds",
				Help:    "Outgoing HTTP request latency by host.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"host"},
		),
	}

	reg.MustRegister(
		p.buildsTotal,
		p.buildDuration,
		p.buildNodes,
		p.resolveTotal,
		p.resolveDuration,
		p.circularSkips,
		p.cacheEvents,
		p.httpRequests,
		p.httpDuration,
	)
	return p
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnBuildStart(context.Context, string) {}

func (p *Prometheus) OnBuildComplete(_ context.Context, _ string, nodeCount int, d time.Duration, err error) {
	p.buildsTotal.WithLabelValues(result(err)).Inc()
	p.buildDuration.Observe(d.Seconds())
	if err == nil {
		p.buildNodes.Observe(float64(nodeCount))
	}
}

func (p *Prometheus) OnResolve(_ context.Context, backend, _ string, d time.Duration, err error) {
	p.resolveTotal.WithLabelValues(backend, result(err)).Inc()
	p.resolveDuration.WithLabelValues(backend).Observe(d.Seconds())
}

func (p *Prometheus) OnCircularSkip(context.Context, string) { p.circularSkips.Inc() }

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues("hit", keyType).Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheEvents.WithLabelValues("miss", keyType).Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, _ int) {
	p.cacheEvents.WithLabelValues("set", keyType).Inc()
}

func (p *Prometheus) OnRequest(context.Context, string, string, string) {}

func (p *Prometheus) OnResponse(_ context.Context, _, host, _ string, status int, d time.Duration) {
	p.httpRequests.WithLabelValues(host, statusLabel(status)).Inc()
	p.httpDuration.WithLabelValues(host).Observe(d.Seconds())
}

func (p *Prometheus) OnError(_ context.Context, _, host, _ string, _ error) {
	p.httpRequests.WithLabelValues(host, "error").Inc()
}

func statusLabel(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

var (
	_ ResolveHooks = (*Prometheus)(nil)
	_ CacheHooks   = (*Prometheus)(nil)
	_ HTTPHooks    = (*Prometheus)(nil)
)
