package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	thumbDuration   prometheus.Observer
	thumbFailures   prometheus.Counter
	votesTotal      prometheus.Counter
	doorsOpened     *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "listing_cache_latency_seconds",
		Help:    "Latency for listing cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "listing_cache_hits_total",
		Help: "Total listing cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "listing_cache_misses_total",
		Help: "Total listing cache misses",
	})

	thumbDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "thumbnail_generation_seconds",
		Help:    "Duration of thumbnail generation including transcoding",
		Buckets: prometheus.DefBuckets,
	})

	thumbFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "thumbnail_failures_total",
		Help: "Total thumbnail transcode failures (degraded to no thumbnail)",
	})

	votesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "poll_votes_total",
		Help: "Total successfully recorded poll votes",
	})

	doorsOpened := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "door_reads_total",
		Help: "Single-door reads by outcome",
	}, []string{"outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses, thumbDuration, thumbFailures, votesTotal, doorsOpened, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		thumbDuration:   thumbDuration,
		thumbFailures:   thumbFailures,
		votesTotal:      votesTotal,
		doorsOpened:     doorsOpened,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records listing cache hit/miss metrics.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.cacheLatency != nil {
		m.cacheLatency.Observe(duration.Seconds())
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// ObserveThumbnail records a thumbnail generation attempt.
func (m *MetricsService) ObserveThumbnail(duration time.Duration, failed bool) {
	if m == nil {
		return
	}
	if m.thumbDuration != nil {
		m.thumbDuration.Observe(duration.Seconds())
	}
	if failed {
		m.thumbFailures.Inc()
	}
}

// RecordVote counts a successfully recorded vote.
func (m *MetricsService) RecordVote() {
	if m == nil {
		return
	}
	m.votesTotal.Inc()
}

// RecordDoorRead counts a single-door read by outcome (open, gated, empty).
func (m *MetricsService) RecordDoorRead(outcome string) {
	if m == nil {
		return
	}
	m.doorsOpened.WithLabelValues(outcome).Inc()
}
