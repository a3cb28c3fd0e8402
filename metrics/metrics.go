// Package metrics exposes Prometheus collectors for the scrape service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	scrapesTotal          *prometheus.CounterVec
	attemptsTotal         *prometheus.CounterVec
	authWallsTotal        *prometheus.CounterVec
	recordsReturned       prometheus.Histogram
	revealRounds          prometheus.Histogram
	scrapeDurationSeconds *prometheus.HistogramVec
	activeScrapes         prometheus.Gauge
	cacheLookupsTotal     *prometheus.CounterVec

	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xfeed_scrapes_total",
				Help: "Total number of scrapes, labeled by mode used and outcome.",
			},
			[]string{"mode", "outcome"},
		)

		attemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xfeed_attempts_total",
				Help: "Total number of browser session attempts, labeled by mode.",
			},
			[]string{"mode"},
		)

		authWallsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xfeed_auth_walls_total",
				Help: "Navigations that landed on a login or access page, labeled by mode.",
			},
			[]string{"mode"},
		)

		recordsReturned = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "xfeed_records_returned",
				Help:    "Number of records returned per successful scrape.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
			},
		)

		revealRounds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "xfeed_reveal_rounds",
				Help:    "Reveal rounds run by the chosen attempt.",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 60},
			},
		)

		scrapeDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xfeed_scrape_duration_seconds",
				Help:    "Histogram of whole scrape durations, labeled by outcome.",
				Buckets: []float64{1, 2, 5, 10, 20, 30, 60, 120, 300},
			},
			[]string{"outcome"},
		)

		activeScrapes = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "xfeed_active_scrapes",
				Help: "Number of scrapes currently running, each with its own browser.",
			},
		)

		cacheLookupsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xfeed_cache_lookups_total",
				Help: "Result cache lookups, labeled by result (hit, miss).",
			},
			[]string{"result"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "xfeed_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "xfeed_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveScrape records the end of one scrape. mode is empty on failure.
func ObserveScrape(mode, outcome string, records, rounds int, duration time.Duration) {
	if mode == "" {
		mode = "none"
	}
	scrapesTotal.WithLabelValues(mode, outcome).Inc()
	scrapeDurationSeconds.WithLabelValues(outcome).Observe(duration.Seconds())
	if outcome == "success" {
		recordsReturned.Observe(float64(records))
		revealRounds.Observe(float64(rounds))
	}
}

// ObserveAttempt counts one session attempt.
func ObserveAttempt(mode string) {
	attemptsTotal.WithLabelValues(mode).Inc()
}

// ObserveAuthWall counts one navigation that hit an auth wall.
func ObserveAuthWall(mode string) {
	authWallsTotal.WithLabelValues(mode).Inc()
}

// ObserveCacheLookup counts one cache lookup.
func ObserveCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookupsTotal.WithLabelValues(result).Inc()
}

// IncActiveScrapes increments the active scrapes gauge.
func IncActiveScrapes() {
	activeScrapes.Inc()
}

// DecActiveScrapes decrements the active scrapes gauge.
func DecActiveScrapes() {
	activeScrapes.Dec()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request counts and latencies by matched route.
func Middleware() gin.HandlerFunc {
	Init()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
