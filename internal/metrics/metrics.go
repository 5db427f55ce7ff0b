// Package metrics exposes Prometheus instrumentation for the authentication
// pipeline and the upstream Wargaming services.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Authentication outcomes.
const (
	OutcomeIssued           = "issued"
	OutcomeRejected         = "rejected"
	OutcomeReplayed         = "replayed"
	OutcomeNotEnoughBattles = "not_enough_battles"
	OutcomeNotFound         = "account_not_found"
	OutcomeError            = "error"
)

// Upstream service labels.
const (
	ServiceOpenID     = "openid"
	ServiceAccountAPI = "account_api"
)

// Recorder is what the clients and handlers report to. Nop satisfies it for
// tests and for callers that do not care.
type Recorder interface {
	RecordAuthentication(outcome string)
	RecordUpstreamLatency(service string, d time.Duration)
	RecordPlayedMap()
}

// Collector records metrics into a Prometheus registry.
type Collector struct {
	authentications *prometheus.CounterVec
	upstreamLatency *prometheus.HistogramVec
	playedMaps      prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authentications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wotmaps_authentications_total",
			Help: "Authentication attempts by outcome.",
		}, []string{"outcome"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wotmaps_upstream_request_duration_seconds",
			Help:    "Latency of requests to Wargaming services.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service"}),
		playedMaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wotmaps_played_maps_total",
			Help: "Played maps reported by clients.",
		}),
	}

	reg.MustRegister(c.authentications, c.upstreamLatency, c.playedMaps)

	return c
}

// RecordAuthentication counts one authentication attempt.
func (c *Collector) RecordAuthentication(outcome string) {
	c.authentications.WithLabelValues(outcome).Inc()
}

// RecordUpstreamLatency observes the duration of one upstream round trip.
func (c *Collector) RecordUpstreamLatency(service string, d time.Duration) {
	c.upstreamLatency.WithLabelValues(service).Observe(d.Seconds())
}

// RecordPlayedMap counts one accepted played-map report.
func (c *Collector) RecordPlayedMap() {
	c.playedMaps.Inc()
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordAuthentication(string)                 {}
func (Nop) RecordUpstreamLatency(string, time.Duration) {}
func (Nop) RecordPlayedMap()                            {}
