package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics holds the storefront collectors. A nil *Metrics records nothing.
type Metrics struct {
	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec
	refreshes   *prometheus.CounterVec
	outbox      *prometheus.CounterVec
}

// NewRegistry returns a registry with the Go runtime and process collectors installed.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return reg
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Backend API requests by method and status code.",
		}, []string{"method", "code"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Backend API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "refreshes_total",
			Help:      "Access token refresh attempts by result.",
		}, []string{"result"}),
		outbox: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "events_total",
			Help:      "Domain events leaving the outbox by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(m.apiRequests, m.apiDuration, m.refreshes, m.outbox)
	return m
}

// ObserveRequest records one backend call. code 0 means the request never got a response.
func (m *Metrics) ObserveRequest(method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}

	label := "error"
	if code > 0 {
		label = strconv.Itoa(code)
	}

	m.apiRequests.WithLabelValues(method, label).Inc()
	m.apiDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) Refresh(ok bool) {
	if m == nil {
		return
	}

	result := "success"
	if !ok {
		result = "failure"
	}
	m.refreshes.WithLabelValues(result).Inc()
}

// OutboxEvent counts a relay outcome: "published", "failed" or "dropped".
func (m *Metrics) OutboxEvent(result string) {
	if m == nil {
		return
	}

	m.outbox.WithLabelValues(result).Inc()
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry: reg,
	})
}
