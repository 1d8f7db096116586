// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the ledger. All methods are safe on a nil *Metrics, which disables them.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	// RequestsTotal counts HTTP requests by route pattern, method and status.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration tracks HTTP request latency by route pattern.
	RequestDuration *prometheus.HistogramVec

	// AuthEvents counts login/registration outcomes.
	AuthEvents *prometheus.CounterVec

	// LedgerOps counts ledger mutations by operation and result.
	LedgerOps *prometheus.CounterVec
}

// New creates metrics and registers them on reg. A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_http_requests_total",
				Help: "Total HTTP requests by route, method and status code",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "budget_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		AuthEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_auth_events_total",
				Help: "Authentication events by kind (login, register, logout) and result",
			},
			[]string{"event", "result"},
		),
		LedgerOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "budget_ledger_operations_total",
				Help: "Ledger operations by kind (add, delete) and result",
			},
			[]string{"op", "result"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.AuthEvents, m.LedgerOps)
	}
	return m
}

// ObserveRequest records a completed HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// RecordAuth records an authentication event such as ("login", "failure").
func (m *Metrics) RecordAuth(event, result string) {
	if m == nil {
		return
	}
	m.AuthEvents.WithLabelValues(event, result).Inc()
}

// RecordLedger records a ledger mutation such as ("delete", "not_found").
func (m *Metrics) RecordLedger(op, result string) {
	if m == nil {
		return
	}
	m.LedgerOps.WithLabelValues(op, result).Inc()
}
