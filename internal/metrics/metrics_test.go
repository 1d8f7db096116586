package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("/", http.MethodGet, http.StatusOK, time.Millisecond)
		m.RecordAuth("login", "success")
		m.RecordLedger("add", "success")
	})
}

func TestRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRequest("/expenses", http.MethodGet, http.StatusOK, 5*time.Millisecond)
	m.ObserveRequest("/expenses", http.MethodGet, http.StatusOK, 5*time.Millisecond)
	m.RecordAuth("login", "failure")
	m.RecordLedger("delete", "not_found")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/expenses", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LedgerOps.WithLabelValues("delete", "not_found")))

	count, err := testutil.GatherAndCount(reg, "budget_http_request_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}
