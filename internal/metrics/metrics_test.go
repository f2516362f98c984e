package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordSnapshot(OutcomeSuccess, 105, time.Second)
	m.RecordSnapshot(OutcomeFailed, 0, time.Second)
	m.RecordSnapshot(OutcomeFailed, 0, time.Second)
	m.RecordPage()
	m.RecordPage()
	m.RecordAPIResponse(200)
	m.RecordAPIResponse(503)
	m.RecordAPIResponse(0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.snapshots.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.snapshots.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.pages))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiResponses.WithLabelValues("2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiResponses.WithLabelValues("5xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiResponses.WithLabelValues("error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.holders))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSnapshot(OutcomeSuccess, 1, time.Second)
		m.RecordPage()
		m.RecordAPIResponse(200)
	})
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(204))
	assert.Equal(t, "3xx", statusClass(302))
	assert.Equal(t, "4xx", statusClass(401))
	assert.Equal(t, "5xx", statusClass(500))
	assert.Equal(t, "error", statusClass(0))
}
