package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSimulation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSimulation("historical", 4, 20*time.Millisecond, nil)
	m.ObserveSimulation("historical", 4, 10*time.Millisecond, nil)
	m.ObserveSimulation("montecarlo", 0, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Simulations.WithLabelValues("historical", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Simulations.WithLabelValues("montecarlo", "error")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.CyclesSimulated.WithLabelValues("historical")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.CyclesSimulated.WithLabelValues("montecarlo")))

	n, err := testutil.GatherAndCount(reg, "portfolio_doctor_simulation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestObserveRequestAndStoreError(t *testing.T) {
	m := New(nil)
	m.ObserveRequest("/health", "200")
	m.StoreError()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunStoreErrors))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSimulation("historical", 1, time.Second, nil)
		m.ObserveRequest("/", "200")
		m.StoreError()
	})
}
