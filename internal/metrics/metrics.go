// Package metrics exposes Prometheus instrumentation for simulations and the
// HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded by the API server.
type Metrics struct {
	Simulations        *prometheus.CounterVec
	CyclesSimulated    *prometheus.CounterVec
	SimulationDuration *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
	RunStoreErrors     prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is convenient in tests.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Simulations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_doctor_simulations_total",
				Help: "Simulations run, by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		CyclesSimulated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_doctor_cycles_simulated_total",
				Help: "Retirement cycles produced, by method",
			},
			[]string{"method"},
		),
		SimulationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portfolio_doctor_simulation_duration_seconds",
				Help:    "Wall time of a simulation including aggregation",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"method"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portfolio_doctor_http_requests_total",
				Help: "HTTP requests served, by route and status code",
			},
			[]string{"route", "status"},
		),
		RunStoreErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "portfolio_doctor_run_store_errors_total",
				Help: "Failed reads or writes against the run store",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Simulations, m.CyclesSimulated, m.SimulationDuration, m.HTTPRequests, m.RunStoreErrors)
	}
	return m
}

// ObserveSimulation records one finished simulation. err decides the outcome
// label; cycles is ignored for failed runs.
func (m *Metrics) ObserveSimulation(method string, cycles int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.Simulations.WithLabelValues(method, outcome).Inc()
	m.SimulationDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	if err == nil {
		m.CyclesSimulated.WithLabelValues(method).Add(float64(cycles))
	}
}

func (m *Metrics) ObserveRequest(route, status string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, status).Inc()
}

func (m *Metrics) StoreError() {
	if m == nil {
		return
	}
	m.RunStoreErrors.Inc()
}
