package core

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetricsRecorder exports per-operation outcome counters and
// latency histograms through a prometheus registry. WatchLedger adds gauges
// for the registry's aggregate state.
type PrometheusMetricsRecorder struct {
	reg        prometheus.Registerer
	operations *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

// NewPrometheusMetricsRecorder builds a recorder and registers its collectors
// with reg. A nil reg falls back to prometheus.DefaultRegisterer.
func NewPrometheusMetricsRecorder(reg prometheus.Registerer) (*PrometheusMetricsRecorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &PrometheusMetricsRecorder{
		reg: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cuecore",
			Subsystem: "ledger",
			Name:      "operations_total",
			Help:      "Ledger operations by name and outcome.",
		}, []string{"operation", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "cuecore",
			Subsystem: "ledger",
			Name:      "operation_duration_seconds",
			Help:      "Ledger operation latency by name.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := reg.Register(r.operations); err != nil {
		return nil, err
	}
	if err := reg.Register(r.latency); err != nil {
		return nil, err
	}
	return r, nil
}

// WatchLedger registers gauges polled from stats at scrape time: cue supply,
// cumulative genesis issuance, and the pause switch.
func (r *PrometheusMetricsRecorder) WatchLedger(stats LedgerStats) error {
	gauges := []prometheus.GaugeFunc{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "cuecore",
			Subsystem: "ledger",
			Name:      "supply",
			Help:      "Cues ever created.",
		}, func() float64 { return float64(stats.TotalSupply()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "cuecore",
			Subsystem: "ledger",
			Name:      "genesis_issued",
			Help:      "Genesis cues issued against the lifetime cap.",
		}, func() float64 { return float64(stats.GenesisCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "cuecore",
			Subsystem: "ledger",
			Name:      "paused",
			Help:      "1 while the registry is paused.",
		}, func() float64 {
			if stats.Paused() {
				return 1
			}
			return 0
		}),
	}
	for _, g := range gauges {
		if err := r.reg.Register(g); err != nil {
			return err
		}
	}
	return nil
}

// Observe records a service operation outcome.
func (r *PrometheusMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	status := "error"
	if success {
		status = "success"
	}
	r.operations.WithLabelValues(operation, status).Inc()
	r.latency.WithLabelValues(operation).Observe(duration.Seconds())
}
