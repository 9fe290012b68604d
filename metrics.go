package qb

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics instruments the execution loop with Prometheus counters/gauges, so
// operators can observe punch throughput and stall behaviour across a
// cluster of workers without tailing ledger files by hand.
type Metrics struct {
	registry  *prometheus.Registry
	punches   *prometheus.CounterVec
	idleGauge prometheus.Gauge
	claims    prometheus.Counter
}

// NewMetrics builds a fresh Metrics registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		punches: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "qb",
			Name:      "punches_total",
			Help:      "Ledger punches written by this worker, by direction.",
		}, []string{"direction"}),
		idleGauge: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "qb",
			Name:      "loop_idle_cycles",
			Help:      "Consecutive idle cycles observed by the execution loop.",
		}),
		claims: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "qb",
			Name:      "qubit_claims_total",
			Help:      "Qubits claimed for execution by this worker.",
		}),
	}
	return m
}

// ObservePunch increments the punch counter for the given direction.
func (m *Metrics) ObservePunch(dir Direction) {
	if m == nil {
		return
	}
	label := "out"
	if dir == In {
		label = "in"
	}
	m.punches.WithLabelValues(label).Inc()
}

// SetIdle records the current consecutive-idle-cycle count.
func (m *Metrics) SetIdle(idle int) {
	if m == nil {
		return
	}
	m.idleGauge.Set(float64(idle))
}

// ObserveClaim records that this worker claimed a qubit for execution.
func (m *Metrics) ObserveClaim() {
	if m == nil {
		return
	}
	m.claims.Inc()
}

// Serve exposes the registry over HTTP at addr until ctx is cancelled. It is
// opt-in (the "metricsAddr" configuration key, empty by default) — most
// invocations of qb never start this server.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
