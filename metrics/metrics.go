// Package metrics aggregates the orchestrator's Prometheus metrics and
// exposes them over HTTP, the Go counterpart to
// original_source/bin/orchestrator/src/metrics.rs. Struct composition
// follows op-interop-mon/metrics.go's shape (a namespaced registry plus one
// field per metric, built at construction time), using
// prometheus/client_golang's primitives directly.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric this orchestrator exports.
const Namespace = "fast_withdrawal"

// Metrics is the full set of series this orchestrator maintains across
// cycles, steps, withdrawals, deposits, and balances. Gauge names mirror
// the *_eth convention (rather than wei) so operators reading raw
// Prometheus output see human-scale balances directly.
type Metrics struct {
	registry *prometheus.Registry

	cyclesTotal        prometheus.Counter
	cyclesSuccessTotal prometheus.Counter
	cyclesFailureTotal prometheus.Counter
	cycleDuration      prometheus.Histogram

	stepSuccessTotal *prometheus.CounterVec
	stepFailureTotal *prometheus.CounterVec

	withdrawalsFinalizedTotal prometheus.Counter
	depositsTotal             prometheus.Counter
	depositAmountEthTotal     prometheus.Counter

	l1EOABalanceEth     prometheus.Gauge
	l2EOABalanceEth     prometheus.Gauge
	spokePoolBalanceEth prometheus.Gauge

	inflightDepositsCount prometheus.Gauge
	inflightDepositsEth   prometheus.Gauge

	withdrawalsInitiatedCount prometheus.Gauge
	withdrawalsInitiatedEth   prometheus.Gauge
	withdrawalsProvenCount    prometheus.Gauge
	withdrawalsProvenEth      prometheus.Gauge
	inflightWithdrawalsCount  prometheus.Gauge
	inflightWithdrawalsEth    prometheus.Gauge
}

// New builds a Metrics instance and registers every series with a fresh
// registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "cycles_total", Help: "Total number of orchestrator cycles executed",
		}),
		cyclesSuccessTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "cycles_success_total", Help: "Total number of successful orchestrator cycles",
		}),
		cyclesFailureTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "cycles_failure_total", Help: "Total number of failed orchestrator cycles",
		}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace, Name: "cycle_duration_seconds", Help: "Duration of each orchestrator cycle in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		withdrawalsFinalizedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "withdrawals_finalized_total", Help: "Total number of withdrawals finalized on L1",
		}),
		depositsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "deposits_total", Help: "Total number of L1-to-L2 spoke pool deposits executed",
		}),
		depositAmountEthTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace, Name: "deposit_amount_eth_total", Help: "Total amount deposited into the spoke pool, in ETH",
		}),

		l1EOABalanceEth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "l1_eoa_balance_eth", Help: "Current operator L1 EOA balance, in ETH",
		}),
		l2EOABalanceEth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "l2_eoa_balance_eth", Help: "Current operator L2 EOA balance, in ETH",
		}),
		spokePoolBalanceEth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "spoke_pool_balance_eth", Help: "Current L2 spoke pool WETH balance, in ETH",
		}),

		inflightDepositsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "inflight_deposits_count", Help: "Number of in-flight L1-to-L2 deposits",
		}),
		inflightDepositsEth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "inflight_deposits_eth", Help: "Total in-flight L1-to-L2 deposit amount, in ETH",
		}),

		withdrawalsInitiatedCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "withdrawals_initiated_count", Help: "Number of pending withdrawals awaiting proof",
		}),
		withdrawalsInitiatedEth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "withdrawals_initiated_eth", Help: "Total amount of withdrawals awaiting proof, in ETH",
		}),
		withdrawalsProvenCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "withdrawals_proven_count", Help: "Number of proven withdrawals awaiting finalization",
		}),
		withdrawalsProvenEth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "withdrawals_proven_eth", Help: "Total amount of proven withdrawals awaiting finalization, in ETH",
		}),
		inflightWithdrawalsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "inflight_withdrawals_count", Help: "Total number of withdrawals not yet finalized",
		}),
		inflightWithdrawalsEth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace, Name: "inflight_withdrawals_eth", Help: "Total amount of withdrawals not yet finalized, in ETH",
		}),
	}

	m.stepSuccessTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace, Name: "step_success_total", Help: "Total successful step executions by step name",
	}, []string{"step"})
	m.stepFailureTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace, Name: "step_failure_total", Help: "Total failed step executions by step name",
	}, []string{"step"})

	registry.MustRegister(
		m.cyclesTotal, m.cyclesSuccessTotal, m.cyclesFailureTotal, m.cycleDuration,
		m.stepSuccessTotal, m.stepFailureTotal,
		m.withdrawalsFinalizedTotal, m.depositsTotal, m.depositAmountEthTotal,
		m.l1EOABalanceEth, m.l2EOABalanceEth, m.spokePoolBalanceEth,
		m.inflightDepositsCount, m.inflightDepositsEth,
		m.withdrawalsInitiatedCount, m.withdrawalsInitiatedEth,
		m.withdrawalsProvenCount, m.withdrawalsProvenEth,
		m.inflightWithdrawalsCount, m.inflightWithdrawalsEth,
	)

	return m
}

// RecordCycle records a completed control loop cycle's outcome and duration.
func (m *Metrics) RecordCycle(success bool, duration time.Duration) {
	m.cyclesTotal.Inc()
	m.cycleDuration.Observe(duration.Seconds())
	if success {
		m.cyclesSuccessTotal.Inc()
	} else {
		m.cyclesFailureTotal.Inc()
	}
}

// RecordStepSuccess records a successful step execution by name.
func (m *Metrics) RecordStepSuccess(step string) { m.stepSuccessTotal.WithLabelValues(step).Inc() }

// RecordStepFailure records a failed step execution by name.
func (m *Metrics) RecordStepFailure(step string) { m.stepFailureTotal.WithLabelValues(step).Inc() }

// RecordWithdrawalFinalized records a withdrawal finalization.
func (m *Metrics) RecordWithdrawalFinalized() { m.withdrawalsFinalizedTotal.Inc() }

// RecordDeposit records a spoke pool deposit.
func (m *Metrics) RecordDeposit(amountEth float64) {
	m.depositsTotal.Inc()
	m.depositAmountEthTotal.Add(amountEth)
}

// SetL1EOABalance sets the current L1 EOA balance gauge, in ETH.
func (m *Metrics) SetL1EOABalance(eth float64) { m.l1EOABalanceEth.Set(eth) }

// SetL2EOABalance sets the current L2 EOA balance gauge, in ETH.
func (m *Metrics) SetL2EOABalance(eth float64) { m.l2EOABalanceEth.Set(eth) }

// SetSpokePoolBalance sets the current spoke pool balance gauge, in ETH.
func (m *Metrics) SetSpokePoolBalance(eth float64) { m.spokePoolBalanceEth.Set(eth) }

// SetInflightDeposits sets the in-flight deposit count and total, in ETH.
func (m *Metrics) SetInflightDeposits(count int, eth float64) {
	m.inflightDepositsCount.Set(float64(count))
	m.inflightDepositsEth.Set(eth)
}

// SetWithdrawalsInitiated sets the count and total amount of withdrawals
// that have been initiated but not yet proven.
func (m *Metrics) SetWithdrawalsInitiated(count int, eth float64) {
	m.withdrawalsInitiatedCount.Set(float64(count))
	m.withdrawalsInitiatedEth.Set(eth)
}

// SetWithdrawalsProven sets the count and total amount of withdrawals that
// have been proven but not yet finalized.
func (m *Metrics) SetWithdrawalsProven(count int, eth float64) {
	m.withdrawalsProvenCount.Set(float64(count))
	m.withdrawalsProvenEth.Set(eth)
}

// SetInflightWithdrawals sets the total count and amount of withdrawals not
// yet finalized (initiated + proven combined).
func (m *Metrics) SetInflightWithdrawals(count int, eth float64) {
	m.inflightWithdrawalsCount.Set(float64(count))
	m.inflightWithdrawalsEth.Set(eth)
}

// Server serves /metrics over HTTP until its context is cancelled.
type Server struct {
	httpServer *http.Server
}

// NewServer builds an HTTP server exposing m's registry at /metrics on addr
// (e.g. ":9090"), mirroring original_source's install_prometheus_exporter.
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return &Server{httpServer: &http.Server{Addr: addr, Handler: mux}}
}

// Run starts serving and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("metrics server failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
