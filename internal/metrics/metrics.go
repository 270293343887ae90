// Package metrics exposes Prometheus instrumentation for the RPC layer and
// the settlement calculator.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "settleup"

// Metrics holds the collectors registered on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rpcRequests    *prometheus.CounterVec
	rpcDuration    *prometheus.HistogramVec
	settlements    *prometheus.CounterVec
	debtsPerPlan   prometheus.Histogram
	ledgerEntries  prometheus.Histogram
	overviewGroups prometheus.Histogram
}

// New creates the collectors and registers them, along with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		rpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "RPC handling latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlement_computations_total",
			Help:      "Balance and debt computations, by outcome.",
		}, []string{"outcome"}),
		debtsPerPlan: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "debts_per_plan",
			Help:      "Transfers in each simplified settlement plan.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
		ledgerEntries: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ledger_entries",
			Help:      "Expenses plus settlements folded into each balance computation.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		overviewGroups: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "overview_groups",
			Help:      "Groups visited by each cross-group overview.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rpcRequests,
		m.rpcDuration,
		m.settlements,
		m.debtsPerPlan,
		m.ledgerEntries,
		m.overviewGroups,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRPC records one finished RPC.
func (m *Metrics) ObserveRPC(procedure, code string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.rpcRequests.WithLabelValues(procedure, code).Inc()
	m.rpcDuration.WithLabelValues(procedure).Observe(elapsed.Seconds())
}

// ObserveSettlement records a successful balance computation that folded
// entries ledger rows into a plan of debts transfers.
func (m *Metrics) ObserveSettlement(entries, debts int) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues("ok").Inc()
	m.ledgerEntries.Observe(float64(entries))
	m.debtsPerPlan.Observe(float64(debts))
}

// SettlementFailed records a computation rejected by the calculator.
func (m *Metrics) SettlementFailed() {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues("error").Inc()
}

// ObserveOverview records how many groups an overview request visited.
func (m *Metrics) ObserveOverview(groups int) {
	if m == nil {
		return
	}
	m.overviewGroups.Observe(float64(groups))
}
