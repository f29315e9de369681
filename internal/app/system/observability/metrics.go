// Package observability holds the application's Prometheus metrics.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the ledger.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	transactionsCreated *prometheus.CounterVec
	approvalDecisions   *prometheus.CounterVec
	approvalConflicts   prometheus.Counter
	balanceAdjustments  *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	rateLookupFailures  prometheus.Counter
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		transactionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financeup_transactions_created_total",
				Help: "Transactions created, by type and initial status.",
			},
			[]string{"type", "status"},
		),
		approvalDecisions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financeup_approval_decisions_total",
				Help: "Approval decisions applied to pending transactions.",
			},
			[]string{"decision"},
		),
		approvalConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "financeup_approval_conflicts_total",
				Help: "Concurrent approval attempts that lost the status race.",
			},
		),
		balanceAdjustments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "financeup_balance_adjustments_total",
				Help: "Account balance adjustments, by direction.",
			},
			[]string{"direction"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "financeup_operation_duration_seconds",
				Help:    "Duration of ledger operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		rateLookupFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "financeup_rate_lookup_failures_total",
				Help: "Exchange-rate lookups that fell back to unconverted display.",
			},
		),
	}
}

// IncrTransactionCreated counts a new transaction with its initial status.
func (m *Metrics) IncrTransactionCreated(txType, status string) {
	if m == nil {
		return
	}
	m.transactionsCreated.WithLabelValues(txType, status).Inc()
}

// IncrApprovalDecision counts an approve or reject decision.
func (m *Metrics) IncrApprovalDecision(decision string) {
	if m == nil {
		return
	}
	m.approvalDecisions.WithLabelValues(decision).Inc()
}

// IncrApprovalConflict counts a lost status CAS race.
func (m *Metrics) IncrApprovalConflict() {
	if m == nil {
		return
	}
	m.approvalConflicts.Inc()
}

// IncrBalanceAdjustment counts a committed balance change, labeled by
// the transaction type that caused it ("in" credits, "out" debits).
func (m *Metrics) IncrBalanceAdjustment(direction string) {
	if m == nil {
		return
	}
	m.balanceAdjustments.WithLabelValues(direction).Inc()
}

// RecordOperationDuration records the duration of a ledger operation.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRateLookupFailure counts a degraded report render.
func (m *Metrics) IncrRateLookupFailure() {
	if m == nil {
		return
	}
	m.rateLookupFailures.Inc()
}
