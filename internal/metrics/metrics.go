// Package metrics exposes the ownership engine's Prometheus counters.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	assignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asset",
		Subsystem: "ownership",
		Name:      "transitions_total",
		Help:      "Total number of assign/unassign requests broken down by kind, action and outcome.",
	}, []string{"kind", "action", "outcome"})

	racesLost = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asset",
		Subsystem: "ownership",
		Name:      "races_lost_total",
		Help:      "Total number of conditional updates that found a different owner than the one checked.",
	}, []string{"kind", "action"})

	reconciled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asset",
		Subsystem: "reconcile",
		Name:      "documents_total",
		Help:      "Total number of documents visited by the reconciliation sweep broken down by kind and result.",
	}, []string{"kind", "result"})

	deletionChecks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "asset",
		Subsystem: "deletion_guard",
		Name:      "checks_total",
		Help:      "Total number of deletion guard decisions broken down by entity and decision.",
	}, []string{"entity", "decision"})
)

// RecordTransition counts one assign or unassign attempt.
func RecordTransition(kind, action, outcome string) {
	if kind == "" {
		kind = "unknown"
	}
	assignments.WithLabelValues(kind, action, outcome).Inc()
}

// RecordRaceLost counts one conditional update that lost to a concurrent writer.
func RecordRaceLost(kind, action string) {
	racesLost.WithLabelValues(kind, action).Inc()
}

// RecordReconciled counts one sweep document; result is unchanged, updated or failed.
func RecordReconciled(kind, result string) {
	reconciled.WithLabelValues(kind, result).Inc()
}

// RecordDeletionCheck counts one deletion guard decision.
func RecordDeletionCheck(entity string, allowed bool) {
	decision := "reject"
	if allowed {
		decision = "allow"
	}
	deletionChecks.WithLabelValues(entity, decision).Inc()
}
