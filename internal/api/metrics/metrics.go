// Package metrics defines and registers all custom Prometheus metrics for
// the issue tracker. It is the single source of truth for metric names,
// labels, and help strings. promauto registers everything with the default
// registry at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "civicdesk"

// ── Issue metrics ─────────────────────────────────────────────────────────────

// IssuesCreatedTotal counts newly reported issues by category.
var IssuesCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "issues_created_total",
		Help:      "Total number of issues created, by category.",
	},
	[]string{"category"},
)

// QuotaRejectionsTotal counts issue creations denied by the free-tier quota.
var QuotaRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quota_rejections_total",
		Help:      "Total number of issue creations denied by the free-tier quota.",
	},
)

// StatusTransitionsTotal counts applied lifecycle transitions.
// Labels:
//   - status: the new status applied (e.g. "resolved")
var StatusTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "status_transitions_total",
		Help:      "Total number of applied issue status transitions, by new status.",
	},
	[]string{"status"},
)

// VotesTotal counts upvote attempts.
// Label:
//   - result: "ok", "duplicate", "forbidden", "error"
var VotesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_total",
		Help:      "Total number of upvote attempts, by result.",
	},
	[]string{"result"},
)

// ── Payment metrics ───────────────────────────────────────────────────────────

// PaymentsConfirmedTotal counts reconciled payment confirmations.
// Label:
//   - kind: "premium" or "boost"
var PaymentsConfirmedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_confirmed_total",
		Help:      "Total number of reconciled payment confirmations, by kind.",
	},
	[]string{"kind"},
)

// CheckoutSessionsTotal counts opened checkout sessions.
// Label:
//   - kind: "premium" or "boost"
var CheckoutSessionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_sessions_total",
		Help:      "Total number of checkout sessions opened, by kind.",
	},
	[]string{"kind"},
)
