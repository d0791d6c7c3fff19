// Package metrics defines and registers all custom Prometheus metrics for the
// storefront agent. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartMutationsTotal counts cart operations.
// Labels:
//   - op: "add_item", "remove_item", "update_quantity", "clear"
//   - result: "ok" or "error"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations, by operation and result.",
	},
	[]string{"op", "result"},
)

// VoucherAttemptsTotal counts voucher applications.
// Label:
//   - result: "applied", "unknown" or "error"
var VoucherAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "voucher_attempts_total",
		Help:      "Total number of voucher applications, labelled by result.",
	},
	[]string{"result"},
)

// CartTotal tracks the current cart total after discounts.
var CartTotal = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cart_total",
		Help:      "Current cart total after discounts.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionEventsTotal counts session lifecycle events.
// Labels:
//   - event: "login", "logout", "register", "profile_refresh"
//   - result: "ok" or "error"
var SessionEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_events_total",
		Help:      "Total number of session lifecycle events, by event and result.",
	},
	[]string{"event", "result"},
)

// RouteDecisionsTotal counts navigation guard outcomes.
// Label:
//   - outcome: "allow" or "redirect"
var RouteDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "route_decisions_total",
		Help:      "Total number of route guard decisions, by outcome.",
	},
	[]string{"outcome"},
)

// ── Remote user API metrics ───────────────────────────────────────────────────

// RemoteRequestsTotal counts calls to the remote user API.
// Labels:
//   - op: logical operation (e.g. "login", "get profile")
//   - status: HTTP status code, or "error" on transport failure
var RemoteRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_requests_total",
		Help:      "Total number of requests to the remote user API.",
	},
	[]string{"op", "status"},
)

// RemoteRequestDuration measures remote user API latency.
var RemoteRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_request_duration_seconds",
		Help:      "Duration of requests to the remote user API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"op"},
)

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
