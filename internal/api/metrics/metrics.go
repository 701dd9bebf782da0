// Package metrics defines and registers all custom Prometheus metrics for the
// adoption API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Metrics register with the default Prometheus registry on package load and
// are exposed by promhttp at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adoption"

// ── HTTP metrics ──────────────────────────────────────────────────────────────

// HTTPRequestsTotal counts handled requests.
// Labels:
//   - method: HTTP method
//   - route: the matched route template (e.g. "/api/pets/:id")
//   - status: response status code
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration measures request latency per route.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// GateDecisionsTotal counts access gate outcomes.
// Label:
//   - decision: "pass", "allow", "signin", "to_dashboard" or "to_admin"
var GateDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_decisions_total",
		Help:      "Total number of access gate decisions on page paths.",
	},
	[]string{"decision"},
)

// AuthRejectionsTotal counts requests refused by the role wrapper.
// Label:
//   - reason: "unauthorized" or "forbidden"
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of API requests rejected by authorization.",
	},
	[]string{"reason"},
)

// LoginsTotal counts sign-in attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// ── Chat metrics ──────────────────────────────────────────────────────────────

// MessagesPostedTotal counts persisted chat messages.
// Label:
//   - transport: "rest" or "ws"
var MessagesPostedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_posted_total",
		Help:      "Total number of chat messages persisted, by transport.",
	},
	[]string{"transport"},
)

// RealtimeConnections tracks open relay sockets.
var RealtimeConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "realtime_connections",
		Help:      "Current number of open real-time relay connections.",
	},
)

// RealtimeEventsTotal counts inbound socket events.
// Label:
//   - event: client event name, or "unknown"
var RealtimeEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_total",
		Help:      "Total number of events received from relay clients.",
	},
	[]string{"event"},
)

// RealtimeDroppedTotal counts clients disconnected because their send buffer
// filled up.
var RealtimeDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_dropped_clients_total",
		Help:      "Total number of slow relay clients dropped.",
	},
)
