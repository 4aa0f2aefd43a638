package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Hub metrics
var (
	// HubConnectedClients tracks the number of live WebSocket connections
	HubConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_clients",
			Help: "Number of live WebSocket connections",
		},
	)

	// HubSubscriptionKeys tracks the number of match keys with at least one subscriber
	HubSubscriptionKeys = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_subscription_keys",
			Help: "Number of match keys with at least one subscriber",
		},
	)

	// HubSubscriptionEntries tracks the total number of (match, connection) subscription pairs
	HubSubscriptionEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_subscription_entries",
			Help: "Total (match, connection) subscription pairs",
		},
	)

	// HubBroadcastsTotal counts broadcasts by event type
	HubBroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_broadcasts_total",
			Help: "Broadcasts dispatched by event type",
		},
		[]string{"type"},
	)

	// HubEvictedConnectionsTotal counts forced disconnects by reason
	HubEvictedConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hub_evicted_connections_total",
			Help: "Connections forcibly closed by the hub, by reason",
		},
		[]string{"reason"},
	)

	// HubDiscardedMessagesTotal counts inbound messages dropped as malformed or unrecognized
	HubDiscardedMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_discarded_messages_total",
			Help: "Inbound client messages dropped as malformed or unrecognized",
		},
	)

	// HubStopTimeoutsTotal counts hub shutdowns that exceeded the stop timeout
	HubStopTimeoutsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_stop_timeouts_total",
			Help: "Hub shutdowns that exceeded the graceful stop timeout",
		},
	)

	// HubPanicsTotal counts recovered panics in the hub goroutine
	HubPanicsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_panics_total",
			Help: "Recovered panics in the hub goroutine",
		},
	)
)

// WebSocket writer metrics
var (
	// WebSocketMessageSendDuration tracks per-frame write latency in seconds
	WebSocketMessageSendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "websocket_message_send_duration_seconds",
			Help:    "WebSocket frame write duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	// WebSocketPingFailures counts heartbeat pings that failed to write
	WebSocketPingFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_ping_failures_total",
			Help: "Heartbeat pings that failed to write",
		},
	)
)

// Status sync metrics
var (
	// StatusSyncTicksTotal counts status sync scheduler ticks
	StatusSyncTicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "status_sync_ticks_total",
			Help: "Status sync scheduler ticks",
		},
	)

	// StatusSyncTickDuration tracks full tick duration in seconds
	StatusSyncTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "status_sync_tick_duration_seconds",
			Help:    "Status sync tick duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// StatusSyncErrorsTotal counts failed persistence calls during sync ticks
	StatusSyncErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "status_sync_errors_total",
			Help: "Failed persistence calls during status sync ticks",
		},
	)

	// StatusTransitionsTotal counts persisted match status transitions by new status
	StatusTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_transitions_total",
			Help: "Persisted match status transitions by new status",
		},
		[]string{"to"},
	)
)

// Gatekeeper metrics
var (
	// GatekeeperDecisionsTotal counts connection gate decisions by outcome
	GatekeeperDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gatekeeper_decisions_total",
			Help: "Connection gate decisions by outcome",
		},
		[]string{"outcome"},
	)
)
