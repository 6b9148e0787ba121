package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the planner collaboration server, declared package-level
// so the room registry and the transport can both record without
// coupling to each other.
//
// Naming follows namespace_subsystem_name with namespace "planner" and
// a websocket or room subsystem. Gauges carry current state, counters
// cumulative events, histograms latency distributions.

var (
	// ActiveWebSocketConnections is the number of sockets currently
	// admitted to a room.
	ActiveWebSocketConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "planner",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// ActiveRooms is the number of rooms currently open.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "planner",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	})

	// RoomUsers is the per-room user count, labelled by room name.
	RoomUsers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "planner",
		Subsystem: "room",
		Name:      "users_count",
		Help:      "Number of users in each room",
	}, []string{"room"})

	// CommandsProcessed counts handled commands by type and outcome.
	CommandsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "planner",
		Subsystem: "websocket",
		Name:      "commands_total",
		Help:      "Total websocket commands processed",
	}, []string{"command", "status"})

	// CommandDuration measures time spent handling a command under the
	// room lock. Buckets sit well under a millisecond; handlers only
	// touch memory.
	CommandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "planner",
		Subsystem: "websocket",
		Name:      "command_duration_seconds",
		Help:      "Time spent handling websocket commands",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
	}, []string{"command"})
)

func IncConnection() {
	ActiveWebSocketConnections.Inc()
}

func DecConnection() {
	ActiveWebSocketConnections.Dec()
}
