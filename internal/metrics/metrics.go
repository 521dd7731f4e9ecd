package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "espresso"

// Persist failure operations.
const (
	OpSave    = "save"
	OpHistory = "history"
)

// Collectors holds the chat relay's custom Prometheus collectors.
type Collectors struct {
	WSConnections   prometheus.Gauge
	RoomMembers     prometheus.Gauge
	MessagesTotal   prometheus.Counter
	RoomJoinsTotal  prometheus.Counter
	PersistFailures *prometheus.CounterVec
}

// New registers the collectors on reg. Each server gets its own registry so
// that tests can build several servers in one process.
func New(reg prometheus.Registerer) *Collectors {
	factory := promauto.With(reg)
	return &Collectors{
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Number of open WebSocket connections.",
		}),
		RoomMembers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "room_members",
			Help:      "Number of users currently joined to a room.",
		}),
		MessagesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Chat messages broadcast to rooms.",
		}),
		RoomJoinsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_joins_total",
			Help:      "Successful room joins.",
		}),
		PersistFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_failures_total",
			Help:      "Failed message store operations.",
		}, []string{"operation"}),
	}
}

// Discard returns collectors registered on a throwaway registry.
func Discard() *Collectors {
	return New(prometheus.NewRegistry())
}
