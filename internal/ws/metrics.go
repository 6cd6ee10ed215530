package ws

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	activeConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ws_active_connections",
			Help: "Open websocket connections by channel.",
		},
		[]string{"channel"},
	)

	broadcastFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_broadcast_frames_total",
			Help: "Frames fanned out to group members.",
		},
		[]string{"channel"},
	)

	slowClientDrops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ws_slow_client_drops_total",
			Help: "Connections dropped because their send queue was full.",
		},
	)
)

func init() {
	prometheus.MustRegister(activeConnections, broadcastFrames, slowClientDrops)
}
