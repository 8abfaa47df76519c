// Package observability owns the Prometheus collectors of the hub.
// All methods are safe on a nil *Metrics so tests can skip wiring.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "callhub"

type Metrics struct {
	events  *prometheus.CounterVec
	faults  *prometheus.CounterVec
	dropped *prometheus.CounterVec
	kicks   prometheus.Counter
	online  prometheus.Gauge
	rooms   prometheus.Gauge
	conns   prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Inbound events dispatched, by type.",
		}, []string{"type"}),
		faults: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_faults_total",
			Help:      "Inbound events rejected or failed at the dispatch boundary, by type.",
		}, []string{"type"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Outbound frames that could not be queued, by event type.",
		}, []string{"type"}),
		kicks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backpressure_kicks_total",
			Help:      "Connections closed because their send queue was full.",
		}),
		online: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "online_users",
			Help:      "Connections with an identity record.",
		}),
		rooms: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms with at least one participant.",
		}),
		conns: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Open WebSocket connections, logged in or not.",
		}),
	}
}

func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

func (m *Metrics) Fault(kind string) {
	if m == nil {
		return
	}
	m.faults.WithLabelValues(kind).Inc()
}

func (m *Metrics) Dropped(kind string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(kind).Inc()
}

func (m *Metrics) Kick() {
	if m == nil {
		return
	}
	m.kicks.Inc()
}

// State records registry sizes after an event.
func (m *Metrics) State(online, rooms int) {
	if m == nil {
		return
	}
	m.online.Set(float64(online))
	m.rooms.Set(float64(rooms))
}

func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.conns.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.conns.Dec()
}
