package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the realtime counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	connections        prometheus.Gauge
	handshakes         *prometheus.CounterVec
	broadcasts         *prometheus.CounterVec
	deliveries         *prometheus.CounterVec
	notifications      *prometheus.CounterVec
	storeLatency       *prometheus.HistogramVec
	inboundRateLimited prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chat_registry_connections",
			Help: "Users currently mapped to a live connection.",
		}),
		handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_handshakes_total",
			Help: "Connection handshakes by result.",
		}, []string{"result"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_broadcasts_total",
			Help: "Channel broadcasts by event name.",
		}, []string{"event"}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_deliveries_total",
			Help: "Per-connection frame deliveries by result.",
		}, []string{"result"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chat_notifications_total",
			Help: "Targeted notifications by result (delivered, dropped).",
		}, []string{"result"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "chat_store_operation_seconds",
			Help:    "Message store operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		inboundRateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chat_inbound_rate_limited_total",
			Help: "Inbound websocket frames rejected by the per-connection limiter.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.connections,
		m.handshakes,
		m.broadcasts,
		m.deliveries,
		m.notifications,
		m.storeLatency,
		m.inboundRateLimited,
	)
	return m
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SetConnections(n int) {
	if m == nil {
		return
	}
	m.connections.Set(float64(n))
}

func (m *Metrics) HandshakeAccepted() {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues("accepted").Inc()
}

func (m *Metrics) HandshakeRejected() {
	if m == nil {
		return
	}
	m.handshakes.WithLabelValues("rejected").Inc()
}

// Broadcast records one channel broadcast and its per-connection outcomes
func (m *Metrics) Broadcast(event string, delivered, failed int) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(event).Inc()
	m.deliveries.WithLabelValues("ok").Add(float64(delivered))
	m.deliveries.WithLabelValues("failed").Add(float64(failed))
}

func (m *Metrics) NotificationDelivered() {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues("delivered").Inc()
}

func (m *Metrics) NotificationDropped() {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues("dropped").Inc()
}

func (m *Metrics) InboundRateLimited() {
	if m == nil {
		return
	}
	m.inboundRateLimited.Inc()
}

// ObserveStore records how long a store operation took, started at start
func (m *Metrics) ObserveStore(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.storeLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
