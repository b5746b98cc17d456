package bridge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	registry *prometheus.Registry
	messages *prometheus.CounterVec
	clients  prometheus.Gauge
}

func newMetrics() *metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &metrics{
		registry: reg,
		messages: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "medic_nui_messages_total",
			Help: "Pushes and actions handled by the bridge.",
		}, []string{"kind", "type", "result"}),
		clients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "medic_nui_overlay_clients",
			Help: "Connected overlay websockets.",
		}),
	}
}

func (m *metrics) observe(kind, typ string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	if typ == "" {
		typ = "unknown"
	}
	m.messages.WithLabelValues(kind, typ, result).Inc()
}
