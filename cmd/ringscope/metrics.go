package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics mirrors ring activity into Prometheus. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	pushes     *prometheus.CounterVec
	pops       *prometheus.CounterVec
	overwrites *prometheus.CounterVec
	length     *prometheus.GaugeVec
	streams    prometheus.Gauge
	dropped    prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ringscope",
			Subsystem: "stream",
			Name:      "pushes_total",
			Help:      "Records pushed into a stream ring, by end.",
		}, []string{"stream", "end"}),
		pops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ringscope",
			Subsystem: "stream",
			Name:      "pops_total",
			Help:      "Records popped from a stream ring, by end.",
		}, []string{"stream", "end"}),
		overwrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ringscope",
			Subsystem: "stream",
			Name:      "overwrites_total",
			Help:      "Pushes that evicted a record because the ring was full.",
		}, []string{"stream"}),
		length: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "ringscope",
			Subsystem: "stream",
			Name:      "length",
			Help:      "Live records in a stream ring.",
		}, []string{"stream"}),
		streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ringscope",
			Name:      "streams",
			Help:      "Number of known streams.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ringscope",
			Subsystem: "broker",
			Name:      "dropped_events_total",
			Help:      "Events not delivered to a subscriber with a full backlog.",
		}),
	}

	for _, c := range []prometheus.Collector{m.pushes, m.pops, m.overwrites, m.length, m.streams, m.dropped} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering ringscope metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) recordPush(stream, end string, overwrote bool, length int) {
	if m == nil {
		return
	}
	m.pushes.WithLabelValues(stream, end).Inc()
	if overwrote {
		m.overwrites.WithLabelValues(stream).Inc()
	}
	m.length.WithLabelValues(stream).Set(float64(length))
}

func (m *Metrics) recordPop(stream, end string, length int) {
	if m == nil {
		return
	}
	m.pops.WithLabelValues(stream, end).Inc()
	m.length.WithLabelValues(stream).Set(float64(length))
}

func (m *Metrics) setLength(stream string, length int) {
	if m == nil {
		return
	}
	m.length.WithLabelValues(stream).Set(float64(length))
}

func (m *Metrics) setStreams(n int) {
	if m == nil {
		return
	}
	m.streams.Set(float64(n))
}

func (m *Metrics) recordDropped(n int) {
	if m == nil || n == 0 {
		return
	}
	m.dropped.Add(float64(n))
}
