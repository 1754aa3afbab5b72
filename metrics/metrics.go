// Package metrics holds the Prometheus collectors the service exports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

type Metrics struct {
	Registry *prometheus.Registry

	ClockEvents      *prometheus.CounterVec
	PaychecksSaved   *prometheus.CounterVec
	PresenceScans    *prometheus.CounterVec
	PresenceSessions prometheus.Gauge
}

// New registers every collector on a fresh registry, so tests can build as
// many instances as they like.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ClockEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timetracking",
			Name:      "clock_events_total",
			Help:      "Clock in and out events by source and action.",
		}, []string{"source", "action"}),
		PaychecksSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timetracking",
			Name:      "paychecks_saved_total",
			Help:      "Paychecks written, by status.",
		}, []string{"status"}),
		PresenceScans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timetracking",
			Name:      "presence_scans_total",
			Help:      "Network presence scans by result.",
		}, []string{"result"}),
		PresenceSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "timetracking",
			Name:      "presence_open_sessions",
			Help:      "Tracked users present on the network after the last scan.",
		}),
	}
	m.Registry.MustRegister(
		m.ClockEvents,
		m.PaychecksSaved,
		m.PresenceScans,
		m.PresenceSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Clock counts a check in or check out. Safe on a nil receiver.
func (m *Metrics) Clock(source, action string) {
	if m == nil {
		return
	}
	m.ClockEvents.WithLabelValues(source, action).Inc()
}

func (m *Metrics) PaycheckSaved(status string) {
	if m == nil {
		return
	}
	m.PaychecksSaved.WithLabelValues(status).Inc()
}

func (m *Metrics) Scan(result string, present int) {
	if m == nil {
		return
	}
	m.PresenceScans.WithLabelValues(result).Inc()
	if result == "ok" {
		m.PresenceSessions.Set(float64(present))
	}
}
