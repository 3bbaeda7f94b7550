// Package metrics exposes Prometheus instruments for the investigation engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Turn paths.
const (
	PathCollaborator = "collaborator"
	PathFallback     = "fallback"
)

// EngineMetrics counts turns, rejections, detections and collaborator latency.
type EngineMetrics struct {
	turnsTotal          *prometheus.CounterVec
	rejectionsTotal     *prometheus.CounterVec
	collaboratorLatency *prometheus.HistogramVec
	completionsTotal    prometheus.Counter
	detectionsTotal     prometheus.Counter
	activeSessions      prometheus.Gauge
}

// NewEngineMetrics registers the engine collectors with reg, or with the
// default registerer when reg is nil.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	m := &EngineMetrics{
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scamdex",
			Subsystem: "engine",
			Name:      "turns_total",
			Help:      "Accepted counterparty turns by reply path",
		}, []string{"path"}),
		rejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scamdex",
			Subsystem: "engine",
			Name:      "rejections_total",
			Help:      "Rejected submissions by reason",
		}, []string{"reason"}),
		collaboratorLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "scamdex",
			Subsystem: "collaborator",
			Name:      "latency_seconds",
			Help:      "Latency of collaborator calls",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		completionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scamdex",
			Subsystem: "engine",
			Name:      "completions_total",
			Help:      "Sessions that reached the result view",
		}),
		detectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "scamdex",
			Subsystem: "engine",
			Name:      "detections_total",
			Help:      "Sessions whose scam flag turned true",
		}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "scamdex",
			Subsystem: "engine",
			Name:      "active_sessions",
			Help:      "Sessions held in memory",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.turnsTotal, m.rejectionsTotal, m.collaboratorLatency,
		m.completionsTotal, m.detectionsTotal, m.activeSessions)
	return m
}

// ObserveTurn counts an accepted turn on the given reply path.
func (m *EngineMetrics) ObserveTurn(path string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(path).Inc()
}

// ObserveRejection counts a submission rejected for reason.
func (m *EngineMetrics) ObserveRejection(reason string) {
	if m == nil {
		return
	}
	m.rejectionsTotal.WithLabelValues(reason).Inc()
}

// ObserveCollaborator records the latency of one collaborator call.
func (m *EngineMetrics) ObserveCollaborator(ok bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.collaboratorLatency.WithLabelValues(outcome).Observe(d.Seconds())
}

// ObserveCompletion counts a session entering result mode.
func (m *EngineMetrics) ObserveCompletion() {
	if m == nil {
		return
	}
	m.completionsTotal.Inc()
}

// ObserveDetection counts a session whose scam flag turned true.
func (m *EngineMetrics) ObserveDetection() {
	if m == nil {
		return
	}
	m.detectionsTotal.Inc()
}

// SetActiveSessions reports the number of live sessions.
func (m *EngineMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}
