package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEngineMetricsObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEngineMetrics(reg)

	m.ObserveTurn(PathFallback)
	m.ObserveTurn(PathFallback)
	m.ObserveTurn(PathCollaborator)
	m.ObserveRejection("busy")
	m.ObserveCollaborator(false, 250*time.Millisecond)
	m.ObserveCompletion()
	m.ObserveDetection()
	m.SetActiveSessions(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues(PathFallback)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues(PathCollaborator)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejectionsTotal.WithLabelValues("busy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.completionsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.detectionsTotal))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
	assert.Equal(t, 1, testutil.CollectAndCount(m.collaboratorLatency))
}

func TestEngineMetricsNilSafe(t *testing.T) {
	var m *EngineMetrics
	m.ObserveTurn(PathFallback)
	m.ObserveRejection("empty")
	m.ObserveCollaborator(true, time.Second)
	m.ObserveCompletion()
	m.ObserveDetection()
	m.SetActiveSessions(1)
}
