package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncSOSTriggered("manual")
	m.IncSOSTriggered("manual")
	m.IncSOSTriggered("")
	m.IncSOSDeactivated()
	m.ObserveRequest("POST", "/api/sos/trigger", 200, 20*time.Millisecond)

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := counterValue(mfs, "sos_triggered_total", "trigger_type", "manual")
	require.NoError(t, err)
	assert.Equal(t, float64(2), got)

	got, err = counterValue(mfs, "sos_triggered_total", "trigger_type", "unknown")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	got, err = counterValue(mfs, "sos_deactivated_total", "", "")
	require.NoError(t, err)
	assert.Equal(t, float64(1), got)

	count, err := histogramCount(mfs, "http_request_duration_seconds", "route", "/api/sos/trigger")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncSOSTriggered("manual")
		m.IncSOSDeactivated()
		m.ObserveRequest("GET", "", 404, time.Millisecond)
	})
}

func counterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if label == "" || hasLabel(metric, label, value) {
				return metric.GetCounter().GetValue(), nil
			}
		}
	}
	return 0, fmt.Errorf("counter %s{%s=%q} not found", name, label, value)
}

func histogramCount(mfs []*dto.MetricFamily, name, label, value string) (uint64, error) {
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabel(metric, label, value) {
				return metric.GetHistogram().GetSampleCount(), nil
			}
		}
	}
	return 0, fmt.Errorf("histogram %s{%s=%q} not found", name, label, value)
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, lp := range metric.GetLabel() {
		if lp.GetName() == name && lp.GetValue() == value {
			return true
		}
	}
	return false
}
