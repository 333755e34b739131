package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	requestDuration *prometheus.HistogramVec
	sosTriggered    *prometheus.CounterVec
	sosDeactivated  prometheus.Counter
}

// New registers the service collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	sosTriggered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sos_triggered_total",
		Help: "SOS events triggered.",
	}, []string{"trigger_type"})
	sosDeactivated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sos_deactivated_total",
		Help: "SOS deactivation requests that succeeded.",
	})
	reg.MustRegister(requestDuration, sosTriggered, sosDeactivated)
	return &Metrics{
		requestDuration: requestDuration,
		sosTriggered:    sosTriggered,
		sosDeactivated:  sosDeactivated,
	}
}

func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

func (m *Metrics) IncSOSTriggered(triggerType string) {
	if m == nil || m.sosTriggered == nil {
		return
	}
	if triggerType == "" {
		triggerType = "unknown"
	}
	m.sosTriggered.WithLabelValues(triggerType).Inc()
}

func (m *Metrics) IncSOSDeactivated() {
	if m == nil || m.sosDeactivated == nil {
		return
	}
	m.sosDeactivated.Inc()
}
