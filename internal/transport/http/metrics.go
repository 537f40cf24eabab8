package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts pipeline traffic. A nil *Metrics records nothing.
type Metrics struct {
	Requests    *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Renewals    *prometheus.CounterVec
	SessionLost prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyhub_client_requests_total",
				Help: "Total number of API requests issued by the client",
			},
			[]string{"method", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "studyhub_client_request_duration_seconds",
				Help:    "Duration of API requests",
				Buckets: []float64{0.1, 0.5, 1, 2, 5},
			},
			[]string{"method"},
		),
		Renewals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "studyhub_client_session_renewals_total",
				Help: "Session renewal attempts by outcome",
			},
			[]string{"outcome"},
		),
		SessionLost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "studyhub_client_session_lost_total",
			Help: "Sessions dropped after a failed renewal",
		}),
	}
	reg.MustRegister(m.Requests, m.Duration, m.Renewals, m.SessionLost)
	return m
}

func (m *Metrics) observe(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.Requests.WithLabelValues(method, label).Inc()
	m.Duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) renewal(outcome string) {
	if m == nil {
		return
	}
	m.Renewals.WithLabelValues(outcome).Inc()
	if outcome == "failed" {
		m.SessionLost.Inc()
	}
}
