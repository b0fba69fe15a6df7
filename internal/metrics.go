package internal

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records per-operation request counts and latencies.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the client collectors on reg. Registering twice on the
// same registry reuses the collectors already there.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pymments",
		Subsystem: "client",
		Name:      "requests_total",
		Help:      "Requests sent to the comment service, by op, method and outcome.",
	}, []string{"op", "method", "code"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pymments",
		Subsystem: "client",
		Name:      "request_duration_seconds",
		Help:      "Latency of requests sent to the comment service.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})

	if err := reg.Register(requests); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		requests = existing
	}

	if err := reg.Register(duration); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.HistogramVec)
		if !ok {
			return nil, err
		}
		duration = existing
	}

	return &Metrics{requests: requests, duration: duration}, nil
}

func (m *Metrics) observe(op, method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(op, method, code).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}
