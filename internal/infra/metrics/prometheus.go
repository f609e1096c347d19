package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type PrometheusRecorder struct {
	verifications *prometheus.CounterVec
	latency       prometheus.Histogram
}

func NewPrometheusRecorder() *PrometheusRecorder {
	verifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "attestd",
			Name:      "verifications_total",
			Help:      "Attestation verification outcomes",
		},
		[]string{"outcome"},
	)

	latency := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "attestd",
			Name:      "verify_latency_seconds",
			Help:      "Verification pipeline latency",
			Buckets:   prometheus.DefBuckets,
		},
	)

	prometheus.MustRegister(verifications, latency)

	return &PrometheusRecorder{
		verifications: verifications,
		latency:       latency,
	}
}

func (p *PrometheusRecorder) IncVerification(outcome string) {
	p.verifications.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveVerifyLatency(d time.Duration) {
	p.latency.Observe(d.Seconds())
}
