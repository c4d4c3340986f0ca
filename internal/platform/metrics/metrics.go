// Package metrics concentra los collectors de Prometheus del servicio.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "meds"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	DosesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "doses_recorded_total",
		Help:      "Dose activity rows written, by outcome (taken, missed, rejected).",
	}, []string{"outcome"})

	AdherenceComputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "adherence",
		Name:      "computations_total",
		Help:      "Adherence metric computations by result.",
	}, []string{"result"})

	AdherenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "adherence",
		Name:      "computation_duration_seconds",
		Help:      "Time spent loading and aggregating a patient's history.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	OverallRate = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "adherence",
		Name:      "overall_rate",
		Help:      "Distribution of computed overall adherence rates (0-100).",
		Buckets:   prometheus.LinearBuckets(10, 10, 10),
	})

	DigestRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "digest",
		Name:      "runs_total",
		Help:      "Daily adherence digest runs by result.",
	}, []string{"result"})

	PatientsAtRisk = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "digest",
		Name:      "patients_at_risk",
		Help:      "Patients below the adherent threshold on the last completed day.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
