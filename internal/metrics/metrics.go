// Package metrics holds the Prometheus instruments of the form service.
// Collectors are registered with the default registry, which /metrics
// exposes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Submission outcomes
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeFailed   = "failed"
	OutcomeRejected = "rejected"
)

var (
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_form_submissions_total",
			Help: "Form submissions by form and outcome.",
		}, []string{"form", "outcome"})

	ValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_form_validation_failures_total",
			Help: "Field validation errors by form and field.",
		}, []string{"form", "field"})

	ActiveDrafts = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "erp_form_active_drafts",
			Help: "Number of open drafts held in memory.",
		})

	DraftsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "erp_form_drafts_expired_total",
			Help: "Drafts discarded after sitting idle past their TTL.",
		})

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "erp_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
)

func init() {
	prometheus.MustRegister(
		SubmissionsTotal,
		ValidationFailuresTotal,
		ActiveDrafts,
		DraftsExpiredTotal,
		RequestDuration,
	)
}

// RecordValidation counts one failure per field in errs.
func RecordValidation(form string, fields []string) {
	for _, field := range fields {
		ValidationFailuresTotal.WithLabelValues(form, field).Inc()
	}
}
