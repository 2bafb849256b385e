package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	applicationsCreated   prometheus.Counter
	applicationTransition *prometheus.CounterVec
	eligibilityDenials    *prometheus.CounterVec
	resumeUploadRejected  *prometheus.CounterVec
	resumeUploadLatency   prometheus.Histogram
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		applicationsCreated = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "applications_created_total",
			Help: "Total number of referral applications created.",
		})

		applicationTransition = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "application_transitions_total",
			Help: "Total number of application status transitions by target status.",
		}, []string{"status"})

		eligibilityDenials = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "eligibility_denials_total",
			Help: "Total number of eligibility checks that denied an application, by reason.",
		}, []string{"reason"})

		resumeUploadRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "resume_upload_rejected_total",
			Help: "Total number of resume uploads rejected during validation.",
		}, []string{"reason"})

		resumeUploadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "resume_upload_latency_seconds",
			Help:    "Latency distribution for resume uploads.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			applicationsCreated,
			applicationTransition,
			eligibilityDenials,
			resumeUploadRejected,
			resumeUploadLatency,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ApplicationsCreated counts successful applications.
func ApplicationsCreated() prometheus.Counter {
	RegisterMetrics()
	return applicationsCreated
}

// ApplicationTransitions counts committed status changes.
func ApplicationTransitions() *prometheus.CounterVec {
	RegisterMetrics()
	return applicationTransition
}

// EligibilityDenials counts denied eligibility checks.
func EligibilityDenials() *prometheus.CounterVec {
	RegisterMetrics()
	return eligibilityDenials
}

// ResumeUploadRejected counts rejected resume uploads.
func ResumeUploadRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return resumeUploadRejected
}

// ResumeUploadLatency tracks resume upload durations.
func ResumeUploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return resumeUploadLatency
}
