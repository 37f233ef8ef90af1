// Package metrics exposes Prometheus counters for the scan path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Scan outcomes used as label values.
const (
	OutcomeConfirmed = "confirmed"
	OutcomeDuplicate = "duplicate"
	OutcomeNotFound  = "not_found"
	OutcomeError     = "error"
)

// Scans counts scan submissions by outcome.
var Scans = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pastoralpass_scans_total",
	Help: "Scan submissions by outcome.",
}, []string{"outcome"})

// StudentsRegistered counts successful student registrations.
var StudentsRegistered = promauto.NewCounter(prometheus.CounterOpts{
	Name: "pastoralpass_students_registered_total",
	Help: "Students registered through the API.",
})

// InsightJobs counts insight jobs by stage.
var InsightJobs = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pastoralpass_insight_jobs_total",
	Help: "Insight jobs by stage (published, processed).",
}, []string{"stage"})
