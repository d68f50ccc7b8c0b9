// Package metrics exposes Prometheus instrumentation for the tracking engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recomputations counts scheduled ephemeris recomputations per subject.
	Recomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heliograph_recomputations_total",
		Help: "Total number of scheduled subject recomputations.",
	}, []string{"location", "subject"})

	// SolverFailures counts transient solver failures that triggered a retry.
	SolverFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "heliograph_solver_failures_total",
		Help: "Total number of transient solver failures.",
	}, []string{"location", "subject"})

	// TrackedSubjects reports the number of subjects currently tracked.
	TrackedSubjects = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "heliograph_tracked_subjects",
		Help: "Number of subjects currently tracked.",
	})

	// NextDueTimestamp reports the next scheduled recomputation per subject.
	NextDueTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "heliograph_subject_next_due_timestamp_seconds",
		Help: "Unix timestamp of the next scheduled recomputation per subject.",
	}, []string{"location", "subject"})
)
