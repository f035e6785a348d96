// Package metrics provides Prometheus exporters for application metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine names used as label values.
const (
	EngineAssignment = "assignment"
	EngineScoring    = "scoring"
)

// Prometheus metrics for the design contest.
var (
	// Engine runs.
	AssignmentRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_assignment_runs_total",
			Help: "Total assignment engine executions",
		},
		[]string{"status"},
	)

	AssignmentsCreated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contest_assignments_created",
			Help: "Number of vote assignments written by the last assignment run",
		},
	)

	ScoringRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_scoring_runs_total",
			Help: "Total scoring engine executions",
		},
		[]string{"status"},
	)

	ScoresGenerated = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contest_scores_generated",
			Help: "Number of score rows written by the last scoring run",
		},
	)

	EngineDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contest_engine_duration_seconds",
			Help:    "Time taken by an engine run",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		[]string{"engine"},
	)

	// Orchestrator.
	OrchestratorTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_orchestrator_ticks_total",
			Help: "Total orchestrator ticks by outcome",
		},
		[]string{"outcome"},
	)

	OrchestratorLastTickTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "contest_orchestrator_last_tick_timestamp",
			Help: "Unix timestamp of last orchestrator tick",
		},
	)

	CompetitionPhase = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contest_phase",
			Help: "Current competition phase (1 for the active phase, 0 otherwise)",
		},
		[]string{"phase"},
	)

	// Participant activity.
	VotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_votes_total",
			Help: "Total vote create/update attempts",
		},
		[]string{"action", "status"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contest_submissions_total",
			Help: "Total submission create attempts",
		},
		[]string{"status"},
	)
)

// RecordAssignmentRun records an assignment engine execution.
func RecordAssignmentRun(status string, created int) {
	AssignmentRunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		AssignmentsCreated.Set(float64(created))
	}
}

// RecordScoringRun records a scoring engine execution.
func RecordScoringRun(status string, generated int) {
	ScoringRunsTotal.WithLabelValues(status).Inc()
	if status == "success" {
		ScoresGenerated.Set(float64(generated))
	}
}

// ObserveEngineDuration observes the duration of an engine run.
func ObserveEngineDuration(engine string, seconds float64) {
	EngineDurationSeconds.WithLabelValues(engine).Observe(seconds)
}

// RecordOrchestratorTick records an orchestrator tick.
func RecordOrchestratorTick(outcome string) {
	OrchestratorTicksTotal.WithLabelValues(outcome).Inc()
	OrchestratorLastTickTimestamp.SetToCurrentTime()
}

// SetPhase marks phase as the active one among known.
func SetPhase(phase string, known []string) {
	for _, p := range known {
		CompetitionPhase.WithLabelValues(p).Set(0)
	}
	CompetitionPhase.WithLabelValues(phase).Set(1)
}

// RecordVote records a vote create or update attempt.
func RecordVote(action, status string) {
	VotesTotal.WithLabelValues(action, status).Inc()
}

// RecordSubmission records a submission create attempt.
func RecordSubmission(status string) {
	SubmissionsTotal.WithLabelValues(status).Inc()
}
