package recurring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection stages.
const (
	stageGroupSize  = "group_size"
	stageSegment    = "segment"
	stageCluster    = "cluster"
	stageCadence    = "cadence"
	stageValidation = "validation"
	stageVariable   = "variable"
	stageScore      = "score"
	stageRecency    = "recency"
)

// Persistence outcomes.
const (
	outcomeSaved   = "saved"
	outcomeSkipped = "skipped"
	outcomeError   = "error"
)

var (
	candidateRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spice_recurring_candidate_rejections_total",
		Help: "Candidates dropped by the detection pipeline, by stage",
	}, []string{"stage"})

	patternsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spice_recurring_patterns_detected_total",
		Help: "Recurring patterns emitted, by frequency and detector",
	}, []string{"frequency", "source"})

	persistOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spice_recurring_persist_outcomes_total",
		Help: "Pattern persistence outcomes",
	}, []string{"outcome"})

	detectionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spice_recurring_detection_duration_seconds",
		Help:    "Wall time of a detection batch",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

func reject(stage string) {
	candidateRejections.WithLabelValues(stage).Inc()
}
