package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuditsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safeview_audits_processed_total",
		Help: "Total number of audit jobs processed, by status",
	}, []string{"status"})

	AuditDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "safeview_audit_duration_seconds",
		Help:    "Duration of the video audit pipeline",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	FramesScoredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safeview_frames_scored_total",
		Help: "Total number of frames submitted for safe-search scoring",
	})

	FramesFlaggedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safeview_frames_flagged_total",
		Help: "Total number of frames flagged for review",
	})

	ScoringErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "safeview_scoring_errors_total",
		Help: "Total number of frames whose classification failed",
	})

	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "safeview_active_workers",
		Help: "Number of currently active workers running audits",
	})

	RetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "safeview_retry_total",
		Help: "Total number of audit job retries",
	}, []string{"attempt"})
)
