package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "attendance_batches_total",
			Help: "Period sheets submitted, by outcome",
		},
		[]string{"outcome"},
	)

	MarksWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_marks_written_total",
			Help: "Attendance marks inserted or overwritten",
		},
	)

	MarksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "attendance_marks_skipped_total",
			Help: "Sheet cells skipped for carrying no present/absent status",
		},
	)

	SummaryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "summary_cache_lookups_total",
			Help: "Attendance summary cache lookups, by result",
		},
		[]string{"result"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// Batch outcomes.
const (
	OutcomeCommitted  = "committed"
	OutcomeRejected   = "rejected"
	OutcomeRolledBack = "rolled_back"
)
