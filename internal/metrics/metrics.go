package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthdata_runs_enqueued_total",
		Help: "Total number of generation runs placed on the processing queue.",
	})

	RunsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthdata_runs_dropped_total",
		Help: "Total number of generation runs rejected due to a full queue.",
	})

	RunsCompleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synthdata_runs_completed_total",
		Help: "Total number of generation runs finished, labelled by status.",
	}, []string{"status"})

	RowsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synthdata_rows_generated_total",
		Help: "Total number of rows emitted, labelled by table type (fact or dim).",
	}, []string{"table_type"})

	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "synthdata_run_duration_ms",
		Help:    "End-to-end generation latency in milliseconds.",
		Buckets: []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
	})

	QualityScore = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "synthdata_quality_score",
		Help:    "Distribution of data quality scores (0-100).",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	SpecRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "synthdata_spec_requests_total",
		Help: "LLM spec producer calls, labelled by provider and outcome (hit, miss, error).",
	}, []string{"provider", "outcome"})

	RowsPersisted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "synthdata_rows_persisted_total",
		Help: "Total number of rows copied into Postgres.",
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "synthdata_queue_utilization_ratio",
		Help: "Current run queue utilization (0-1).",
	})
)
