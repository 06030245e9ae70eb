package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Record outcomes per run, labelled stored/duplicate/invalid/failed.
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_etl_records_total",
			Help: "Total number of records processed, by outcome",
		},
		[]string{"outcome"},
	)

	MessageBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "login_etl_message_bytes_total",
			Help: "Total bytes of raw message data dequeued",
		},
	)

	BatchesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "login_etl_batches_fetched_total",
			Help: "Total number of queue fetch batches",
		},
	)

	ProcessDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "login_etl_process_duration_seconds",
			Help:    "Duration of the transform pipeline per record in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "login_etl_run_duration_seconds",
			Help:    "Duration of complete ETL runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)
