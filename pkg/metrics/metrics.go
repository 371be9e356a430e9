package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EntryUpserts counts PUT /entries writes by result (created|updated|error).
	EntryUpserts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entrybox_entries_upserts_total",
			Help: "Total number of entry upserts",
		},
		[]string{"result"},
	)

	MessagesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "entrybox_messages_created_total",
			Help: "Total number of messages created",
		},
	)

	MessagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "entrybox_messages_deleted_total",
			Help: "Total number of messages removed by bulk delete",
		},
	)

	// TableRows is refreshed by the stats collector.
	TableRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "entrybox_table_rows",
			Help: "Number of rows per managed table",
		},
		[]string{"table"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "entrybox_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
