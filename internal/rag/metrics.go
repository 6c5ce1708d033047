package rag

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retrievalCycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lolamo_retrieval_cycle_seconds",
		Help:    "Duration of a full retrieval cycle (search, fetch, chunk, filter, index).",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
	contextQueryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lolamo_context_query_seconds",
		Help:    "Duration of a similarity query against the vector collection.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	fetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lolamo_fetch_failures_total",
		Help: "Pages skipped because of fetch or extraction failures.",
	})
)
