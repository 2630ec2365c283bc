package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_pipeline_runs_total",
			Help: "Pipeline runs by final status",
		},
		[]string{"status"},
	)

	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "digest_pipeline_duration_seconds",
		Help:    "Time spent in a full pipeline run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})

	// Fetch metrics
	ArticlesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_articles_fetched_total",
			Help: "Articles resolved per source",
		},
		[]string{"source"},
	)

	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_fetch_errors_total",
			Help: "Source or entry failures per source",
		},
		[]string{"source"},
	)

	// Model metrics
	ModelFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_model_fallbacks_total",
			Help: "Times a model call failed and the fallback result was used",
		},
		[]string{"stage"},
	)

	// Storage metrics
	SummariesInserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "digest_summaries_inserted_total",
		Help: "New summary records written to durable storage",
	})

	// Graph metrics
	TriplesExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "digest_graph_triples_total",
			Help: "Co-occurrence triples extracted",
		},
		[]string{"scope"},
	)
)
