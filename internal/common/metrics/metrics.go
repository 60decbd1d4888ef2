// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_messages_total",
			Help: "Total number of chat messages handled, by classified intent",
		},
		[]string{"intent", "source"},
	)

	ContextLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_context_lookups_total",
			Help: "Context assembler data lookups by intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	GenerationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_generation_failures_total",
			Help: "Replies that fell back to the apology message",
		},
	)

	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatbot_generation_duration_seconds",
			Help:    "Latency of chat completion calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	IntentHintAgreementTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_intent_hint_agreement_total",
			Help: "Whether the LLM intent hint agreed with the keyword router",
		},
		[]string{"agree"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_cache_requests_total",
			Help: "Read-through cache lookups by key kind and result",
		},
		[]string{"kind", "result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_http_requests_total",
			Help: "HTTP API requests by route and status code",
		},
		[]string{"route", "method", "status"},
	)

	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
