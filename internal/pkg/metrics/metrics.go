package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbgate_scans_total",
		Help: "The total number of opportunity scans served",
	}, []string{"kind"})

	IntentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbgate_intents_total",
		Help: "Trade intents processed, by operation and outcome",
	}, []string{"operation", "outcome"})

	KillSwitchBlocks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbgate_killswitch_blocks_total",
		Help: "Intent creations blocked by an active kill switch",
	})

	RateLimitRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "arbgate_ratelimit_rejects_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"class"})

	AuditDrops = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arbgate_audit_drops_total",
		Help: "Audit events dropped because the buffer was full",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arbgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
