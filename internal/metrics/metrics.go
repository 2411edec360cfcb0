// Package metrics exposes the engine's Prometheus instrumentation,
// grounded on the teacher's prometheus/client_golang usage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// JobsTotal counts jobs reaching each terminal status.
var JobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "verify_jobs_total",
	Help: "Verification jobs reaching a terminal status, labeled by status.",
}, []string{"status"})

// VerificationLevel counts results by the level they were awarded.
var VerificationLevel = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "verify_results_level_total",
	Help: "Verification results, labeled by the awarded verification level.",
}, []string{"level"})

// SandboxDuration observes wall-clock execution time inside the sandbox.
var SandboxDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "verify_sandbox_duration_seconds",
	Help:    "Sandbox execution wall-clock time in seconds, labeled by runner kind.",
	Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
}, []string{"runner_kind"})

// QueueDepth reports how many jobs the most recent recent-jobs listing
// returned (at most that listing's limit).
var QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "verify_queue_index_depth",
	Help: "Number of jobs returned by the most recent recent-jobs listing, capped by its limit.",
})
