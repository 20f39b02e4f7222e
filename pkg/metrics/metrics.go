// Package metrics exposes Prometheus counters and histograms for the
// scoring gateway.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal counts completed scans by classification band.
	ScansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "phishguard",
		Name:      "scans_total",
		Help:      "Completed URL scans by classification.",
	}, []string{"classification"})

	// ScanErrors counts rejected inputs.
	ScanErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phishguard",
		Name:      "scan_errors_total",
		Help:      "Scan requests rejected as malformed input.",
	})

	// ScanDuration observes end-to-end scoring latency.
	ScanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "phishguard",
		Name:      "scan_duration_seconds",
		Help:      "End-to-end URL scoring latency.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// ModuleScore observes per-module score distribution, useful for
	// drift monitoring of the analytics-only heuristics.
	ModuleScore = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "phishguard",
		Name:      "module_score",
		Help:      "Per-module risk score distribution.",
		Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
	}, []string{"module"})

	// DegradedScans counts scans served without a loaded classifier.
	DegradedScans = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phishguard",
		Name:      "degraded_scans_total",
		Help:      "Scans scored at neutral probability because no model was loaded.",
	})

	// CacheHits counts verdicts served from the Redis cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "phishguard",
		Name:      "cache_hits_total",
		Help:      "Scan verdicts served from cache.",
	})
)
