package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "transpass"

var (
	// ScansLogged counts scan log attempts by outcome: inserted, refreshed,
	// missing_product or failed.
	ScansLogged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_logged_total",
			Help:      "Scan log attempts by outcome",
		},
		[]string{"outcome"},
	)

	// ProductQueryFallbacks counts how often the product list query had to
	// step down the degradation ladder.
	ProductQueryFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "product_query_fallbacks_total",
			Help:      "Product list queries served by a fallback step",
		},
		[]string{"step"},
	)

	BlobUploadRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blob_upload_retries_total",
			Help:      "Blob uploads retried after a failed attempt",
		},
	)

	AnalyticsDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analytics_build_duration_seconds",
			Help:      "Time spent building a company scan analytics report",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
