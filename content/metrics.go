package content

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkfeed_content_fetch_total",
		Help: "Requests made to the content API by outcome",
	}, []string{"endpoint", "outcome"})

	fetchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkfeed_content_fetch_duration_seconds",
		Help:    "Latency of content API requests",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms up to ~5s
	}, []string{"endpoint"})
)
