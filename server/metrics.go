package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkfeed_stub_requests_total",
		Help: "Requests served by the content API stub",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkfeed_stub_request_duration_seconds",
		Help:    "Latency of requests served by the content API stub",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
