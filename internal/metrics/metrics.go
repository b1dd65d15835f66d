// Package metrics exposes the Prometheus instruments for the HTTP layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dukahub_http_requests_total",
		Help: "HTTP requests by method, route and status class.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dukahub_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	OrdersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dukahub_orders_created_total",
		Help: "Orders created by sales channel.",
	}, []string{"channel"})

	PaymentsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dukahub_payments_recorded_total",
		Help: "Payments recorded by method slug.",
	}, []string{"method"})

	VariantsGenerated = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dukahub_variants_generated",
		Help:    "Variant count produced per generation request.",
		Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1000},
	})
)
