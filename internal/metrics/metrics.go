// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics holds the Prometheus instruments used across the service.
// All collectors are registered with the default registry and exposed on
// /metrics by the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Generation outcomes, used as the "outcome" label.
const (
	OutcomeCreated     = "created"
	OutcomeInvalid     = "invalid"
	OutcomeDeclined    = "declined"
	OutcomeDuplicate   = "duplicate"
	OutcomeAIError     = "ai_error"
	OutcomePublishFail = "publish_error"
	OutcomeInternal    = "internal_error"
)

var (
	// Generations counts site generation attempts by outcome.
	Generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brixi",
			Name:      "site_generations_total",
			Help:      "Site generation attempts by outcome.",
		}, []string{"outcome"})

	// StageDuration times the slow pipeline stages (ai, publish, persist).
	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brixi",
			Name:      "stage_duration_seconds",
			Help:      "Duration of site generation stages.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"stage"})

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "brixi",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"method", "route", "status"})

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "brixi",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(
		Generations,
		StageDuration,
		HTTPRequests,
		HTTPDuration,
	)
}
