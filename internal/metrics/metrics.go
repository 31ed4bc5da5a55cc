// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package metrics provides Prometheus metric collection and exposition.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector gathers service metrics into a Prometheus registry.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	postsCreated   prometheus.Counter
	postsPublished prometheus.Counter
	postsDeleted   prometheus.Counter
	imagesUploaded prometheus.Counter
	auditsRun      prometheus.Counter
}

// NewCollector creates a Collector with its own registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weforward_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weforward_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		postsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weforward_posts_created_total",
			Help: "Blog posts created.",
		}),
		postsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weforward_posts_published_total",
			Help: "Blog posts published (first publication only).",
		}),
		postsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weforward_posts_deleted_total",
			Help: "Blog posts deleted.",
		}),
		imagesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weforward_images_uploaded_total",
			Help: "Images accepted by the media store.",
		}),
		auditsRun: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weforward_seo_audits_total",
			Help: "SEO audits computed.",
		}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.postsCreated,
		c.postsPublished,
		c.postsDeleted,
		c.imagesUploaded,
		c.auditsRun,
	)

	return c
}

// RecordPostCreated increments the created-posts counter.
func (c *Collector) RecordPostCreated() { c.postsCreated.Inc() }

// RecordPostPublished increments the published-posts counter.
func (c *Collector) RecordPostPublished() { c.postsPublished.Inc() }

// RecordPostDeleted increments the deleted-posts counter.
func (c *Collector) RecordPostDeleted() { c.postsDeleted.Inc() }

// RecordImageUploaded increments the uploaded-images counter.
func (c *Collector) RecordImageUploaded() { c.imagesUploaded.Inc() }

// RecordAudit increments the SEO audit counter.
func (c *Collector) RecordAudit() { c.auditsRun.Inc() }

// Handler returns the /metrics exposition handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Middleware instruments HTTP handlers with request count and latency.
// The route label uses the registered pattern, not the raw URL, to keep
// cardinality bounded.
func (c *Collector) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			c.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
			c.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		})
	}
}
