// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes Prometheus instrumentation for the gateway.

Collectors live on a [Recorder] bound to one registry, so every server (and
every test) owns its own set. All Record methods are safe on a nil *Recorder,
which lets domain code stay uninstrumented in unit tests.

Exposed series:

  - authgate_registrations_total{result}
  - authgate_login_attempts_total{outcome,reason}
  - authgate_logouts_total
  - authgate_session_resolutions_total{result}
  - authgate_http_request_duration_seconds{method,route,status}
*/
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values shared by the auth counters.
const (
	ResultSuccess       = "success"
	ResultEmailTaken    = "email_taken"
	ResultUsernameTaken = "username_taken"
	ResultError         = "error"

	ResultAuthenticated = "authenticated"
	ResultAnonymous     = "anonymous"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

const namespace = "authgate"

// Recorder owns the gateway collectors and the registry they are exposed from.
type Recorder struct {
	registry *prometheus.Registry

	registrations      *prometheus.CounterVec
	loginAttempts      *prometheus.CounterVec
	logouts            prometheus.Counter
	sessionResolutions *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// New creates a Recorder with a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Recorder {
	registry := prometheus.NewRegistry()

	recorder := &Recorder{
		registry: registry,
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome and failure reason.",
		}, []string{"outcome", "reason"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logouts_total",
			Help:      "Completed logout requests.",
		}),
		sessionResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_resolutions_total",
			Help:      "Per-request session lookups by result.",
		}, []string{"result"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		recorder.registrations,
		recorder.loginAttempts,
		recorder.logouts,
		recorder.sessionResolutions,
		recorder.requestDuration,
	)

	return recorder
}

// Registry returns the registry backing this recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// # Auth Counters

// RecordRegistration counts one registration attempt.
func (r *Recorder) RecordRegistration(result string) {
	if r == nil {
		return
	}
	r.registrations.WithLabelValues(result).Inc()
}

// RecordLogin counts one login attempt. reason is empty for successes.
func (r *Recorder) RecordLogin(outcome, reason string) {
	if r == nil {
		return
	}
	r.loginAttempts.WithLabelValues(outcome, reason).Inc()
}

// RecordLogout counts one logout.
func (r *Recorder) RecordLogout() {
	if r == nil {
		return
	}
	r.logouts.Inc()
}

// RecordSessionResolution counts one per-request session lookup.
func (r *Recorder) RecordSessionResolution(result string) {
	if r == nil {
		return
	}
	r.sessionResolutions.WithLabelValues(result).Inc()
}

// # HTTP Instrumentation

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware observes request latency labelled by the chi route pattern, so
// unmatched paths collapse into a single series.
func (r *Recorder) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if r == nil {
				next.ServeHTTP(writer, request)
				return
			}

			start := time.Now()
			wrapped := &statusWriter{ResponseWriter: writer, status: http.StatusOK}

			next.ServeHTTP(wrapped, request)

			route := "unmatched"
			if routeContext := chi.RouteContext(request.Context()); routeContext != nil {
				if pattern := routeContext.RoutePattern(); pattern != "" {
					route = pattern
				}
			}

			r.requestDuration.
				WithLabelValues(request.Method, route, strconv.Itoa(wrapped.status)).
				Observe(time.Since(start).Seconds())
		})
	}
}
