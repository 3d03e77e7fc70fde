// Copyright (c) 2026 Lexica. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics exposes the Prometheus collectors of the Lexica server.

Every collector is registered on a private [prometheus.Registry] owned by
[Metrics], so tests can build as many instances as they like without
tripping over duplicate registration on the global default registry.
*/
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lexica"

// Registration outcomes recorded by [CorpusMetrics.RecordRegistration].
const (
	OutcomeSuccess         = "success"
	OutcomeInvalid         = "invalid"
	OutcomeConversionError = "conversion_error"
	OutcomeConflict        = "conflict"
	OutcomeError           = "error"
)

// # Registry

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	HTTP     *HTTPMetrics
	Corpus   *CorpusMetrics
}

// New creates a registry with the process and Go runtime collectors plus the
// application collectors.
func New() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, fmt.Errorf("metrics: failed to register go collector: %w", err)
	}
	if err := registry.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, fmt.Errorf("metrics: failed to register process collector: %w", err)
	}

	httpMetrics, err := NewHTTPMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to create HTTP metrics: %w", err)
	}

	corpusMetrics, err := NewCorpusMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("metrics: failed to create corpus metrics: %w", err)
	}

	return &Metrics{registry: registry, HTTP: httpMetrics, Corpus: corpusMetrics}, nil
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// # HTTP

// HTTPMetrics counts requests and observes their latency, labelled by the
// matched route pattern rather than the raw path to keep cardinality bounded.
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics creates and registers the HTTP collectors.
func NewHTTPMetrics(registry prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time taken for HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements [prometheus.Collector].
func (m *HTTPMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.requestsTotal.Describe(ch)
	m.requestDuration.Describe(ch)
}

// Collect implements [prometheus.Collector].
func (m *HTTPMetrics) Collect(ch chan<- prometheus.Metric) {
	m.requestsTotal.Collect(ch)
	m.requestDuration.Collect(ch)
}

// ObserveRequest records one finished request.
func (m *HTTPMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// # Corpus

// CorpusMetrics tracks corpus registrations.
type CorpusMetrics struct {
	registrationsTotal *prometheus.CounterVec
	tokensImported     prometheus.Counter
}

// NewCorpusMetrics creates and registers the corpus collectors.
func NewCorpusMetrics(registry prometheus.Registerer) (*CorpusMetrics, error) {
	m := &CorpusMetrics{
		registrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "corpus_registrations_total",
				Help:      "Corpus registration attempts by outcome",
			},
			[]string{"outcome"}, // success, invalid, conversion_error, conflict, error
		),
		tokensImported: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "corpus_tokens_imported_total",
				Help:      "Word tokens written by successful registrations",
			},
		),
	}

	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements [prometheus.Collector].
func (m *CorpusMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.registrationsTotal.Describe(ch)
	m.tokensImported.Describe(ch)
}

// Collect implements [prometheus.Collector].
func (m *CorpusMetrics) Collect(ch chan<- prometheus.Metric) {
	m.registrationsTotal.Collect(ch)
	m.tokensImported.Collect(ch)
}

// RecordRegistration counts one registration attempt. tokens is only added
// for successful ones.
func (m *CorpusMetrics) RecordRegistration(outcome string, tokens int) {
	m.registrationsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess && tokens > 0 {
		m.tokensImported.Add(float64(tokens))
	}
}
