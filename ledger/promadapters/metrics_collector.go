package promadapters

import (
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector records durations, counters and values into a Prometheus registry.
type MetricsCollector struct {
	registry *prometheus.Registry

	mu         sync.Mutex
	histograms map[string]*histogramVec
	counters   map[string]*counterVec
	gauges     map[string]*gaugeVec
}

type histogramVec struct {
	vec    *prometheus.HistogramVec
	labels []string
}

type counterVec struct {
	vec    *prometheus.CounterVec
	labels []string
}

type gaugeVec struct {
	vec    *prometheus.GaugeVec
	labels []string
}

// NewMetricsCollector creates a collector that registers its instruments in the given registry.
// A nil registry gets a fresh private one.
func NewMetricsCollector(registry *prometheus.Registry) *MetricsCollector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	return &MetricsCollector{
		registry:   registry,
		histograms: make(map[string]*histogramVec),
		counters:   make(map[string]*counterVec),
		gauges:     make(map[string]*gaugeVec),
	}
}

// Registry exposes the underlying registry, e.g. for Gather in tests.
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordDuration observes a duration in seconds.
func (m *MetricsCollector) RecordDuration(metricName string, duration time.Duration, labels map[string]string) {
	h := m.histogram(metricName, labels)
	h.vec.WithLabelValues(labelValues(h.labels, labels)...).Observe(duration.Seconds())
}

// IncrementCounter adds one to a counter.
func (m *MetricsCollector) IncrementCounter(metricName string, labels map[string]string) {
	c := m.counter(metricName, labels)
	c.vec.WithLabelValues(labelValues(c.labels, labels)...).Inc()
}

// RecordValue sets a gauge.
func (m *MetricsCollector) RecordValue(metricName string, value float64, labels map[string]string) {
	g := m.gauge(metricName, labels)
	g.vec.WithLabelValues(labelValues(g.labels, labels)...).Set(value)
}

func (m *MetricsCollector) histogram(name string, labels map[string]string) *histogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if h, ok := m.histograms[name]; ok {
		return h
	}

	names := labelNames(labels)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    name,
		Help:    help(name),
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, names)
	vec = register(m.registry, vec)

	h := &histogramVec{vec: vec, labels: names}
	m.histograms[name] = h

	return h
}

func (m *MetricsCollector) counter(name string, labels map[string]string) *counterVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.counters[name]; ok {
		return c
	}

	names := labelNames(labels)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{Name: name, Help: help(name)}, names)
	vec = register(m.registry, vec)

	c := &counterVec{vec: vec, labels: names}
	m.counters[name] = c

	return c
}

func (m *MetricsCollector) gauge(name string, labels map[string]string) *gaugeVec {
	m.mu.Lock()
	defer m.mu.Unlock()

	if g, ok := m.gauges[name]; ok {
		return g
	}

	names := labelNames(labels)
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help(name)}, names)
	vec = register(m.registry, vec)

	g := &gaugeVec{vec: vec, labels: names}
	m.gauges[name] = g

	return g
}

// register returns the already registered collector when an equal one exists.
func register[C prometheus.Collector](registry *prometheus.Registry, collector C) C {
	if err := registry.Register(collector); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}

		panic(err)
	}

	return collector
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func labelValues(names []string, labels map[string]string) []string {
	values := make([]string, len(names))
	for i, name := range names {
		values[i] = labels[name]
	}

	return values
}

func help(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
