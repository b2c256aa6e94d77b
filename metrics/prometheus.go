package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusConfig configures the Prometheus exposition of a Registry.
type PrometheusConfig struct {
	// Namespace is prepended to all metric names
	// (e.g. "receiptcodec" produces "receiptcodec_rlp_receipts_encoded").
	Namespace string
	// EnableRuntime adds the Go runtime collector (goroutines, memory, GC).
	EnableRuntime bool
}

// DefaultPrometheusConfig returns the configuration used by the CLI.
func DefaultPrometheusConfig() PrometheusConfig {
	return PrometheusConfig{Namespace: "receiptcodec", EnableRuntime: true}
}

var nameReplacer = strings.NewReplacer(".", "_", "-", "_", "/", "_")

// PrometheusName converts a registry metric name into a valid Prometheus
// metric name under namespace.
func PrometheusName(namespace, name string) string {
	name = nameReplacer.Replace(name)
	if namespace == "" {
		return name
	}
	return namespace + "_" + name
}

// Collector exposes a Registry as a prometheus.Collector. The metric set
// is only known at scrape time, so the collector is unchecked.
type Collector struct {
	registry  *Registry
	namespace string
}

// NewCollector returns a collector over r.
func NewCollector(r *Registry, namespace string) *Collector {
	return &Collector{registry: r, namespace: namespace}
}

// Describe implements prometheus.Collector. It sends no descriptors.
func (c *Collector) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector. Counters and gauges map to
// their Prometheus kinds; histograms are exported as summaries without
// quantiles.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.registry.Each(func(name string, m interface{}) {
		desc := prometheus.NewDesc(PrometheusName(c.namespace, name), name, nil, nil)
		switch m := m.(type) {
		case *Counter:
			ch <- prometheus.MustNewConstMetric(desc, prometheus.CounterValue, float64(m.Value()))
		case *Gauge:
			ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, float64(m.Value()))
		case *Histogram:
			s := m.Snapshot()
			ch <- prometheus.MustNewConstSummary(desc, uint64(s.Count), s.Sum, nil)
		}
	})
}

// NewPrometheusRegistry returns a Prometheus registry serving r.
func NewPrometheusRegistry(r *Registry, cfg PrometheusConfig) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(r, cfg.Namespace))
	if cfg.EnableRuntime {
		reg.MustRegister(collectors.NewGoCollector())
	}
	return reg
}

// Handler returns an HTTP handler serving r in the Prometheus text format.
func Handler(r *Registry, cfg PrometheusConfig) http.Handler {
	return promhttp.HandlerFor(NewPrometheusRegistry(r, cfg), promhttp.HandlerOpts{})
}
