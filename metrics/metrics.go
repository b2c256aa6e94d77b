// Package metrics provides the counters, gauges and histograms recorded by
// the receipt codec and store. Metrics live in a Registry and are exported
// to Prometheus through a collector bridge.
package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// named carries the registry name of a metric.
type named struct{ name string }

// Name returns the metric name.
func (n named) Name() string { return n.name }

// Counter only grows.
type Counter struct {
	named
	n atomic.Int64
}

func NewCounter(name string) *Counter { return &Counter{named: named{name}} }

func (c *Counter) Inc() { c.n.Add(1) }

// Add grows the counter by delta. Non-positive deltas are dropped.
func (c *Counter) Add(delta int64) {
	if delta > 0 {
		c.n.Add(delta)
	}
}

func (c *Counter) Value() int64 { return c.n.Load() }

// Gauge holds a value that moves both ways, such as a table size.
type Gauge struct {
	named
	v atomic.Int64
}

func NewGauge(name string) *Gauge { return &Gauge{named: named{name}} }

func (g *Gauge) Set(v int64)     { g.v.Store(v) }
func (g *Gauge) Add(delta int64) { g.v.Add(delta) }
func (g *Gauge) Inc()            { g.v.Add(1) }
func (g *Gauge) Dec()            { g.v.Add(-1) }
func (g *Gauge) Value() int64    { return g.v.Load() }

// HistogramSnapshot summarizes the observations of a Histogram.
type HistogramSnapshot struct {
	Count    int64
	Sum      float64
	Min, Max float64
}

// Mean returns Sum/Count, or 0 without observations.
func (s HistogramSnapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// observe folds v into s.
func (s HistogramSnapshot) observe(v float64) HistogramSnapshot {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Count++
	s.Sum += v
	return s
}

// Histogram keeps count, sum and extremes of observed values. Buckets are
// not tracked; the Prometheus bridge exports it as a summary.
type Histogram struct {
	named
	mu   sync.Mutex
	snap HistogramSnapshot
}

func NewHistogram(name string) *Histogram { return &Histogram{named: named{name}} }

// Observe records v.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	h.snap = h.snap.observe(v)
	h.mu.Unlock()
}

// Snapshot returns the current summary. It is the zero value before the
// first observation.
func (h *Histogram) Snapshot() HistogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snap
}

func (h *Histogram) Count() int64  { return h.Snapshot().Count }
func (h *Histogram) Mean() float64 { return h.Snapshot().Mean() }

// Timer measures one operation and records its duration in microseconds.
//
//	defer metrics.NewTimer(h).Stop()
type Timer struct {
	begin time.Time
	into  *Histogram
}

// NewTimer starts timing. h may be nil, in which case Stop only measures.
func NewTimer(h *Histogram) *Timer {
	return &Timer{begin: time.Now(), into: h}
}

// Stop returns the elapsed time and records it.
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.begin)
	if t.into != nil {
		t.into.Observe(float64(elapsed.Microseconds()))
	}
	return elapsed
}
