package metrics

import (
	"sort"
	"sync"
)

// Registry holds all registered metrics, keyed by name. Metrics are created
// on first access (get-or-create semantics) so callers never need to check
// for nil.
type Registry struct {
	mu         sync.RWMutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram
}

// DefaultRegistry is the process-wide registry used by the pre-defined
// metrics in standard.go.
var DefaultRegistry = NewRegistry()

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
	}
}

// getOrCreate implements the read-locked fast path and the write-locked
// double-checked slow path shared by all metric kinds.
func getOrCreate[M any](r *Registry, m map[string]M, name string, create func(string) M) M {
	r.mu.RLock()
	v, ok := m[name]
	r.mu.RUnlock()
	if ok {
		return v
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok = m[name]; ok {
		return v
	}
	v = create(name)
	m[name] = v
	return v
}

// Counter returns the Counter registered under name, creating it if needed.
func (r *Registry) Counter(name string) *Counter {
	return getOrCreate(r, r.counters, name, NewCounter)
}

// Gauge returns the Gauge registered under name, creating it if needed.
func (r *Registry) Gauge(name string) *Gauge {
	return getOrCreate(r, r.gauges, name, NewGauge)
}

// Histogram returns the Histogram registered under name, creating it if
// needed.
func (r *Registry) Histogram(name string) *Histogram {
	return getOrCreate(r, r.histograms, name, NewHistogram)
}

// Each calls fn for every registered metric in name order. fn receives a
// *Counter, *Gauge or *Histogram.
func (r *Registry) Each(fn func(name string, metric interface{})) {
	r.mu.RLock()
	all := make(map[string]interface{}, len(r.counters)+len(r.gauges)+len(r.histograms))
	for name, c := range r.counters {
		all[name] = c
	}
	for name, g := range r.gauges {
		all[name] = g
	}
	for name, h := range r.histograms {
		all[name] = h
	}
	r.mu.RUnlock()

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fn(name, all[name])
	}
}

// Snapshot returns a point-in-time copy of every metric value in the
// registry: int64 for counters and gauges, HistogramSnapshot for
// histograms.
func (r *Registry) Snapshot() map[string]interface{} {
	snap := make(map[string]interface{})
	r.Each(func(name string, m interface{}) {
		switch m := m.(type) {
		case *Counter:
			snap[name] = m.Value()
		case *Gauge:
			snap[name] = m.Value()
		case *Histogram:
			snap[name] = m.Snapshot()
		}
	})
	return snap
}
