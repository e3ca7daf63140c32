package metrics

import (
	"sync"
	"sync/atomic"
)

// Registry is a flat set of named counters and gauges rendered as JSON by /metrics.
type Registry struct {
	mu     sync.RWMutex
	values map[string]*atomic.Int64
}

// New pre-registers names so they are reported as zero before first use.
func New(names ...string) *Registry {
	r := &Registry{values: make(map[string]*atomic.Int64, len(names))}
	for _, n := range names {
		r.values[n] = new(atomic.Int64)
	}
	return r
}

func (r *Registry) get(name string) *atomic.Int64 {
	r.mu.RLock()
	v, ok := r.values[name]
	r.mu.RUnlock()
	if ok {
		return v
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok = r.values[name]; !ok {
		v = new(atomic.Int64)
		r.values[name] = v
	}
	return v
}

func (r *Registry) Inc(name string)          { r.get(name).Add(1) }
func (r *Registry) Set(name string, v int64) { r.get(name).Store(v) }
func (r *Registry) Value(name string) int64  { return r.get(name).Load() }

func (r *Registry) Snapshot() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]int64, len(r.values))
	for k, v := range r.values {
		out[k] = v.Load()
	}
	return out
}
