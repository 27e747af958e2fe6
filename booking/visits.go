package booking

import (
	"sync"
	"sync/atomic"
)

// VisitRecorder receives every registered visit, typically a Prometheus
// counter. It sees the route pattern, never the raw path, so its label set
// stays bounded by the number of routes.
type VisitRecorder interface {
	RecordVisit(route string)
}

// VisitCounter counts visits per URL path. It is safe for concurrent use.
type VisitCounter struct {
	counters sync.Map // path -> *atomic.Int64
	recorder VisitRecorder
}

// NewVisitCounter creates a visit counter. recorder may be nil.
func NewVisitCounter(recorder VisitRecorder) *VisitCounter {
	return &VisitCounter{recorder: recorder}
}

// Register counts one visit to path, which was served by route.
func (v *VisitCounter) Register(route, path string) {
	counter, ok := v.counters.Load(path)
	if !ok {
		counter, _ = v.counters.LoadOrStore(path, new(atomic.Int64))
	}
	counter.(*atomic.Int64).Add(1)

	if v.recorder != nil {
		v.recorder.RecordVisit(route)
	}
}

// Count returns the visits to path, zero if never visited.
func (v *VisitCounter) Count(path string) int64 {
	counter, ok := v.counters.Load(path)
	if !ok {
		return 0
	}
	return counter.(*atomic.Int64).Load()
}

// All returns a snapshot of every path and its count.
func (v *VisitCounter) All() map[string]int64 {
	counts := make(map[string]int64)
	v.counters.Range(func(key, value any) bool {
		counts[key.(string)] = value.(*atomic.Int64).Load()
		return true
	})
	return counts
}
