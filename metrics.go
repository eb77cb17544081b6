package arena

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SizeInUse returns the bytes consumed across all live regions, including
// alignment padding.
func (s *Stack) SizeInUse() int {
	sum := 0
	for _, r := range s.entries {
		sum += r.cursor
	}
	return sum
}

// Capacity returns the total capacity of all live regions.
func (s *Stack) Capacity() int {
	sum := 0
	for _, r := range s.entries {
		sum += r.capacity
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if no region is open.
func (s *Stack) Utilization() float64 {
	capacity := s.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(s.SizeInUse()) / float64(capacity)
}

// Stats returns a snapshot of stack statistics.
func (s *Stack) Stats() StackStats {
	st := StackStats{
		Depth:       s.Depth(),
		MaxDepth:    s.MaxDepth(),
		SizeInUse:   s.SizeInUse(),
		Capacity:    s.Capacity(),
		Utilization: s.Utilization(),
		Regions:     make([]RegionStats, 0, len(s.entries)),
	}
	for _, r := range s.entries {
		st.Regions = append(st.Regions, RegionStats{
			Depth:     r.Depth(),
			Capacity:  r.capacity,
			SizeInUse: r.cursor,
			Available: r.Available(),
		})
	}
	return st
}

// StackStats contains statistical information about a stack.
type StackStats struct {
	Depth       int           // Live regions
	MaxDepth    int           // Nesting bound
	SizeInUse   int           // Bytes consumed across live regions
	Capacity    int           // Total capacity in bytes
	Utilization float64       // Ratio of used to total capacity (0.0-1.0)
	Regions     []RegionStats // Outermost first
}

// RegionStats describes one live region.
type RegionStats struct {
	Depth     int
	Capacity  int
	SizeInUse int
	Available int
}

// Metrics exports stack activity to Prometheus. One Metrics may be shared by
// stacks on many goroutines; the collectors are safe for concurrent use.
type Metrics struct {
	pushes         prometheus.Counter
	pops           prometheus.Counter
	allocations    prometheus.Counter
	allocatedBytes prometheus.Counter
	failures       *prometheus.CounterVec
	mappedBytes    prometheus.Gauge
	activeRegions  prometheus.Gauge
}

// NewMetrics creates the arena collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		pushes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "arena_region_pushes_total",
			Help: "Total number of regions opened.",
		}),
		pops: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "arena_region_pops_total",
			Help: "Total number of regions closed.",
		}),
		allocations: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "arena_allocations_total",
			Help: "Total number of successful bump allocations.",
		}),
		allocatedBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "arena_allocated_bytes_total",
			Help: "Total bytes handed out by bump allocations, excluding padding.",
		}),
		failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "arena_failures_total",
			Help: "Total number of failed arena operations by kind.",
		}, []string{"reason"}),
		mappedBytes: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "arena_mapped_bytes",
			Help: "Bytes currently held by open regions.",
		}),
		activeRegions: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "arena_active_regions",
			Help: "Number of currently open regions.",
		}),
	}
}

func (m *Metrics) observePush(size int) {
	if m == nil {
		return
	}
	m.pushes.Inc()
	m.activeRegions.Inc()
	m.mappedBytes.Add(float64(size))
}

func (m *Metrics) observePop(size int) {
	if m == nil {
		return
	}
	m.pops.Inc()
	m.activeRegions.Dec()
	m.mappedBytes.Sub(float64(size))
}

func (m *Metrics) observeAlloc(size int) {
	if m == nil {
		return
	}
	m.allocations.Inc()
	m.allocatedBytes.Add(float64(size))
}

func (m *Metrics) observeFailure(k Kind) {
	if m == nil || k == 0 {
		return
	}
	m.failures.WithLabelValues(k.label()).Inc()
}
