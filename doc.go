// Package arena implements a stack of scoped memory regions with bump
// allocation.
//
// # Overview
//
// A region is one fixed-size block of memory mapped from the operating
// system when a scope opens and unmapped, all at once, when the scope closes.
// Inside the scope, allocations are served by advancing a cursor: O(1), no
// per-object header, no individual free. This suits allocations whose
// lifetime is a well-defined scope:
//
//   - Request-scoped scratch space in servers
//   - Per-frame or per-batch temporary buffers
//   - Keeping short-lived bulk data away from the garbage collector
//
// # Basic Usage
//
//	s := arena.New()
//	defer s.Close()
//
//	err := s.WithScope(64<<10, func(r *arena.Region) error {
//		buf, err := s.Allocate(1024, 8)
//		if err != nil {
//			return err // arena.ErrRegionExhausted: the scope is too small
//		}
//		hdr, err := arena.Alloc[Header](s)
//		...
//	})
//
// The deferred form closes the scope on return:
//
//	defer s.Enter(4096)()
//
// # Stack Discipline
//
// Scopes nest. Only the innermost open region serves allocations; outer
// regions are frozen until the regions above them are popped, and regions are
// popped in exact reverse order. A Stack holds at most Config.MaxDepth
// regions (DefaultMaxDepth, 10).
//
// # Errors
//
// Every failure is an *Error with a Kind. Running out of the region's
// capacity (ErrRegionExhausted) and allocating with no open scope
// (ErrNoActiveRegion) are returned to the caller. Failing to map or unmap
// memory, exceeding the depth bound and popping without a matching push
// leave no safe way to continue and panic with the *Error.
//
// # Goroutines
//
// A Stack is owned by one goroutine and takes no locks. Each goroutine that
// needs scoped allocation creates its own Stack, or carries one in a
// context.Context with NewContext. Passing region memory to another goroutine
// is the caller's responsibility.
//
// # Important Notes
//
//   - Memory handed out by a region is only valid until that region is popped;
//     touching it afterwards faults
//   - Region memory is invisible to the garbage collector, so Alloc and
//     AllocSlice refuse types that contain pointers
//   - Memory is zero because regions start zeroed and nothing is handed out twice
//   - There is no realloc and Free always reports ErrUnsupportedOperation
//
// # Metrics and Monitoring
//
//	st := s.Stats()
//	fmt.Printf("Depth: %d/%d\n", st.Depth, st.MaxDepth)
//	fmt.Printf("Utilization: %.2f%%\n", st.Utilization*100)
//
// NewMetrics exports push, pop and allocation counters to Prometheus.
package arena
