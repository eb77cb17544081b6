package arena

import (
	"fmt"
	"unsafe"
)

// DefaultAlignment is the alignment used when Allocate is given alignment <= 0.
const DefaultAlignment = int(unsafe.Sizeof(uintptr(0)))

// Region is one fixed-capacity block taken from a Provider, carved by a bump
// cursor. A Region is only valid between the push that created it and the
// matching pop; after that every allocation against it fails.
//
// A Region belongs to the goroutine that owns its Stack. Handing a Region, or
// memory carved from it, to another goroutine is the caller's responsibility.
type Region struct {
	base     []byte // owned block, nil once popped
	cursor   int
	capacity int
	stack    *Stack
	index    int
	metrics  *Metrics // kept after pop
}

// Allocate carves size bytes aligned to alignment out of r. r must be the
// innermost open region of its stack: an outer region is frozen until the
// regions above it are popped.
func (r *Region) Allocate(size, alignment int) ([]byte, error) {
	s := r.stack
	if s == nil {
		r.metrics.observeFailure(KindNoActiveRegion)
		return nil, &Error{Kind: KindNoActiveRegion, Op: "allocate", Size: size}
	}
	if s.top() != r {
		err := &Error{Kind: KindRegionFrozen, Op: "allocate", Depth: r.index + 1, Size: size}
		s.metrics.observeFailure(err.Kind)
		return nil, err
	}
	return s.allocateFrom(r, size, alignment)
}

// Cap returns the fixed capacity of the region in bytes.
func (r *Region) Cap() int { return r.capacity }

// Len returns the cursor offset: the number of bytes consumed, including
// alignment padding.
func (r *Region) Len() int { return r.cursor }

// Available returns the bytes left after the cursor.
func (r *Region) Available() int { return r.capacity - r.cursor }

// Depth returns the 1-based position of r in its stack, or 0 once popped.
func (r *Region) Depth() int {
	if r.stack == nil {
		return 0
	}
	return r.index + 1
}

// Live reports whether r has not been popped yet.
func (r *Region) Live() bool { return r.stack != nil }

// Base returns the address of the first byte of the region, or 0 once popped.
func (r *Region) Base() uintptr {
	if r.base == nil {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(r.base)))
}

// bump advances the cursor. It never moves the cursor on failure.
func (r *Region) bump(size, alignment int) ([]byte, error) {
	if size < 0 {
		return nil, &Error{Kind: KindInvalidArgument, Op: "allocate", Size: size}
	}
	if alignment <= 0 {
		alignment = DefaultAlignment
	}
	if alignment&(alignment-1) != 0 {
		return nil, &Error{Kind: KindInvalidArgument, Op: "allocate", Size: size, Depth: r.index + 1,
			Err: fmt.Errorf("alignment %d is not a power of two", alignment)}
	}

	// Align the address, not the offset, so alignments above the base
	// alignment still hold.
	base := r.Base()
	mask := uintptr(alignment) - 1
	addr := base + uintptr(r.cursor)
	if addr > ^uintptr(0)-mask {
		return nil, &Error{Kind: KindRegionExhausted, Op: "allocate", Depth: r.index + 1, Size: size}
	}
	off := int(alignUp(addr, uintptr(alignment)) - base)
	if off > r.capacity || size > r.capacity-off {
		return nil, &Error{Kind: KindRegionExhausted, Op: "allocate", Depth: r.index + 1, Size: size}
	}
	if size == 0 {
		return r.base[off:off:off], nil
	}

	r.cursor = off + size
	return r.base[off:r.cursor:r.cursor], nil
}

// alignUp rounds off up to a multiple of align, which must be a power of two.
func alignUp(off, align uintptr) uintptr {
	mask := align - 1
	return (off + mask) & ^mask
}
