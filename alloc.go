package arena

import (
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

// Allocate carves size bytes aligned to alignment out of the top region.
// alignment must be a power of two; values <= 0 select DefaultAlignment.
//
// If the region cannot fit the request, Allocate returns ErrRegionExhausted
// and the cursor does not move. With no open scope it returns
// ErrNoActiveRegion, or panics when Config.Debug is set.
//
// The returned slice is capped at size, so appending to it never spills into
// a neighbouring allocation. It is valid until the region is popped.
// Memory is zero only because regions start zeroed and are never reused.
func (s *Stack) Allocate(size, alignment int) ([]byte, error) {
	r := s.top()
	if r == nil {
		return nil, s.noActive(size)
	}
	return s.allocateFrom(r, size, alignment)
}

// noActive reports an allocation attempted with no open scope. It panics
// instead when Config.Debug is set.
func (s *Stack) noActive(size int) error {
	err := &Error{Kind: KindNoActiveRegion, Op: "allocate", Size: size}
	if s.cfg.Debug {
		s.fatal(err)
	}
	s.metrics.observeFailure(err.Kind)
	return err
}

func (s *Stack) allocateFrom(r *Region, size, alignment int) ([]byte, error) {
	b, err := r.bump(size, alignment)
	if err != nil {
		s.metrics.observeFailure(KindOf(err))
		return nil, err
	}
	s.metrics.observeAlloc(size)
	return b, nil
}

// Free exists for symmetry with general-purpose allocators. Individual
// allocations are never reclaimed, so it always returns
// ErrUnsupportedOperation and leaves the region untouched.
func (s *Stack) Free([]byte) error {
	return &Error{Kind: KindUnsupportedOperation, Op: "free", Depth: s.Depth()}
}

// Alloc returns a zeroed *T carved from the top region of s. T must not
// contain pointers: region memory is invisible to the garbage collector.
func Alloc[T any](s *Stack) (*T, error) {
	if err := checkPlainOldData[T](); err != nil {
		return nil, err
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		if s.top() == nil {
			return nil, s.noActive(0)
		}
		return new(T), nil
	}
	b, err := s.Allocate(size, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	return (*T)(unsafe.Pointer(unsafe.SliceData(b))), nil
}

// AllocSlice allocates a zeroed slice of n elements of type T.
// Returns nil if n <= 0 and a scope is open.
func AllocSlice[T any](s *Stack, n int) ([]T, error) {
	if s.top() == nil {
		return nil, s.noActive(0)
	}
	if n <= 0 {
		return nil, nil
	}
	if err := checkPlainOldData[T](); err != nil {
		return nil, err
	}
	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	if elemSize == 0 {
		return make([]T, n), nil
	}
	if n > maxInt/elemSize {
		return nil, &Error{Kind: KindInvalidArgument, Op: "allocate", Depth: s.Depth(),
			Err: fmt.Errorf("%d elements of %d bytes overflows int", n, elemSize)}
	}
	b, err := s.Allocate(elemSize*n, int(unsafe.Alignof(zero)))
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// AllocString copies str into the top region and returns the copy.
func AllocString(s *Stack, str string) (string, error) {
	if len(str) == 0 {
		if s.top() == nil {
			return "", s.noActive(0)
		}
		return "", nil
	}
	b, err := s.Allocate(len(str), 1)
	if err != nil {
		return "", err
	}
	copy(b, str)
	return unsafe.String(unsafe.SliceData(b), len(b)), nil
}

var podCache sync.Map // reflect.Type -> error (nil when pointer-free)

func checkPlainOldData[T any]() error {
	ty := reflect.TypeFor[T]()
	if v, ok := podCache.Load(ty); ok {
		if v == nil {
			return nil
		}
		return v.(error)
	}
	var err error
	if problem := pointerProblem(ty); problem != "" {
		err = &Error{Kind: KindUnsupportedOperation, Op: "allocate", Err: fmt.Errorf("%s", problem)}
	}
	podCache.Store(ty, err)
	return err
}

// pointerProblem describes the first pointer found inside ty, or returns ""
// when ty is safe to hide from the garbage collector. Recursion terminates:
// a type can only contain itself through a pointer.
func pointerProblem(ty reflect.Type) string {
	switch ty.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16,
		reflect.Int32, reflect.Int64, reflect.Uint, reflect.Uint8,
		reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return ""
	case reflect.Array:
		if p := pointerProblem(ty.Elem()); p != "" {
			return "array element " + p
		}
		return ""
	case reflect.Struct:
		for i := 0; i < ty.NumField(); i++ {
			f := ty.Field(i)
			if p := pointerProblem(f.Type); p != "" {
				return fmt.Sprintf("struct %s field %q: %s", ty, f.Name, p)
			}
		}
		return ""
	default:
		return fmt.Sprintf("type %s contains pointers", ty)
	}
}
