package arena

import (
	"math/rand"
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateNoActiveRegion(t *testing.T) {
	s, _ := newTestStack(t)

	_, err := s.Allocate(8, 8)
	require.ErrorIs(t, err, ErrNoActiveRegion)
	assert.False(t, KindNoActiveRegion.Fatal())

	_, err = Alloc[int64](s)
	require.ErrorIs(t, err, ErrNoActiveRegion)
}

func TestZeroSizeAllocNoActiveRegion(t *testing.T) {
	tests := []struct {
		name  string
		alloc func(s *Stack) error
	}{
		{"empty struct", func(s *Stack) error { _, err := Alloc[struct{}](s); return err }},
		{"empty slice", func(s *Stack) error { _, err := AllocSlice[int](s, 0); return err }},
		{"empty string", func(s *Stack) error { _, err := AllocString(s, ""); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStack(t)
			require.ErrorIs(t, tt.alloc(s), ErrNoActiveRegion)

			exit := s.Enter(64)
			require.NoError(t, tt.alloc(s))
			assert.Zero(t, s.Active().Len())
			exit()
			require.ErrorIs(t, tt.alloc(s), ErrNoActiveRegion)

			cfg := DefaultConfig()
			cfg.Debug = true
			debug, err := NewStack(cfg, WithProvider(HeapProvider{}))
			require.NoError(t, err)
			assert.Equal(t, KindNoActiveRegion, panicKind(t, func() { _ = tt.alloc(debug) }))
		})
	}
}

func TestAllocateNoActiveRegionDebug(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Debug = true
	s, err := NewStack(cfg, WithProvider(HeapProvider{}))
	require.NoError(t, err)

	assert.Equal(t, KindNoActiveRegion, panicKind(t, func() { _, _ = s.Allocate(8, 8) }))
}

func TestAllocateAfterPopUsesNewTop(t *testing.T) {
	s, _ := newTestStack(t)
	outer := s.mustPush(256)
	inner := s.mustPush(256)

	_, err := s.Allocate(32, 8)
	require.NoError(t, err)
	s.mustPop(inner)

	b, err := s.Allocate(16, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, offsetOf(outer, b))
	assert.Equal(t, 32, inner.Len(), "a popped region keeps its final cursor")

	s.mustPop(outer)
	_, err = s.Allocate(16, 8)
	require.ErrorIs(t, err, ErrNoActiveRegion)
}

func TestAllocateDisjointIncreasing(t *testing.T) {
	s, _ := newTestStack(t)
	rng := rand.New(rand.NewSource(42))

	for round := range 20 {
		err := s.WithScope(8192, func(r *Region) error {
			prevEnd := 0
			for {
				size := rng.Intn(200)
				align := 1 << rng.Intn(7)
				b, err := s.Allocate(size, align)
				if err != nil {
					require.ErrorIs(t, err, ErrRegionExhausted, "round %d", round)
					assert.LessOrEqual(t, r.Len(), r.Cap())
					return nil
				}
				if size == 0 {
					assert.Empty(t, b)
					continue
				}
				off := offsetOf(r, b)
				assert.Zero(t, (r.Base()+uintptr(off))%uintptr(align))
				assert.GreaterOrEqual(t, off, prevEnd, "allocations must not overlap")
				prevEnd = off + size
				assert.Equal(t, prevEnd, r.Len())
			}
		})
		require.NoError(t, err)
	}
}

func TestFreeUnsupported(t *testing.T) {
	s, _ := newTestStack(t)

	err := s.WithScope(128, func(r *Region) error {
		b, err := s.Allocate(64, 8)
		require.NoError(t, err)
		used := r.Len()

		err = s.Free(b)
		require.ErrorIs(t, err, ErrUnsupportedOperation)
		assert.Equal(t, used, r.Len())
		return nil
	})
	require.NoError(t, err)
}

func TestAlloc(t *testing.T) {
	type point struct {
		X, Y int32
		Tag  [3]byte
	}

	s, _ := newTestStack(t)
	defer s.Enter(1024)()

	p, err := Alloc[point](s)
	require.NoError(t, err)
	assert.Equal(t, point{}, *p)
	p.X, p.Y = 3, 4
	assert.Zero(t, uintptr(unsafe.Pointer(p))%unsafe.Alignof(*p))

	i8, err := Alloc[int8](s)
	require.NoError(t, err)
	i64, err := Alloc[int64](s)
	require.NoError(t, err)
	*i8, *i64 = -1, 1<<40
	assert.Zero(t, uintptr(unsafe.Pointer(i64))%8)
	assert.Equal(t, point{X: 3, Y: 4}, *p)

	empty, err := Alloc[struct{}](s)
	require.NoError(t, err)
	assert.NotNil(t, empty)
}

func TestAllocSlice(t *testing.T) {
	s, _ := newTestStack(t)
	defer s.Enter(1024)()

	xs, err := AllocSlice[uint32](s, 10)
	require.NoError(t, err)
	require.Len(t, xs, 10)
	for i := range xs {
		assert.Zero(t, xs[i])
		xs[i] = uint32(i * i)
	}
	assert.Equal(t, uint32(81), xs[9])

	none, err := AllocSlice[uint32](s, 0)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = AllocSlice[uint64](s, 1000)
	require.ErrorIs(t, err, ErrRegionExhausted)

	_, err = AllocSlice[uint64](s, maxInt/4)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAllocString(t *testing.T) {
	s, _ := newTestStack(t)
	defer s.Enter(64)()

	src := []byte("hello, arena")
	str, err := AllocString(s, string(src))
	require.NoError(t, err)
	src[0] = 'j'
	assert.Equal(t, "hello, arena", str)

	empty, err := AllocString(s, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAllocRejectsPointers(t *testing.T) {
	type withSlice struct {
		N    int
		Data []byte
	}
	type nested struct {
		Inner [2]withSlice
	}

	s, _ := newTestStack(t)
	defer s.Enter(1024)()

	tests := []struct {
		name  string
		alloc func() error
	}{
		{"pointer", func() error { _, err := Alloc[*int](s); return err }},
		{"string", func() error { _, err := Alloc[string](s); return err }},
		{"map", func() error { _, err := Alloc[map[int]int](s); return err }},
		{"struct with slice", func() error { _, err := Alloc[withSlice](s); return err }},
		{"nested array", func() error { _, err := Alloc[nested](s); return err }},
		{"slice of interfaces", func() error { _, err := AllocSlice[any](s, 4); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.alloc()
			require.ErrorIs(t, err, ErrUnsupportedOperation)
			assert.Contains(t, err.Error(), "contains pointers")
		})
	}
	assert.Zero(t, s.Active().Len())
}

func TestPointerProblem(t *testing.T) {
	type ok struct {
		A int64
		B [4]float32
		C struct{ D uint8 }
	}
	type bad struct {
		A int64
		B *ok
	}

	assert.Empty(t, pointerProblem(reflect.TypeFor[ok]()))
	assert.Empty(t, pointerProblem(reflect.TypeFor[[8]complex128]()))
	assert.Contains(t, pointerProblem(reflect.TypeFor[bad]()), `field "B"`)
	assert.Contains(t, pointerProblem(reflect.TypeFor[[2]string]()), "array element")
}
