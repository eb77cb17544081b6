package arena

import (
	"fmt"
	"runtime"
	"testing"
)

func BenchmarkAllocate(b *testing.B) {
	sizes := []int{8, 64, 256, 1024}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("size-%d", size), func(b *testing.B) {
			s := New(WithProvider(HeapProvider{}))
			defer s.Close()
			defer s.Enter(1 << 20)()
			inner := s.Enter(1 << 20)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.Allocate(size, 8); err != nil {
					// Start a fresh inner region once the current one is full.
					inner()
					inner = s.Enter(1 << 20)
				}
			}
			b.StopTimer()
			inner()
		})
	}
}

// BenchmarkRealisticUsage tests request-shaped workloads against the builtin allocator.
func BenchmarkRealisticUsage(b *testing.B) {
	type testStruct struct {
		ID   int64
		Data [56]byte // Total 64 bytes
	}

	b.Run("StructAllocs/OSScope", func(b *testing.B) {
		s := New()
		defer s.Close()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = s.WithScope(64*1024, func(*Region) error {
				for j := 0; j < 50; j++ {
					v, err := Alloc[testStruct](s)
					if err != nil {
						return err
					}
					v.ID = int64(j)
				}
				return nil
			})
		}
	})

	b.Run("StructAllocs/HeapScope", func(b *testing.B) {
		s := New(WithProvider(HeapProvider{}))
		defer s.Close()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = s.WithScope(64*1024, func(*Region) error {
				for j := 0; j < 50; j++ {
					v, err := Alloc[testStruct](s)
					if err != nil {
						return err
					}
					v.ID = int64(j)
				}
				return nil
			})
		}
	})

	b.Run("StructAllocs/Builtin", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			structs := make([]*testStruct, 50)
			for j := 0; j < 50; j++ {
				structs[j] = &testStruct{ID: int64(j)}
			}
			if i%10 == 0 {
				runtime.GC()
			}
		}
	})

	// Nested scratch scopes inside a request scope.
	b.Run("NestedScopes/OSScope", func(b *testing.B) {
		s := New()
		defer s.Close()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = s.WithScope(1<<20, func(*Region) error {
				for j := 0; j < 10; j++ {
					_ = s.WithScope(8*1024, func(*Region) error {
						buf1, _ := s.Allocate(1024, 8)
						buf2, _ := s.Allocate(2048, 8)
						buf3, _ := s.Allocate(512, 8)
						buf1[0], buf2[0], buf3[0] = byte(j), byte(j), byte(j)
						return nil
					})
				}
				return nil
			})
		}
	})

	b.Run("NestedScopes/Builtin", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buffers := make([][]byte, 30)
			for j := 0; j < 10; j++ {
				buffers[j*3] = make([]byte, 1024)
				buffers[j*3+1] = make([]byte, 2048)
				buffers[j*3+2] = make([]byte, 512)
				buffers[j*3][0] = byte(j)
				buffers[j*3+1][0] = byte(j)
				buffers[j*3+2][0] = byte(j)
			}
			if i%5 == 0 {
				runtime.GC()
			}
		}
	})
}
