package heap_test

import (
	"github.com/brickingsoft/errors"
	"github.com/brickingsoft/tagdispatch/pkg/heap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"runtime"
	"sync"
	"testing"
	"unsafe"
)

type record struct {
	ID   int
	Name string
	Tags []string
}

func TestSlab_New(t *testing.T) {
	var s heap.Slab[record]
	a := s.New(record{ID: 1, Name: "a"})
	b := s.New(record{ID: 2, Name: "b"})
	require.NotSame(t, a, b)
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, "b", b.Name)
	assert.Zero(t, uintptr(unsafe.Pointer(a))%unsafe.Alignof(record{}))

	stats := s.Stats()
	assert.Equal(t, 2, stats.Live)
	assert.Equal(t, 1, stats.Chunks)
	assert.Equal(t, heap.DefaultChunkSlots, stats.Capacity)
}

func TestSlab_Free(t *testing.T) {
	var s heap.Slab[record]
	a := s.New(record{ID: 1, Tags: []string{"x"}})
	s.Free(a)
	assert.Zero(t, *a, "freed slot is zeroed")
	assert.Equal(t, heap.Stats{Live: 0, Free: 1, Chunks: 1, Capacity: heap.DefaultChunkSlots}, s.Stats())

	b := s.New(record{ID: 2})
	assert.Same(t, a, b, "freed slot is reused")
	assert.Equal(t, 1, s.Stats().Live)
	s.Free(nil)
}

func TestSlab_Grow(t *testing.T) {
	s, err := heap.NewSlab[int64](heap.WithChunkSlots(2))
	require.NoError(t, err)
	ptrs := make([]*int64, 0, 7)
	for i := 0; i < 7; i++ {
		ptrs = append(ptrs, s.New(int64(i)))
	}
	// 2 + 4 + 8 slots
	stats := s.Stats()
	assert.Equal(t, 3, stats.Chunks)
	assert.Equal(t, 14, stats.Capacity)
	for i, p := range ptrs {
		assert.Equal(t, int64(i), *p)
	}
}

func TestSlab_KeepsValuesAlive(t *testing.T) {
	var s heap.Slab[record]
	addrs := make([]uintptr, 0, 100)
	for i := 0; i < 100; i++ {
		addrs = append(addrs, uintptr(unsafe.Pointer(s.New(record{ID: i, Name: "n", Tags: make([]string, 16)}))))
	}
	runtime.GC()
	for i, addr := range addrs {
		r := (*record)(unsafe.Pointer(addr))
		assert.Equal(t, i, r.ID)
		assert.Len(t, r.Tags, 16)
	}
	runtime.KeepAlive(&s)
}

func TestSlab_ZeroSized(t *testing.T) {
	var s heap.Slab[struct{}]
	a := s.New(struct{}{})
	b := s.New(struct{}{})
	assert.Equal(t, unsafe.Pointer(a), unsafe.Pointer(b))
	assert.Equal(t, 1, s.Stats().Chunks)
}

func TestSlab_Concurrent(t *testing.T) {
	var s heap.Slab[int]
	wg := new(sync.WaitGroup)
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				p := s.New(g*1000 + i)
				if *p != g*1000+i {
					t.Error("slot shared between goroutines")
				}
				if i%2 == 0 {
					s.Free(p)
				}
			}
		}(g)
	}
	wg.Wait()
	assert.Equal(t, 8*250, s.Stats().Live)
}

func TestWithChunkSlots(t *testing.T) {
	_, err := heap.NewSlab[int](heap.WithChunkSlots(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, heap.ErrInvalidChunkSlots))
}
