// Package heap is the allocation authority of owned handles.
//
// A Slab hands out one slot per value from chunks of []T. The chunks keep
// every issued value reachable for the Go collector even when the only other
// reference to it is a tagged word, and Free returns the slot for reuse.
package heap

import (
	"sync"
	"unsafe"
)

const (
	DefaultChunkSlots = 64
	MaxChunkSlots     = 4096
)

type Stats struct {
	Live     int
	Free     int
	Chunks   int
	Capacity int
}

// Slab is safe for concurrent use. The zero value is ready to use.
type Slab[T any] struct {
	mu     sync.Mutex
	chunks [][]T
	next   int
	free   []*T
	live   int
	slots  int
}

func NewSlab[T any](options ...Option) (s *Slab[T], err error) {
	opts := Options{ChunkSlots: DefaultChunkSlots}
	for _, option := range options {
		if err = option(&opts); err != nil {
			return
		}
	}
	s = &Slab[T]{slots: opts.ChunkSlots}
	return
}

// New moves value into a fresh slot and returns its address.
func (s *Slab[T]) New(value T) (ptr *T) {
	s.mu.Lock()
	if n := len(s.free); n > 0 {
		ptr = s.free[n-1]
		s.free[n-1] = nil
		s.free = s.free[:n-1]
	} else {
		ptr = s.grab()
	}
	s.live++
	s.mu.Unlock()
	*ptr = value
	return
}

func (s *Slab[T]) grab() *T {
	if unsafe.Sizeof(*new(T)) == 0 {
		// every zero-sized value shares one address
		if len(s.chunks) == 0 {
			s.chunks = append(s.chunks, make([]T, 1))
		}
		return &s.chunks[0][0]
	}
	if n := len(s.chunks); n == 0 || s.next == len(s.chunks[n-1]) {
		s.chunks = append(s.chunks, make([]T, s.chunkSlots()))
		s.next = 0
	}
	chunk := s.chunks[len(s.chunks)-1]
	ptr := &chunk[s.next]
	s.next++
	return ptr
}

// chunkSlots doubles with every chunk up to MaxChunkSlots.
func (s *Slab[T]) chunkSlots() int {
	slots := s.slots
	if slots < 1 {
		slots = DefaultChunkSlots
	}
	slots <<= len(s.chunks)
	if slots > MaxChunkSlots || slots <= 0 {
		slots = MaxChunkSlots
	}
	return slots
}

// Free zeroes the slot ptr points to and recycles it. ptr must come from New
// on this slab and must not be freed twice.
func (s *Slab[T]) Free(ptr *T) {
	if ptr == nil {
		return
	}
	var zero T
	*ptr = zero
	s.mu.Lock()
	s.free = append(s.free, ptr)
	s.live--
	s.mu.Unlock()
}

func (s *Slab[T]) Stats() (stats Stats) {
	s.mu.Lock()
	stats.Live = s.live
	stats.Free = len(s.free)
	stats.Chunks = len(s.chunks)
	for _, chunk := range s.chunks {
		stats.Capacity += len(chunk)
	}
	s.mu.Unlock()
	return
}
