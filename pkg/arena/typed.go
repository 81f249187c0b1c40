package arena

import "unsafe"

// Typed is a chunked arena for values of one type. Chunks are []T, so the
// collector traces pointers held by the values. The zero value is ready to use.
//
// Once it holds a chunk the arena stays reachable until Clear, even if every
// reference to it is dropped.
type Typed[T any] struct {
	chunks [][]T
	next   int
	slots  int
}

func NewTyped[T any](options ...Option) (a *Typed[T], err error) {
	opts := defaultOptions()
	for _, option := range options {
		if err = option(&opts); err != nil {
			return
		}
	}
	a = &Typed[T]{slots: opts.ChunkSlots}
	return
}

// New moves value into the arena and returns its address.
func (a *Typed[T]) New(value T) (ptr *T) {
	n := len(a.chunks)
	if n == 0 || a.next == len(a.chunks[n-1]) {
		if n == 0 {
			pin(a)
		}
		a.chunks = append(a.chunks, make([]T, a.chunkSlots()))
		a.next = 0
		n++
	}
	ptr = &a.chunks[n-1][a.next]
	a.next++
	*ptr = value
	return
}

func (a *Typed[T]) chunkSlots() int {
	slots := a.slots
	if slots < 1 {
		slots = DefaultChunkSlots
	}
	slots <<= len(a.chunks)
	if slots > MaxChunkSlots || slots <= 0 {
		slots = MaxChunkSlots
	}
	return slots
}

// Len returns the number of values allocated since the last reset.
func (a *Typed[T]) Len() (n int) {
	for i, chunk := range a.chunks {
		if i == len(a.chunks)-1 {
			n += a.next
			break
		}
		n += len(chunk)
	}
	return
}

// Reset zeroes every value, keeps the largest chunk and rewinds. Addresses
// handed out before the reset now alias future values.
func (a *Typed[T]) Reset() {
	if len(a.chunks) == 0 {
		return
	}
	last := a.chunks[len(a.chunks)-1]
	clear(last[:a.next])
	for i := range a.chunks[:len(a.chunks)-1] {
		a.chunks[i] = nil
	}
	a.chunks = append(a.chunks[:0], last)
	a.next = 0
}

// Clear releases every chunk to the collector.
func (a *Typed[T]) Clear() {
	clear(a.chunks)
	a.chunks = a.chunks[:0]
	a.next = 0
	unpin(a)
}

func (a *Typed[T]) Stats() (stats Stats) {
	size := int(unsafe.Sizeof(*new(T)))
	stats.AllocatedBytes = a.Len() * size
	stats.Chunks = len(a.chunks)
	for _, chunk := range a.chunks {
		stats.ChunkCapacity += len(chunk) * size
	}
	return
}
