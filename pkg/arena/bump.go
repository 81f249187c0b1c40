package arena

import (
	"github.com/brickingsoft/errors"
	"os"
	"reflect"
	"strconv"
	"sync"
	"unsafe"
)

var pagesize = os.Getpagesize()

type chunk struct {
	mem  []byte
	base uintptr
}

// Bump is a bump allocator over raw chunks obtained outside the Go heap where
// the platform allows it. Memory is reclaimed in bulk by Reset, Clear or Close,
// and only by them: a Bump holding chunks stays reachable until Clear or Close.
type Bump struct {
	chunks    []chunk
	off       uintptr
	allocated int
	chunkSize int
	closed    bool
}

func NewBump(options ...Option) (b *Bump, err error) {
	opts := defaultOptions()
	for _, option := range options {
		if err = option(&opts); err != nil {
			return
		}
	}
	b = &Bump{chunkSize: opts.ChunkSize}
	return
}

var zeroSized uint64

// Allocate returns size bytes aligned to align. align must be a power of two.
func (b *Bump) Allocate(size, align uintptr) (ptr unsafe.Pointer, err error) {
	if b.closed {
		err = errors.From(
			ErrClosed,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, errMetaOpAllocate),
		)
		return
	}
	if align == 0 || align&(align-1) != 0 {
		err = errors.From(
			ErrInvalidAlign,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, errMetaOpAllocate),
			errors.WithMeta(errMetaAlignKey, strconv.FormatUint(uint64(align), 10)),
		)
		return
	}
	if size == 0 {
		ptr = unsafe.Pointer(&zeroSized)
		return
	}
	if ptr = b.bump(size, align); ptr != nil {
		return
	}
	if err = b.grow(size + align); err != nil {
		return
	}
	ptr = b.bump(size, align)
	return
}

func (b *Bump) bump(size, align uintptr) unsafe.Pointer {
	if len(b.chunks) == 0 {
		return nil
	}
	c := &b.chunks[len(b.chunks)-1]
	start := alignUp(c.base+b.off, align) - c.base
	end := start + size
	if end > uintptr(len(c.mem)) {
		return nil
	}
	b.allocated += int(end - b.off)
	b.off = end
	return unsafe.Pointer(&c.mem[start])
}

func (b *Bump) grow(need uintptr) (err error) {
	size := b.chunkSize
	if size < 1 {
		size = DefaultChunkSize
	}
	if n := len(b.chunks); n > 0 {
		size = min(len(b.chunks[n-1].mem)*2, MaxChunkSize)
	}
	if int(need) > size {
		size = RoundupPow2(int(need))
	}
	size = (size + pagesize - 1) &^ (pagesize - 1)
	mem, allocErr := allocChunk(size)
	if allocErr != nil {
		err = allocErr
		return
	}
	if len(b.chunks) == 0 {
		pin(b)
	}
	b.chunks = append(b.chunks, chunk{mem: mem, base: uintptr(unsafe.Pointer(&mem[0]))})
	b.off = 0
	return
}

// Reset rewinds the arena and releases every chunk but the last, which is
// the largest.
func (b *Bump) Reset() (err error) {
	if b.closed {
		err = ErrClosed
		return
	}
	if n := len(b.chunks); n > 1 {
		err = b.release(b.chunks[:n-1])
		b.chunks = append(b.chunks[:0], b.chunks[n-1])
	}
	b.off = 0
	b.allocated = 0
	return
}

// Clear releases every chunk; the arena stays usable.
func (b *Bump) Clear() (err error) {
	err = b.release(b.chunks)
	b.chunks = b.chunks[:0]
	b.off = 0
	b.allocated = 0
	unpin(b)
	return
}

// Close releases every chunk and makes further allocations fail.
func (b *Bump) Close() (err error) {
	if b.closed {
		return
	}
	err = b.Clear()
	b.closed = true
	return
}

func (b *Bump) release(chunks []chunk) (err error) {
	for i := range chunks {
		if freeErr := freeChunk(chunks[i].mem); freeErr != nil && err == nil {
			err = freeErr
		}
		chunks[i] = chunk{}
	}
	return
}

func (b *Bump) Stats() (stats Stats) {
	stats.AllocatedBytes = b.allocated
	stats.Chunks = len(b.chunks)
	for _, c := range b.chunks {
		stats.ChunkCapacity += len(c.mem)
	}
	return
}

// New moves value into b. It panics if T holds Go pointers, which the
// collector would not see inside bump memory, or if the arena cannot grow.
func New[T any](b *Bump, value T) *T {
	typ := reflect.TypeFor[T]()
	if HasPointers(typ) {
		panic(errors.From(
			ErrPointerful,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaTypeKey, typ.String()),
		))
	}
	ptr, err := b.Allocate(typ.Size(), uintptr(typ.Align()))
	if err != nil {
		panic(err)
	}
	p := (*T)(ptr)
	*p = value
	return p
}

// BumpAllocator adapts a Bump to a single value type.
type BumpAllocator[T any] struct {
	bump *Bump
}

func BumpOf[T any](b *Bump) BumpAllocator[T] {
	return BumpAllocator[T]{bump: b}
}

func (a BumpAllocator[T]) New(value T) *T {
	return New[T](a.bump, value)
}

var pointerful sync.Map

// HasPointers reports whether values of typ reference Go-managed memory.
// Strings count, since their bytes live on the Go heap.
func HasPointers(typ reflect.Type) bool {
	if v, ok := pointerful.Load(typ); ok {
		return v.(bool)
	}
	has := hasPointers(typ)
	pointerful.Store(typ, has)
	return has
}

func hasPointers(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Array:
		return typ.Len() > 0 && hasPointers(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if hasPointers(typ.Field(i).Type) {
				return true
			}
		}
		return false
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.Slice, reflect.String:
		return true
	default:
		return false
	}
}
