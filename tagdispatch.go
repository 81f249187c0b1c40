// Package tagdispatch addresses a closed set of concrete types through a
// one-word handle and dispatches a shared method contract on it with a switch
// over a tag packed into the pointer's unused high bits.
//
// Handle types are generated by cmd/tagdispatch from a manifest naming the
// contracts (Go interfaces) and the variants (concrete types) of each enum.
// Two ownership disciplines are generated:
//
//   - owned handles allocate each value from a heap.Slab, must be released
//     with Free, and deep-copy with Clone;
//   - arena handles allocate through a generated arena builder and are plain
//     values: copying one never allocates, and they stay valid until the
//     builder is reset, cleared or closed. Dropping the builder does not
//     release its arena; a builder that is never closed leaks it.
//
// Equality and ordering derived on handles are by identity: two handles are
// equal only when they address the same allocation, never because their
// values compare equal. Ordering is by variant, then by address, and the
// address part is only stable within one run.
//
// Using a handle after Free, or after its arena was torn down, is not
// detected.
package tagdispatch

import (
	"github.com/brickingsoft/tagdispatch/pkg/tagged"
)

// MaxVariants is the number of variants one enum can declare.
const MaxVariants = tagged.MaxTags

// Allocator supplies storage for values of T. The address stays valid until
// the allocator frees it or is torn down.
type Allocator[T any] interface {
	New(value T) *T
}

// Deallocator releases storage issued by the matching Allocator.
type Deallocator[T any] interface {
	Free(ptr *T)
}

// Cloner is implemented by variant types that need a deep copy when their
// owned handle is cloned.
type Cloner[T any] interface {
	Clone() T
}
