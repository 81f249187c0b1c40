// Package tagged packs a small variant tag into the unused high bits of a
// pointer, producing a single 64-bit word that still addresses the pointee.
//
// The tag occupies bits 57..63 (7 bits, 128 distinct values). The low 57 bits
// hold the address unchanged. Decoding always masks the tag off, even on
// platforms that ignore the top byte on loads.
package tagged

import (
	"fmt"
	"unsafe"
)

type Pointer uint64

const (
	TagBits  = 7
	TagShift = 64 - TagBits
	MaxTags  = 1 << TagBits

	tagMask  = Pointer(MaxTags-1) << TagShift
	addrMask = ^tagMask
)

// Pack creates a Pointer from a pointer and a tag.
func Pack(ptr unsafe.Pointer, tag uint8) Pointer {
	addr := uintptr(ptr)
	if checks {
		if tag >= MaxTags {
			panic(&InvariantError{Op: "pack", Tag: tag, Addr: addr, Reason: "tag out of range"})
		}
		if Pointer(addr)&tagMask != 0 {
			panic(&InvariantError{Op: "pack", Tag: tag, Addr: addr, Reason: "address has bits set in the tag region"})
		}
	}
	return Pointer(addr) | Pointer(tag)<<TagShift
}

// Of is the typed form of Pack.
func Of[T any](ptr *T, tag uint8) Pointer {
	return Pack(unsafe.Pointer(ptr), tag)
}

// Tag returns the tag from a Pointer.
func (p Pointer) Tag() uint8 {
	return uint8(p >> TagShift)
}

// Addr returns the address bits with the tag masked off.
func (p Pointer) Addr() uintptr {
	return uintptr(p & addrMask)
}

// Pointer returns the untagged pointer.
// The result is only valid while the storage it was packed from is alive.
func (p Pointer) Pointer() unsafe.Pointer {
	// a plain variable conversion, not an arithmetic expression, so that
	// checkptr does not look for an originating object.
	addr := p.Addr()
	return unsafe.Pointer(addr)
}

func (p Pointer) IsNil() bool {
	return p&addrMask == 0
}

func (p Pointer) String() string {
	return fmt.Sprintf("tagged.Pointer{tag: %d, addr: %#x}", p.Tag(), p.Addr())
}

// As reinterprets the pointee of p as a T.
//
// The caller guarantees that p was packed from a *T with the tag it carries
// and that the storage has not been freed or reclaimed by its arena. Nothing
// is verified at run time.
func As[T any](p Pointer) *T {
	return (*T)(p.Pointer())
}

// Compare orders by tag first and then by decoded address. Address order is
// only meaningful within one process run.
func Compare(a, b Pointer) int {
	at, bt := a.Tag(), b.Tag()
	if at != bt {
		if at < bt {
			return -1
		}
		return 1
	}
	aa, ba := a.Addr(), b.Addr()
	switch {
	case aa < ba:
		return -1
	case aa > ba:
		return 1
	default:
		return 0
	}
}

// Same reports whether a and b carry the same tag and decode to the same
// address. Zero-sized values of distinct types may share an address, so the
// tag takes part. Same(a, b) holds exactly when Compare(a, b) == 0.
func Same(a, b Pointer) bool {
	return a.Tag() == b.Tag() && a.Addr() == b.Addr()
}
