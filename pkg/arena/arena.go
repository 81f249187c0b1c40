// Package arena is the allocation authority of arena handles.
//
// Two arenas are provided. Typed keeps values of one type in chunks of []T
// and accepts any T. Bump carves values of any size out of raw chunks that
// the Go collector never scans, so it only accepts pointer-free types.
//
// Neither arena is synchronized. Values allocated from an arena stay valid
// until the arena is reset, cleared or closed; addresses kept past that point
// dangle and nothing detects their use. An arena is pinned while it holds
// chunks, so dropping every reference to it does not free them: an arena that
// is never cleared or closed leaks.
package arena

type Stats struct {
	AllocatedBytes int
	ChunkCapacity  int
	Chunks         int
}

// RoundupPow2 rounds n up to the next power of two.
func RoundupPow2(n int) int {
	if n < 1 {
		return 0
	}
	x := uint64(n - 1)
	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	x |= x >> 32
	return int(x + 1)
}

func alignUp(addr, align uintptr) uintptr {
	return (addr + align - 1) &^ (align - 1)
}
