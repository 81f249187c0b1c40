//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package arena

// Without mmap the chunks come from the Go heap. They are []byte, so the
// collector still never scans their contents.
func allocChunk(size int) (mem []byte, err error) {
	mem = make([]byte, size)
	return
}

func freeChunk(_ []byte) (err error) {
	return
}
