//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package arena

import (
	"github.com/brickingsoft/errors"
	"golang.org/x/sys/unix"
	"os"
	"strconv"
)

func allocChunk(size int) (mem []byte, err error) {
	mem, err = unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		err = errors.New(
			"allocate chunk failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, errMetaOpMmap),
			errors.WithMeta(errMetaChunkKey, strconv.Itoa(size)),
			errors.WithWrap(os.NewSyscallError("mmap", err)),
		)
		mem = nil
		return
	}
	return
}

func freeChunk(mem []byte) (err error) {
	if len(mem) == 0 {
		return
	}
	if err = unix.Munmap(mem); err != nil {
		err = errors.New(
			"release chunk failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, errMetaOpMunmap),
			errors.WithWrap(os.NewSyscallError("munmap", err)),
		)
	}
	return
}
