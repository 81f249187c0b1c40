package arena

import (
	"github.com/brickingsoft/errors"
)

var (
	ErrClosed        = errors.Define("arena is closed")
	ErrExternal      = errors.Define("arena is owned by the caller")
	ErrInvalidAlign  = errors.Define("alignment is not a power of two")
	ErrPointerful    = errors.Define("type holds Go pointers")
	ErrInvalidOption = errors.Define("invalid arena option")
)

func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

func IsExternal(err error) bool {
	return errors.Is(err, ErrExternal)
}

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "arena"
)

const (
	errMetaOpKey      = "op"
	errMetaOpAllocate = "allocate"
	errMetaOpMmap     = "mmap"
	errMetaOpMunmap   = "munmap"
	errMetaTypeKey    = "type"
	errMetaAlignKey   = "align"
	errMetaChunkKey   = "chunk"
	errMetaOptionKey  = "option"
)
