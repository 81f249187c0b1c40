package heap

import (
	"github.com/brickingsoft/errors"
	"strconv"
)

var (
	ErrInvalidChunkSlots = errors.Define("invalid chunk slots")
)

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "heap"
)

type Options struct {
	ChunkSlots int
}

type Option func(*Options) error

// WithChunkSlots
// sets the slot count of the first chunk; later chunks double up to MaxChunkSlots.
func WithChunkSlots(n int) Option {
	return func(options *Options) (err error) {
		if n < 1 || n > MaxChunkSlots {
			err = errors.From(
				ErrInvalidChunkSlots,
				errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
				errors.WithMeta("slots", strconv.Itoa(n)),
			)
			return
		}
		options.ChunkSlots = n
		return
	}
}
