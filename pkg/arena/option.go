package arena

import (
	"github.com/brickingsoft/errors"
	"strconv"
)

const (
	DefaultChunkSize  = 64 << 10
	MaxChunkSize      = 4 << 20
	DefaultChunkSlots = 64
	MaxChunkSlots     = 4096
)

type Options struct {
	ChunkSize  int
	ChunkSlots int
}

type Option func(*Options) error

func defaultOptions() Options {
	return Options{
		ChunkSize:  DefaultChunkSize,
		ChunkSlots: DefaultChunkSlots,
	}
}

// WithChunkSize
// sets the byte size of the first Bump chunk; it is rounded up to a power of two.
func WithChunkSize(n int) Option {
	return func(options *Options) (err error) {
		if n < 1 || n > MaxChunkSize {
			err = errors.From(
				ErrInvalidOption,
				errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
				errors.WithMeta(errMetaOptionKey, "chunk_size"),
				errors.WithMeta(errMetaChunkKey, strconv.Itoa(n)),
			)
			return
		}
		options.ChunkSize = RoundupPow2(n)
		return
	}
}

// WithChunkSlots
// sets the slot count of the first Typed chunk.
func WithChunkSlots(n int) Option {
	return func(options *Options) (err error) {
		if n < 1 || n > MaxChunkSlots {
			err = errors.From(
				ErrInvalidOption,
				errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
				errors.WithMeta(errMetaOptionKey, "chunk_slots"),
				errors.WithMeta(errMetaChunkKey, strconv.Itoa(n)),
			)
			return
		}
		options.ChunkSlots = n
		return
	}
}
