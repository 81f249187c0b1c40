package tagdispatch_test

import (
	"github.com/brickingsoft/tagdispatch"
	"github.com/brickingsoft/tagdispatch/pkg/arena"
	"github.com/brickingsoft/tagdispatch/pkg/heap"
	"github.com/brickingsoft/tagdispatch/pkg/tagged"
	"github.com/stretchr/testify/assert"
	"testing"
)

type cell struct {
	Value int
}

var (
	_ tagdispatch.Allocator[cell]   = (*heap.Slab[cell])(nil)
	_ tagdispatch.Deallocator[cell] = (*heap.Slab[cell])(nil)
	_ tagdispatch.Allocator[cell]   = (*arena.Typed[cell])(nil)
	_ tagdispatch.Allocator[cell]   = arena.BumpAllocator[cell]{}
)

func fill(alloc tagdispatch.Allocator[cell], n int) []*cell {
	cells := make([]*cell, 0, n)
	for i := 0; i < n; i++ {
		cells = append(cells, alloc.New(cell{Value: i}))
	}
	return cells
}

func TestAllocators(t *testing.T) {
	bump, err := arena.NewBump()
	assert.NoError(t, err)
	defer bump.Close()

	allocators := map[string]tagdispatch.Allocator[cell]{
		"slab":  new(heap.Slab[cell]),
		"typed": new(arena.Typed[cell]),
		"bump":  arena.BumpOf[cell](bump),
	}
	for name, alloc := range allocators {
		t.Run(name, func(t *testing.T) {
			cells := fill(alloc, 200)
			for i, c := range cells {
				assert.Equal(t, i, c.Value)
			}
		})
	}
}

func TestMaxVariants(t *testing.T) {
	assert.Equal(t, 128, tagdispatch.MaxVariants)
}

type (
	idle    struct{}
	stopped struct{}
)

func TestZeroSizedVariantsStayDistinct(t *testing.T) {
	bump, err := arena.NewBump()
	assert.NoError(t, err)
	defer bump.Close()

	var idles heap.Slab[idle]
	var stops heap.Slab[stopped]
	cases := map[string][2]tagged.Pointer{
		"slab": {tagged.Of(idles.New(idle{}), 0), tagged.Of(stops.New(stopped{}), 1)},
		"bump": {tagged.Of(arena.New(bump, idle{}), 0), tagged.Of(arena.New(bump, stopped{}), 1)},
	}
	for name, words := range cases {
		t.Run(name, func(t *testing.T) {
			a, b := words[0], words[1]
			assert.False(t, tagged.Same(a, b))
			assert.Equal(t, -1, tagged.Compare(a, b))
			assert.True(t, tagged.Same(a, a))
			assert.Zero(t, tagged.Compare(b, b))
		})
	}
}
