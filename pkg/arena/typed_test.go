package arena_test

import (
	"github.com/brickingsoft/tagdispatch/pkg/arena"
	"github.com/brickingsoft/tagdispatch/pkg/tagged"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"runtime"
	"strconv"
	"testing"
	"unsafe"
)

type label struct {
	Text  string
	Attrs map[string]string
}

func TestTyped_New(t *testing.T) {
	var a arena.Typed[label]
	x := a.New(label{Text: "x"})
	y := a.New(label{Text: "y", Attrs: map[string]string{"k": "v"}})
	require.NotSame(t, x, y)
	runtime.GC()
	assert.Equal(t, "x", x.Text)
	assert.Equal(t, "v", y.Attrs["k"])
	assert.Equal(t, 2, a.Len())

	stats := a.Stats()
	size := int(unsafe.Sizeof(label{}))
	assert.Equal(t, arena.Stats{AllocatedBytes: 2 * size, ChunkCapacity: arena.DefaultChunkSlots * size, Chunks: 1}, stats)
}

func TestTyped_Grow(t *testing.T) {
	a, err := arena.NewTyped[int32](arena.WithChunkSlots(1))
	require.NoError(t, err)
	ptrs := make([]*int32, 0, 10)
	for i := int32(0); i < 10; i++ {
		ptrs = append(ptrs, a.New(i))
	}
	for i, p := range ptrs {
		assert.Equal(t, int32(i), *p, "chunk growth never moves values")
	}
	// 1 + 2 + 4 + 8
	assert.Equal(t, 4, a.Stats().Chunks)
	assert.Equal(t, 10, a.Len())
}

func TestTyped_Reset(t *testing.T) {
	a, err := arena.NewTyped[label](arena.WithChunkSlots(2))
	require.NoError(t, err)
	for i := 0; i < 6; i++ {
		a.New(label{Text: "v"})
	}
	last := a.New(label{Text: "last"})
	require.Equal(t, 3, a.Stats().Chunks)

	a.Reset()
	assert.Equal(t, 0, a.Len())
	assert.Equal(t, 1, a.Stats().Chunks)
	assert.Zero(t, *last, "values of the kept chunk are zeroed")

	first := a.New(label{Text: "again"})
	assert.Equal(t, "again", first.Text)
	assert.Equal(t, 1, a.Len())
}

func TestTyped_Clear(t *testing.T) {
	var a arena.Typed[int]
	a.New(1)
	a.Clear()
	assert.Equal(t, arena.Stats{}, a.Stats())
	assert.Equal(t, 7, *a.New(7))
	a.Clear()
}

func TestTyped_Pinned(t *testing.T) {
	before := arena.Pinned()
	var a arena.Typed[label]
	assert.Equal(t, before, arena.Pinned(), "an empty arena is not pinned")
	a.New(label{Text: "x"})
	a.New(label{Text: "y"})
	assert.Equal(t, before+1, arena.Pinned())
	a.Reset()
	assert.Equal(t, before+1, arena.Pinned(), "reset keeps a chunk")
	a.Clear()
	assert.Equal(t, before, arena.Pinned())
}

// fillDropped allocates into an arena that goes out of scope on return and
// keeps only tagged words, which the collector does not trace.
func fillDropped(n int) []tagged.Pointer {
	a, _ := arena.NewTyped[label](arena.WithChunkSlots(4))
	words := make([]tagged.Pointer, 0, n)
	for i := 0; i < n; i++ {
		words = append(words, tagged.Of(a.New(label{Text: "v" + strconv.Itoa(i)}), uint8(i%tagged.MaxTags)))
	}
	return words
}

func TestTyped_SurvivesDroppedArena(t *testing.T) {
	before := arena.Pinned()
	words := fillDropped(64)
	for round := 0; round < 4; round++ {
		runtime.GC()
		churn := make([]*label, 0, 1024)
		for i := 0; i < cap(churn); i++ {
			churn = append(churn, &label{Text: "churn"})
		}
		runtime.KeepAlive(churn)
	}
	for i, w := range words {
		require.Equal(t, "v"+strconv.Itoa(i), tagged.As[label](w).Text)
	}
	assert.Equal(t, before+1, arena.Pinned())
}

func TestWithChunkSlots_Invalid(t *testing.T) {
	_, err := arena.NewTyped[int](arena.WithChunkSlots(arena.MaxChunkSlots + 1))
	assert.Error(t, err)
}
