package gen

import (
	"bytes"
	"github.com/brickingsoft/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func render(t *testing.T, p *EnumPlan) string {
	t.Helper()
	file, err := Render(p)
	require.NoError(t, err)
	assert.Equal(t, p.Output, file.Name)
	_, err = parser.ParseFile(token.NewFileSet(), file.Name, file.Content, parser.AllErrors)
	require.NoError(t, err)
	return string(file.Content)
}

func TestRender_Owned(t *testing.T) {
	src := render(t, planDir(t, "../../examples/shapes")["Shape"])

	assert.True(t, strings.HasPrefix(src, "// Code generated by tagdispatch. DO NOT EDIT.\n\npackage shapes\n"))
	for _, want := range []string{
		"type ShapeType uint8",
		"ShapeTypeCircle ShapeType = iota",
		"type Shape struct {\n\tp tagged.Pointer\n}",
		"var _ = [1]struct{}{}[unsafe.Sizeof(Shape{})-8]",
		"var _ Geometry = Shape{}",
		"var _ Drawer = Shape{}",
		"shapeCircleSlab    heap.Slab[Circle]",
		"func NewShapeCircle(value Circle) Shape {",
		"return NewShapeTriangle(*tagged.As[Triangle](h.p))",
		"func (h *Shape) Free() {",
		"return drawerDefaults{}.Color(tagged.As[Circle](h.p))",
		"return tagged.As[Rectangle](h.p).Color()",
		"panic(tagged.InvalidTag(h.p.Tag()))",
		"func (h Shape) Equal(o Shape) bool {",
		"func (h Shape) Compare(o Shape) int {",
		`return "Shape::" + h.Type().String()`,
		`"github.com/brickingsoft/tagdispatch/pkg/heap"`,
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "ArenaBuilder")
	assert.NotContains(t, src, "pkg/arena")
}

func TestRender_Arena(t *testing.T) {
	plans := planDir(t, "../../examples/shapes")
	src := render(t, plans["Figure"])
	for _, want := range []string{
		"type FigureArenaBuilder struct {",
		"func NewFigureArenaBuilder() *FigureArenaBuilder {",
		"func NewFigureArenaBuilderWithBump(options ...arena.Option) (*FigureArenaBuilder, error) {",
		"func NewFigureArenaBuilderWithExternalBump(bump *arena.Bump) *FigureArenaBuilder {",
		"func NewFigureArenaBuilderWithTyped() *FigureArenaBuilder {",
		"func (b *FigureArenaBuilder) Circle(value Circle) Figure {",
		"ptr = arena.New(b.bump, value)",
		"return arena.ErrExternal",
	} {
		assert.Contains(t, src, want)
	}
	assert.NotContains(t, src, "Free()")
	assert.NotContains(t, src, "Clone()")

	herd := render(t, planDir(t, "../../examples/pets")["Herd"])
	assert.Contains(t, herd, "return Herd{p: tagged.Of(b.parrotArena.New(value), uint8(HerdTypeParrot))}")
	assert.Contains(t, herd, "return animalDefaults{}.Description(h)")
	assert.NotContains(t, herd, "WithBump")
	assert.NotContains(t, herd, "var _ Animal")
}

func TestRender_Derives(t *testing.T) {
	bare := render(t, planDir(t, "../../examples/shapes")["BareShape"])
	assert.NotContains(t, bare, "Equal(")
	assert.NotContains(t, bare, "Compare(")
	assert.NotContains(t, bare, "String() string {\n\tif h.p")
	assert.Contains(t, bare, "func (h BareShape) Clone() BareShape {")

	calc := render(t, planDir(t, "../../examples/calc")["Calculator"])
	assert.Contains(t, calc, "func (h Calculator) Equal(o Calculator) bool {")
	assert.NotContains(t, calc, "Compare(")
	assert.NotContains(t, calc, "Clone()")
	assert.NotContains(t, calc, "Describe")
}

func TestRender_Signatures(t *testing.T) {
	src := render(t, planDir(t, "testdata/basic")["AnyClock"])
	for _, want := range []string{
		"\t\"io\"\n",
		"\t\"time\"\n",
		"func (h AnyClock) Sleep(d time.Duration, reasons ...string) {",
		"clockDefaults{}.Sleep(tagged.As[Fake](h.p), d, reasons...)",
		"tagged.As[Wall](h.p).Sleep(d, reasons...)",
		"func (h AnyClock) Tick(w io.Writer, a1 int) (int, error) {",
		"return tagged.As[Fake](h.p).Tick(w, a1)",
		"func (h AnyClock) Now() time.Time {",
		"var _ Clock = AnyClock{}",
	} {
		assert.Contains(t, src, want)
	}
}

func TestImportSet(t *testing.T) {
	plans := planDir(t, "testdata/basic")
	block := plans["AnyClock"].Imports.block("strconv", "unsafe", taggedPath, heapPath)
	assert.Equal(t, "import (\n"+
		"\t\"io\"\n"+
		"\t\"strconv\"\n"+
		"\t\"time\"\n"+
		"\t\"unsafe\"\n"+
		"\n"+
		"\t\"github.com/brickingsoft/tagdispatch/pkg/heap\"\n"+
		"\t\"github.com/brickingsoft/tagdispatch/pkg/tagged\"\n"+
		")\n", block)
}

func TestGenerator_Check(t *testing.T) {
	g, err := New("testdata/basic")
	require.NoError(t, err)
	assert.Equal(t, "AnyClock", g.Manifest().Enums[0].Name)

	// the basic package has never been generated
	drifts, err := g.Check()
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, filepath.Join("testdata/basic", "any_clock_tagdispatch.go"), drifts[0].Path)
	assert.Len(t, drifts[0].Want, 12)
	assert.Empty(t, drifts[0].Have)
}

func TestGenerator_Options(t *testing.T) {
	_, err := New("testdata/basic", WithManifest(""))
	assert.True(t, errors.Is(err, ErrManifest))

	_, err = New("testdata/broken")
	assert.True(t, errors.Is(err, ErrNoManifest))

	g, err := New("testdata/broken", WithManifest("testdata/basic/tagdispatch.yaml"))
	require.NoError(t, err)
	// the basic variants are not declared in the broken package
	_, err = g.Plan()
	assert.True(t, errors.Is(err, ErrUnknownType))
}

func TestWriteIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_tagdispatch.go")
	content := []byte("package x\n")

	changed, err := writeIfChanged(path, content)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = writeIfChanged(path, content)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = writeIfChanged(path, []byte("package y\n"))
	require.NoError(t, err)
	assert.True(t, changed)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.Equal([]byte("package y\n"), got))
}

func TestDigest(t *testing.T) {
	assert.Equal(t, "a7ffc6f8bf1e", Digest(nil))
	assert.NotEqual(t, Digest([]byte("a")), Digest([]byte("b")))
}
