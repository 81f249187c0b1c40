package gen

import (
	"bytes"
	"github.com/brickingsoft/errors"
	"go/format"
	"strings"
	"text/template"
)

// File is one rendered output.
type File struct {
	Name    string
	Enum    string
	Content []byte
}

// Render produces the formatted source of plan.
func Render(plan *EnumPlan) (file File, err error) {
	use := []string{"strconv", "unsafe", taggedPath}
	if plan.Arena {
		use = append(use, arenaPath)
	} else {
		use = append(use, heapPath)
	}
	view := enumView{EnumPlan: plan}
	for _, m := range plan.Methods {
		view.Dispatch = append(view.Dispatch, newMethodView(m))
	}
	view.ImportBlock = plan.Imports.block(use...)

	var buf bytes.Buffer
	if err = enumTemplate.Execute(&buf, view); err != nil {
		err = errors.New(
			"render enum failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaEnumKey, plan.Name),
			errors.WithWrap(err),
		)
		return
	}
	src, formatErr := format.Source(buf.Bytes())
	if formatErr != nil {
		err = errors.New(
			"format generated source failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaEnumKey, plan.Name),
			errors.WithWrap(formatErr),
		)
		return
	}
	file = File{Name: plan.Output, Enum: plan.Name, Content: src}
	return
}

type enumView struct {
	*EnumPlan
	ImportBlock string
	Dispatch    []methodView
}

type methodView struct {
	Signature string
	Returns   bool
	Arms      []armView
}

type armView struct {
	Variant string
	Call    string
}

func newMethodView(m *MethodPlan) methodView {
	params := make([]string, 0, len(m.Params))
	args := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		params = append(params, p.Name+" "+p.Type)
		if strings.HasPrefix(p.Type, "...") {
			args = append(args, p.Name+"...")
		} else {
			args = append(args, p.Name)
		}
	}
	sig := m.Name + "(" + strings.Join(params, ", ") + ")"
	switch len(m.Results) {
	case 0:
	case 1:
		sig += " " + m.Results[0]
	default:
		sig += " (" + strings.Join(m.Results, ", ") + ")"
	}
	view := methodView{Signature: sig, Returns: len(m.Results) > 0}
	for _, arm := range m.Arms {
		value := "tagged.As[" + arm.Variant.Type + "](h.p)"
		var call string
		switch {
		case arm.Default == "":
			call = value + "." + m.Name + "(" + strings.Join(args, ", ") + ")"
		case arm.ByHandle:
			call = arm.Default + "." + m.Name + "(" + strings.Join(append([]string{"h"}, args...), ", ") + ")"
		default:
			call = arm.Default + "." + m.Name + "(" + strings.Join(append([]string{value}, args...), ", ") + ")"
		}
		view.Arms = append(view.Arms, armView{Variant: arm.Variant.Name, Call: call})
	}
	return view
}

var enumTemplate = template.Must(template.New("enum").Funcs(template.FuncMap{
	"lower": lowerFirst,
}).Parse(enumSource))

const enumSource = `// Code generated by tagdispatch. DO NOT EDIT.

package {{.Package}}

{{.ImportBlock}}
// {{.Name}}Type identifies the variant a {{.Name}} refers to.
type {{.Name}}Type uint8

const (
{{- range $i, $v := .Variants}}
	{{$.Name}}Type{{$v.Name}}{{if eq $i 0}} {{$.Name}}Type = iota{{end}}
{{- end}}
)

var {{lower .Name}}TypeNames = [...]string{
{{- range .Variants}}
	{{$.Name}}Type{{.Name}}: "{{.Name}}",
{{- end}}
}

func (t {{.Name}}Type) String() string {
	if int(t) < len({{lower .Name}}TypeNames) {
		return {{lower .Name}}TypeNames[t]
	}
	return "{{.Name}}Type(" + strconv.Itoa(int(t)) + ")"
}
{{if .Arena}}
// {{.Name}} is a one-word handle to a value held by a {{.Name}}ArenaBuilder.
// It stays valid until the builder is reset, cleared or closed. Copying a
// {{.Name}} never allocates.
{{- else}}
// {{.Name}} is a one-word handle owning a heap value of one of its variants.
// Copies of a handle share the value; release it once with Free.
{{- end}}
type {{.Name}} struct {
	p tagged.Pointer
}

var _ = [1]struct{}{}[unsafe.Sizeof({{.Name}}{})-8]
{{- range .Contracts}}
var _ {{.}} = {{$.Name}}{}
{{- end}}

// Type returns the variant h refers to.
func (h {{.Name}}) Type() {{.Name}}Type {
	return {{.Name}}Type(h.p.Tag())
}

// Tagged returns the packed word.
func (h {{.Name}}) Tagged() tagged.Pointer {
	return h.p
}

// IsNil reports whether h is the zero handle.
func (h {{.Name}}) IsNil() bool {
	return h.p.IsNil()
}
{{range .Variants}}
// As{{.Name}} returns the {{.Type}} h refers to, if it refers to one.
func (h {{$.Name}}) As{{.Name}}() (*{{.Type}}, bool) {
	if h.p.IsNil() || h.Type() != {{$.Name}}Type{{.Name}} {
		return nil, false
	}
	return tagged.As[{{.Type}}](h.p), true
}
{{end}}
{{- if not .Arena}}
var (
{{- range .Variants}}
	{{lower $.Name}}{{.Name}}Slab heap.Slab[{{.Type}}]
{{- end}}
)
{{range .Variants}}
// New{{$.Name}}{{.Name}} moves value to the heap and returns a handle owning it.
func New{{$.Name}}{{.Name}}(value {{.Type}}) {{$.Name}} {
	return {{$.Name}}{p: tagged.Of({{lower $.Name}}{{.Name}}Slab.New(value), uint8({{$.Name}}Type{{.Name}}))}
}
{{end}}
{{- if .Clone}}
// Clone returns a handle owning a deep copy of the value h refers to.
func (h {{.Name}}) Clone() {{.Name}} {
	if h.p.IsNil() {
		return h
	}
	switch h.Type() {
{{- range .Variants}}
	case {{$.Name}}Type{{.Name}}:
		return New{{$.Name}}{{.Name}}({{if .CloneMethod}}tagged.As[{{.Type}}](h.p).Clone(){{else}}*tagged.As[{{.Type}}](h.p){{end}})
{{- end}}
	default:
		panic(tagged.InvalidTag(h.p.Tag()))
	}
}
{{end}}
// Free releases the value h owns and zeroes h. Other copies of h dangle
// afterwards. Freeing the zero handle does nothing.
func (h *{{.Name}}) Free() {
	if h.p.IsNil() {
		return
	}
	switch h.Type() {
{{- range .Variants}}
	case {{$.Name}}Type{{.Name}}:
		{{lower $.Name}}{{.Name}}Slab.Free(tagged.As[{{.Type}}](h.p))
{{- end}}
	default:
		panic(tagged.InvalidTag(h.p.Tag()))
	}
	h.p = 0
}
{{- else}}
// {{.Name}}ArenaBuilder builds {{.Name}} handles over one arena. It is not
// safe for concurrent use. Handles stay valid until Reset, Clear or Close,
// even after the builder itself is dropped; a builder that is never closed
// leaks its arena.
type {{.Name}}ArenaBuilder struct {
{{- if .Bump}}
	bump     *arena.Bump
	external bool
{{- end}}
{{- range .Variants}}
	{{lower .Name}}Arena arena.Typed[{{.Type}}]
{{- end}}
}
{{if .Bump}}
// New{{.Name}}ArenaBuilder returns a builder over its own bump arena.
func New{{.Name}}ArenaBuilder() *{{.Name}}ArenaBuilder {
	// without options NewBump cannot fail
	bump, _ := arena.NewBump()
	return &{{.Name}}ArenaBuilder{bump: bump}
}

// New{{.Name}}ArenaBuilderWithBump returns a builder over a bump arena
// created with options.
func New{{.Name}}ArenaBuilderWithBump(options ...arena.Option) (*{{.Name}}ArenaBuilder, error) {
	bump, err := arena.NewBump(options...)
	if err != nil {
		return nil, err
	}
	return &{{.Name}}ArenaBuilder{bump: bump}, nil
}

// New{{.Name}}ArenaBuilderWithExternalBump returns a builder that allocates
// from bump without owning it. Reset fails and Close leaves bump open.
func New{{.Name}}ArenaBuilderWithExternalBump(bump *arena.Bump) *{{.Name}}ArenaBuilder {
	return &{{.Name}}ArenaBuilder{bump: bump, external: true}
}

// New{{.Name}}ArenaBuilderWithTyped returns a builder over one typed arena
// per variant.
func New{{.Name}}ArenaBuilderWithTyped() *{{.Name}}ArenaBuilder {
	return &{{.Name}}ArenaBuilder{}
}
{{range .Variants}}
// {{.Name}} copies value into the arena and returns a handle to it.
func (b *{{$.Name}}ArenaBuilder) {{.Name}}(value {{.Type}}) {{$.Name}} {
	var ptr *{{.Type}}
	if b.bump != nil {
		ptr = arena.New(b.bump, value)
	} else {
		ptr = b.{{lower .Name}}Arena.New(value)
	}
	return {{$.Name}}{p: tagged.Of(ptr, uint8({{$.Name}}Type{{.Name}}))}
}
{{end}}
// Reset rewinds the arena for reuse. Every handle built so far dangles.
func (b *{{.Name}}ArenaBuilder) Reset() error {
	if b.bump != nil {
		if b.external {
			return arena.ErrExternal
		}
		return b.bump.Reset()
	}
{{- range .Variants}}
	b.{{lower .Name}}Arena.Reset()
{{- end}}
	return nil
}

// Clear releases the arena memory. Every handle built so far dangles.
func (b *{{.Name}}ArenaBuilder) Clear() error {
	if b.bump != nil {
		if b.external {
			return arena.ErrExternal
		}
		return b.bump.Clear()
	}
{{- range .Variants}}
	b.{{lower .Name}}Arena.Clear()
{{- end}}
	return nil
}

// Close releases the arena. An external bump arena is left to its owner.
func (b *{{.Name}}ArenaBuilder) Close() error {
	if b.bump != nil {
		if b.external {
			return nil
		}
		return b.bump.Close()
	}
{{- range .Variants}}
	b.{{lower .Name}}Arena.Clear()
{{- end}}
	return nil
}

// Stats reports the memory held by the arena.
func (b *{{.Name}}ArenaBuilder) Stats() arena.Stats {
	if b.bump != nil {
		return b.bump.Stats()
	}
	var stats arena.Stats
	for _, s := range [...]arena.Stats{
{{- range .Variants}}
		b.{{lower .Name}}Arena.Stats(),
{{- end}}
	} {
		stats.AllocatedBytes += s.AllocatedBytes
		stats.ChunkCapacity += s.ChunkCapacity
		stats.Chunks += s.Chunks
	}
	return stats
}
{{- else}}
// New{{.Name}}ArenaBuilder returns a builder over one typed arena per variant.
func New{{.Name}}ArenaBuilder() *{{.Name}}ArenaBuilder {
	return &{{.Name}}ArenaBuilder{}
}
{{range .Variants}}
// {{.Name}} copies value into the arena and returns a handle to it.
func (b *{{$.Name}}ArenaBuilder) {{.Name}}(value {{.Type}}) {{$.Name}} {
	return {{$.Name}}{p: tagged.Of(b.{{lower .Name}}Arena.New(value), uint8({{$.Name}}Type{{.Name}}))}
}
{{end}}
// Reset rewinds the arena for reuse. Every handle built so far dangles.
func (b *{{.Name}}ArenaBuilder) Reset() error {
{{- range .Variants}}
	b.{{lower .Name}}Arena.Reset()
{{- end}}
	return nil
}

// Clear releases the arena memory. Every handle built so far dangles.
func (b *{{.Name}}ArenaBuilder) Clear() error {
{{- range .Variants}}
	b.{{lower .Name}}Arena.Clear()
{{- end}}
	return nil
}

// Close releases the arena.
func (b *{{.Name}}ArenaBuilder) Close() error {
	return b.Clear()
}

// Stats reports the memory held by the arena.
func (b *{{.Name}}ArenaBuilder) Stats() arena.Stats {
	var stats arena.Stats
	for _, s := range [...]arena.Stats{
{{- range .Variants}}
		b.{{lower .Name}}Arena.Stats(),
{{- end}}
	} {
		stats.AllocatedBytes += s.AllocatedBytes
		stats.ChunkCapacity += s.ChunkCapacity
		stats.Chunks += s.Chunks
	}
	return stats
}
{{- end}}
{{- end}}
{{- if .Derive.Equal}}

// Equal reports whether h and o refer to the same value. Values are not
// compared: two handles to equal but distinct values are not Equal.
func (h {{.Name}}) Equal(o {{.Name}}) bool {
	return tagged.Same(h.p, o.p)
}
{{- end}}
{{- if .Derive.Ord}}

// Compare orders handles by variant, then by address. The address order is
// stable only within one run of the program.
func (h {{.Name}}) Compare(o {{.Name}}) int {
	return tagged.Compare(h.p, o.p)
}
{{- end}}
{{- if .Derive.Debug}}

func (h {{.Name}}) String() string {
	if h.p.IsNil() {
		return "{{.Name}}(nil)"
	}
	return "{{.Name}}::" + h.Type().String()
}
{{- end}}
{{range $m := .Dispatch}}
func (h {{$.Name}}) {{$m.Signature}} {
	switch h.Type() {
{{- range $m.Arms}}
	case {{$.Name}}Type{{.Variant}}:
		{{if $m.Returns}}return {{end}}{{.Call}}
{{- end}}
	default:
		panic(tagged.InvalidTag(h.p.Tag()))
	}
}
{{end}}`
