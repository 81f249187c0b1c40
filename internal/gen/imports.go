package gen

import (
	"go/types"
	"sort"
	"strconv"
	"strings"
)

const (
	modulePath = "github.com/brickingsoft/tagdispatch"
	taggedPath = modulePath + "/pkg/tagged"
	heapPath   = modulePath + "/pkg/heap"
	arenaPath  = modulePath + "/pkg/arena"
)

// importSet names the packages a generated file refers to. The packages the
// templates use directly are reserved up front so that a parameter type from
// an unrelated package called "arena" gets another name.
type importSet struct {
	self   string
	byPath map[string]string
	byName map[string]string
	extra  []string
}

func newImportSet(self *types.Package) *importSet {
	s := &importSet{
		self:   self.Path(),
		byPath: make(map[string]string),
		byName: make(map[string]string),
	}
	for _, path := range []string{"strconv", "unsafe", taggedPath, heapPath, arenaPath} {
		name := path[strings.LastIndex(path, "/")+1:]
		s.byPath[path] = name
		s.byName[name] = path
	}
	return s
}

func (s *importSet) qualifier(pkg *types.Package) string {
	if pkg == nil || pkg.Path() == s.self {
		return ""
	}
	if name, ok := s.byPath[pkg.Path()]; ok {
		s.extra = append(s.extra, pkg.Path())
		return name
	}
	name := pkg.Name()
	for n := 2; s.byName[name] != ""; n++ {
		name = pkg.Name() + strconv.Itoa(n)
	}
	s.byPath[pkg.Path()] = name
	s.byName[name] = pkg.Path()
	s.extra = append(s.extra, pkg.Path())
	return name
}

// block renders the import declaration of a file that uses the fixed
// packages in use plus every package the qualifier handed out.
func (s *importSet) block(use ...string) string {
	var std, other []string
	seen := make(map[string]bool)
	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		spec := strconv.Quote(path)
		if name := s.byPath[path]; name != path[strings.LastIndex(path, "/")+1:] {
			spec = name + " " + spec
		}
		if strings.Contains(strings.SplitN(path, "/", 2)[0], ".") {
			other = append(other, spec)
		} else {
			std = append(std, spec)
		}
	}
	for _, path := range use {
		add(path)
	}
	for _, path := range s.extra {
		add(path)
	}
	sortSpecs(std)
	sortSpecs(other)
	var b strings.Builder
	b.WriteString("import (\n")
	for _, spec := range std {
		b.WriteString("\t" + spec + "\n")
	}
	if len(std) > 0 && len(other) > 0 {
		b.WriteString("\n")
	}
	for _, spec := range other {
		b.WriteString("\t" + spec + "\n")
	}
	b.WriteString(")\n")
	return b.String()
}

// sortSpecs orders import specs by path, the way gofmt does.
func sortSpecs(specs []string) {
	path := func(spec string) string {
		return spec[strings.Index(spec, "\""):]
	}
	sort.Slice(specs, func(i, j int) bool {
		return path(specs[i]) < path(specs[j])
	})
}
