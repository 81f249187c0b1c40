package gen

import (
	"bytes"
	"github.com/BurntSushi/toml"
	"github.com/brickingsoft/errors"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"strings"
)

// ManifestNames are the file names FindManifest looks for, in order.
var ManifestNames = []string{"tagdispatch.yaml", "tagdispatch.yml", "tagdispatch.toml"}

// Manifest is the content of a tagdispatch.yaml or tagdispatch.toml file.
type Manifest struct {
	// Contracts are interfaces declared in the package whose methods the
	// enums dispatch.
	Contracts []Contract `yaml:"contracts" toml:"contracts"`

	// Enums each describe one generated handle type.
	Enums []Enum `yaml:"enums" toml:"enums"`
}

// Contract names an interface of the package.
type Contract struct {
	// Name of the interface type.
	Name string `yaml:"name" toml:"name"`

	// Defaults names a struct type of the package whose methods
	// M(self S, args...) supply the body of contract method M for variants
	// that do not implement it themselves.
	Defaults string `yaml:"defaults,omitempty" toml:"defaults,omitempty"`

	// NoDispatch lists contract methods the handle does not get.
	NoDispatch []string `yaml:"no_dispatch,omitempty" toml:"no_dispatch,omitempty"`
}

// Enum describes one handle type.
type Enum struct {
	Name      string    `yaml:"name" toml:"name"`
	Contracts []string  `yaml:"contracts" toml:"contracts"`
	Variants  []Variant `yaml:"variants" toml:"variants"`

	// Arena selects arena mode: the handle borrows from an arena builder
	// instead of owning a heap value.
	Arena bool `yaml:"arena,omitempty" toml:"arena,omitempty"`

	Clone  CloneMode `yaml:"clone,omitempty" toml:"clone,omitempty"`
	Derive Derive    `yaml:"derive,omitempty" toml:"derive,omitempty"`

	// Output is the generated file name, relative to the package directory.
	Output string `yaml:"output,omitempty" toml:"output,omitempty"`
}

// Variant is one alternative of an enum. In a manifest it is either a bare
// type name or a {name, type} table.
type Variant struct {
	Name string `yaml:"name" toml:"name"`
	Type string `yaml:"type" toml:"type"`
}

func (v *Variant) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		v.Name = node.Value
		v.Type = node.Value
		return nil
	}
	type plain Variant
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*v = Variant(p)
	return nil
}

func (v *Variant) UnmarshalTOML(data interface{}) error {
	switch value := data.(type) {
	case string:
		v.Name = value
		v.Type = value
		return nil
	case map[string]interface{}:
		name, _ := value["name"].(string)
		typ, _ := value["type"].(string)
		v.Name = name
		v.Type = typ
		return nil
	default:
		return errors.From(
			ErrManifest,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaReasonKey, "variant must be a string or a table"),
		)
	}
}

// CloneMode controls generation of Clone on owned handles.
type CloneMode string

const (
	// CloneAuto generates Clone when every variant can be deep-copied.
	CloneAuto CloneMode = "auto"
	// CloneAlways requires every variant to be deep-copyable.
	CloneAlways CloneMode = "always"
	// CloneNever never generates Clone.
	CloneNever CloneMode = "never"
)

// Derive switches off derived behaviors.
type Derive struct {
	NoDebug  bool `yaml:"no_debug,omitempty" toml:"no_debug,omitempty"`
	NoCmp    bool `yaml:"no_cmp,omitempty" toml:"no_cmp,omitempty"`
	NoOrd    bool `yaml:"no_ord,omitempty" toml:"no_ord,omitempty"`
	NoTraits bool `yaml:"no_traits,omitempty" toml:"no_traits,omitempty"`
}

// Debug reports whether String is generated.
func (d Derive) Debug() bool { return !d.NoTraits && !d.NoDebug }

// Equal reports whether Equal is generated.
func (d Derive) Equal() bool { return !d.NoTraits && !d.NoCmp }

// Ord reports whether Compare is generated.
func (d Derive) Ord() bool { return d.Equal() && !d.NoOrd }

// LoadManifest reads and validates the manifest at path. The format follows
// the file extension.
func LoadManifest(path string) (m *Manifest, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		err = errors.New(
			"read manifest failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaPathKey, path),
			errors.WithWrap(readErr),
		)
		return
	}
	m, err = ParseManifest(data, path)
	return
}

// ParseManifest decodes data as YAML, or as TOML when path ends in .toml,
// applies defaults and validates the result.
func ParseManifest(data []byte, path string) (m *Manifest, err error) {
	m = new(Manifest)
	var decodeErr error
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		_, decodeErr = toml.NewDecoder(bytes.NewReader(data)).Decode(m)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		decodeErr = dec.Decode(m)
	}
	if decodeErr != nil {
		m = nil
		err = errors.From(
			ErrManifest,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaPathKey, path),
			errors.WithWrap(decodeErr),
		)
		return
	}
	m.setDefaults()
	if err = m.validate(path); err != nil {
		m = nil
		return
	}
	return
}

// FindManifest returns the path of the manifest in dir.
func FindManifest(dir string) (string, error) {
	for _, name := range ManifestNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.From(
		ErrNoManifest,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaPathKey, dir),
	)
}

// Contract returns the contract declared under name.
func (m *Manifest) Contract(name string) (Contract, bool) {
	for _, c := range m.Contracts {
		if c.Name == name {
			return c, true
		}
	}
	return Contract{}, false
}

func (m *Manifest) setDefaults() {
	for i := range m.Enums {
		e := &m.Enums[i]
		if e.Clone == "" {
			e.Clone = CloneAuto
		}
		if e.Output == "" {
			e.Output = snake(e.Name) + "_tagdispatch.go"
		}
		for j := range e.Variants {
			v := &e.Variants[j]
			if v.Type == "" {
				v.Type = v.Name
			}
			if v.Name == "" {
				v.Name = v.Type
			}
		}
	}
}

func (m *Manifest) validate(path string) error {
	invalid := func(reason string) error {
		return errors.From(
			ErrManifest,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaPathKey, path),
			errors.WithMeta(errMetaReasonKey, reason),
		)
	}
	if len(m.Enums) == 0 {
		return invalid("no enums declared")
	}
	contracts := make(map[string]bool, len(m.Contracts))
	for _, c := range m.Contracts {
		if !isIdent(c.Name) {
			return invalid("contract name " + quote(c.Name) + " is not an identifier")
		}
		if contracts[c.Name] {
			return invalid("contract " + c.Name + " declared twice")
		}
		contracts[c.Name] = true
		if c.Defaults != "" && !isIdent(c.Defaults) {
			return invalid("defaults " + quote(c.Defaults) + " of " + c.Name + " is not an identifier")
		}
	}
	enums := make(map[string]bool, len(m.Enums))
	outputs := make(map[string]string, len(m.Enums))
	for _, e := range m.Enums {
		if !isIdent(e.Name) || !isExported(e.Name) {
			return invalid("enum name " + quote(e.Name) + " must be an exported identifier")
		}
		if enums[e.Name] {
			return invalid("enum " + e.Name + " declared twice")
		}
		enums[e.Name] = true
		switch e.Clone {
		case CloneAuto, CloneAlways, CloneNever:
		default:
			return invalid("clone of " + e.Name + " must be auto, always or never")
		}
		if filepath.Ext(e.Output) != ".go" || strings.HasSuffix(e.Output, "_test.go") || filepath.Base(e.Output) != e.Output {
			return invalid("output " + quote(e.Output) + " of " + e.Name + " must be a non-test .go file name")
		}
		if other, ok := outputs[e.Output]; ok {
			return errors.From(
				ErrDuplicateOutput,
				errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
				errors.WithMeta(errMetaPathKey, e.Output),
				errors.WithMeta(errMetaReasonKey, other+" and "+e.Name),
			)
		}
		outputs[e.Output] = e.Name
		for _, name := range e.Contracts {
			if !contracts[name] {
				return planErr(ErrUnknownContract, e.Name, errMetaContractKey, name)
			}
		}
		for _, v := range e.Variants {
			if !isIdent(v.Name) || !isExported(v.Name) {
				return invalid("variant name " + quote(v.Name) + " of " + e.Name + " must be an exported identifier")
			}
		}
	}
	return nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			continue
		}
		if i > 0 && '0' <= r && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func isExported(s string) bool {
	return s != "" && 'A' <= s[0] && s[0] <= 'Z'
}

func quote(s string) string {
	return "\"" + s + "\""
}

// snake turns a Go identifier into a lower snake-case file stem:
// ArenaShape -> arena_shape, HTTPServer -> http_server.
func snake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		upper := 'A' <= r && r <= 'Z'
		if upper && i > 0 {
			prevLower := 'a' <= runes[i-1] && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && 'a' <= runes[i+1] && runes[i+1] <= 'z'
			prevUpper := 'A' <= runes[i-1] && runes[i-1] <= 'Z'
			if prevLower || (prevUpper && nextLower) {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// lowerFirst returns s with its first letter lowered: Shape -> shape.
func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	if 'A' <= s[0] && s[0] <= 'Z' {
		return string(s[0]+'a'-'A') + s[1:]
	}
	return s
}
