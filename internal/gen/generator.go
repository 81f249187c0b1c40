package gen

import (
	"bytes"
	"encoding/hex"
	"github.com/brickingsoft/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
	"os"
	"path/filepath"
)

type Options struct {
	// Manifest is the manifest path. Empty means FindManifest in the
	// package directory.
	Manifest string
}

type Option func(*Options) error

// WithManifest
// uses the manifest at path instead of looking for one in the package directory.
func WithManifest(path string) Option {
	return func(options *Options) (err error) {
		if path == "" {
			err = errors.From(
				ErrManifest,
				errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
				errors.WithMeta(errMetaReasonKey, "empty manifest path"),
			)
			return
		}
		options.Manifest = path
		return
	}
}

// Generator generates the enums of one package directory.
type Generator struct {
	dir      string
	manifest *Manifest
	path     string
}

func New(dir string, options ...Option) (g *Generator, err error) {
	opts := Options{}
	for _, option := range options {
		if err = option(&opts); err != nil {
			return
		}
	}
	path := opts.Manifest
	if path == "" {
		if path, err = FindManifest(dir); err != nil {
			return
		}
	}
	m, loadErr := LoadManifest(path)
	if loadErr != nil {
		err = loadErr
		return
	}
	g = &Generator{dir: dir, manifest: m, path: path}
	return
}

func (g *Generator) Manifest() *Manifest {
	return g.manifest
}

func (g *Generator) outputs() []string {
	outputs := make([]string, 0, len(g.manifest.Enums))
	for _, e := range g.manifest.Enums {
		outputs = append(outputs, e.Output)
	}
	return outputs
}

// Plan loads the package and resolves every enum.
func (g *Generator) Plan() (plans []*EnumPlan, err error) {
	pkg, loadErr := NewInspector(g.dir, g.outputs()).Load()
	if loadErr != nil {
		err = loadErr
		return
	}
	plans, err = Plan(g.manifest, pkg)
	return
}

// Render plans and renders every enum.
func (g *Generator) Render() (files []File, err error) {
	plans, planFailed := g.Plan()
	if planFailed != nil {
		err = planFailed
		return
	}
	files = make([]File, 0, len(plans))
	for _, plan := range plans {
		file, renderErr := Render(plan)
		if renderErr != nil {
			files = nil
			err = renderErr
			return
		}
		files = append(files, file)
	}
	return
}

// Generate writes every generated file whose content changed and returns the
// paths written.
func (g *Generator) Generate() (written []string, err error) {
	files, renderErr := g.Render()
	if renderErr != nil {
		err = renderErr
		return
	}
	for _, file := range files {
		path := filepath.Join(g.dir, file.Name)
		changed, writeErr := writeIfChanged(path, file.Content)
		if writeErr != nil {
			err = writeErr
			return
		}
		if !changed {
			Logger().Debug("up to date", zap.String("file", path))
			continue
		}
		Logger().Info("generated", zap.String("file", path), zap.String("enum", file.Enum))
		written = append(written, path)
	}
	return
}

// writeIfChanged writes content to path unless the file already holds it.
func writeIfChanged(path string, content []byte) (changed bool, err error) {
	current, readErr := os.ReadFile(path)
	if readErr == nil && bytes.Equal(current, content) {
		return
	}
	if writeErr := os.WriteFile(path, content, 0o644); writeErr != nil {
		err = errors.New(
			"write generated file failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaPathKey, path),
			errors.WithWrap(writeErr),
		)
		return
	}
	changed = true
	return
}

// Drift describes a generated file whose content differs from what the
// generator would write now.
type Drift struct {
	Path string
	Enum string
	// Want and Have are short content digests. Have is empty when the file
	// does not exist.
	Want string
	Have string
}

// Check renders every enum and compares the result with the files on disk
// without writing anything.
func (g *Generator) Check() (drifts []Drift, err error) {
	files, renderErr := g.Render()
	if renderErr != nil {
		err = renderErr
		return
	}
	for _, file := range files {
		path := filepath.Join(g.dir, file.Name)
		drift := Drift{Path: path, Enum: file.Enum, Want: Digest(file.Content)}
		current, readErr := os.ReadFile(path)
		if readErr == nil {
			if bytes.Equal(current, file.Content) {
				continue
			}
			drift.Have = Digest(current)
		}
		Logger().Debug("stale", zap.String("file", path), zap.String("want", drift.Want), zap.String("have", drift.Have))
		drifts = append(drifts, drift)
	}
	return
}

// Digest returns the first 12 hex digits of the SHA3-256 of content.
func Digest(content []byte) string {
	sum := sha3.Sum256(content)
	return hex.EncodeToString(sum[:6])
}
