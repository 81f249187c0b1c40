package gen

import (
	"github.com/brickingsoft/errors"
	"go.uber.org/zap"
	"go/parser"
	"go/token"
	"go/types"
	"golang.org/x/tools/go/packages"
	"os"
	"path/filepath"
	"strings"
)

// Inspector loads the Go package a manifest describes.
type Inspector struct {
	dir string
	// outputs are files the generator owns. Their current content is hidden
	// from the type checker so a stale or broken generated file never
	// affects the next generation.
	outputs []string
}

func NewInspector(dir string, outputs []string) *Inspector {
	return &Inspector{dir: dir, outputs: outputs}
}

// Load type-checks the package in the inspector's directory.
func (ins *Inspector) Load() (pkg *packages.Package, err error) {
	dir, absErr := filepath.Abs(ins.dir)
	if absErr != nil {
		err = loadErr(ins.dir, absErr)
		return
	}
	overlay, overlayErr := ins.overlay(dir)
	if overlayErr != nil {
		err = loadErr(dir, overlayErr)
		return
	}
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax |
			packages.NeedImports,
		Dir:     dir,
		Overlay: overlay,
	}
	pkgs, loadFailed := packages.Load(cfg, ".")
	if loadFailed != nil {
		err = loadErr(dir, loadFailed)
		return
	}
	if len(pkgs) != 1 {
		err = loadErr(dir, errors.New("expected exactly one package"))
		return
	}
	pkg = pkgs[0]
	if pkg.Types == nil || pkg.Types.Scope() == nil {
		pkg = nil
		err = loadErr(dir, errors.New("package has no type information"))
		return
	}
	for _, pe := range pkg.Errors {
		// user code that refers to generated declarations fails to type-check
		// while those are hidden; the declarations we need are still there.
		Logger().Debug("package error while inspecting", zap.String("dir", dir), zap.String("error", pe.Msg))
	}
	Logger().Debug("package loaded", zap.String("path", pkg.PkgPath), zap.Int("files", len(pkg.GoFiles)))
	return
}

// overlay replaces every existing output file by its package clause alone.
func (ins *Inspector) overlay(dir string) (map[string][]byte, error) {
	overlay := make(map[string][]byte, len(ins.outputs))
	for _, name := range ins.outputs {
		path := filepath.Join(dir, name)
		src, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		pkgName, err := packageClause(path, src)
		if err != nil {
			return nil, err
		}
		overlay[path] = []byte("package " + pkgName + "\n")
	}
	return overlay, nil
}

func packageClause(path string, src []byte) (string, error) {
	file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.PackageClauseOnly)
	if err != nil {
		return "", err
	}
	return file.Name.Name, nil
}

func loadErr(dir string, cause error) error {
	return errors.From(
		ErrLoad,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaPathKey, dir),
		errors.WithWrap(cause),
	)
}

// lookupNamed finds a non-generic named type declared at package level.
func lookupNamed(pkg *types.Package, name string) (*types.Named, *types.TypeName, bool) {
	obj, ok := pkg.Scope().Lookup(name).(*types.TypeName)
	if !ok || obj.IsAlias() {
		return nil, nil, false
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return nil, nil, false
	}
	return named, obj, true
}

// methodOf returns the method name of *T (own or promoted), if any.
func methodOf(named *types.Named, pkg *types.Package, name string) (*types.Func, bool) {
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(named), true, pkg, name)
	fn, ok := obj.(*types.Func)
	return fn, ok
}

// detach drops the receiver of sig.
func detach(sig *types.Signature) *types.Signature {
	return types.NewSignatureType(nil, nil, nil, sig.Params(), sig.Results(), sig.Variadic())
}

// duplicable reports whether a plain copy of a value of t is a deep copy:
// t holds no pointers, slices, maps, channels, functions or interfaces.
// Strings are immutable and count as duplicable.
func duplicable(t types.Type) bool {
	return walkFlat(t, true)
}

// pointerFree reports whether t holds no Go pointers at all, strings
// included, so that its values may live in memory the collector never scans.
func pointerFree(t types.Type) bool {
	return walkFlat(t, false)
}

func walkFlat(t types.Type, stringsOK bool) bool {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch u.Kind() {
		case types.UnsafePointer, types.Invalid:
			return false
		case types.String, types.UntypedString:
			return stringsOK
		}
		return true
	case *types.Array:
		return u.Len() == 0 || walkFlat(u.Elem(), stringsOK)
	case *types.Struct:
		for i := 0; i < u.NumFields(); i++ {
			if !walkFlat(u.Field(i).Type(), stringsOK) {
				return false
			}
		}
		return true
	}
	return false
}

func isGeneric(named *types.Named) bool {
	return named.TypeParams().Len() > 0
}

func signatureString(name string, sig *types.Signature, qf types.Qualifier) string {
	return name + strings.TrimPrefix(types.TypeString(detach(sig), qf), "func")
}
