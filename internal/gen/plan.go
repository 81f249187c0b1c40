package gen

import (
	"fortio.org/safecast"
	"github.com/brickingsoft/tagdispatch"
	"go.uber.org/zap"
	"go/types"
	"golang.org/x/tools/go/packages"
	"sort"
	"strconv"
)

// EnumPlan is everything the templates need to render one enum.
type EnumPlan struct {
	Package  string
	Name     string
	Output   string
	Arena    bool
	Derive   Derive
	Variants []*VariantPlan
	Methods  []*MethodPlan
	// Contracts are implemented by the handle as a whole.
	Contracts []string
	Clone     bool
	// Bump is set when every variant is pointer-free, so arena builders may
	// allocate from a bump arena.
	Bump    bool
	Imports *importSet
}

type VariantPlan struct {
	Name string
	Type string
	Tag  uint8
	// CloneMethod is set when the variant deep-copies itself through its own
	// Clone method rather than by plain assignment.
	CloneMethod bool
	Duplicable  bool
	PointerFree bool
}

type MethodPlan struct {
	Name     string
	Contract string
	Params   []ParamPlan
	Results  []string
	Variadic bool
	Arms     []ArmPlan
}

type ParamPlan struct {
	Name string
	Type string
}

// ArmPlan says how one variant runs a method.
type ArmPlan struct {
	Variant *VariantPlan
	// Default is the receiver expression of the contract default, empty when
	// the variant implements the method itself.
	Default string
	// ByHandle passes the handle, rather than the variant pointer, as the
	// default's self.
	ByHandle bool
}

// generatedMethods are declared on every handle and cannot be contract
// methods.
var generatedMethods = map[string]bool{
	"Type": true, "Tagged": true, "IsNil": true, "Clone": true, "Free": true,
	"Equal": true, "Compare": true, "String": true,
}

// builderMethods are declared on every arena builder and cannot be variant
// names of arena enums.
var builderMethods = map[string]bool{
	"Reset": true, "Clear": true, "Close": true, "Stats": true,
}

// Plan resolves m against the loaded package.
func Plan(m *Manifest, pkg *packages.Package) (plans []*EnumPlan, err error) {
	plans = make([]*EnumPlan, 0, len(m.Enums))
	for _, e := range m.Enums {
		plan, planFailed := planEnum(m, pkg.Types, e)
		if planFailed != nil {
			plans = nil
			err = planFailed
			return
		}
		Logger().Debug("enum planned",
			zap.String("enum", plan.Name),
			zap.Int("variants", len(plan.Variants)),
			zap.Int("methods", len(plan.Methods)),
			zap.Bool("arena", plan.Arena),
			zap.Bool("clone", plan.Clone),
		)
		plans = append(plans, plan)
	}
	return
}

type contractMethod struct {
	contract Contract
	fn       *types.Func
	sig      *types.Signature
}

func planEnum(m *Manifest, pkg *types.Package, e Enum) (plan *EnumPlan, err error) {
	if len(e.Variants) == 0 {
		err = planErr(ErrEmptyEnum, e.Name, errMetaReasonKey, "variants is empty")
		return
	}
	if len(e.Variants) > tagdispatch.MaxVariants {
		err = planErr(ErrTooManyVariants, e.Name, errMetaReasonKey,
			strconv.Itoa(len(e.Variants))+" variants, at most "+strconv.Itoa(tagdispatch.MaxVariants))
		return
	}
	plan = &EnumPlan{
		Package: pkg.Name(),
		Name:    e.Name,
		Output:  e.Output,
		Arena:   e.Arena,
		Derive:  e.Derive,
		Bump:    true,
		Imports: newImportSet(pkg),
	}

	// variants
	named := make([]*types.Named, 0, len(e.Variants))
	seen := make(map[string]bool, len(e.Variants))
	allDuplicable := true
	for i, v := range e.Variants {
		if seen[v.Name] {
			err = planErr(ErrDuplicateVariant, e.Name, errMetaVariantKey, v.Name)
			return
		}
		seen[v.Name] = true
		if e.Arena && builderMethods[v.Name] {
			err = planErr(ErrMethodCollision, e.Name, errMetaVariantKey, v.Name+" collides with the arena builder method of the same name")
			return
		}
		t, _, ok := lookupNamed(pkg, v.Type)
		if !ok {
			err = planErr(ErrUnknownType, e.Name, errMetaVariantKey, v.Type)
			return
		}
		if isGeneric(t) {
			err = planErr(ErrGenericVariant, e.Name, errMetaVariantKey, v.Type)
			return
		}
		if _, isIface := t.Underlying().(*types.Interface); isIface {
			err = planErr(ErrUnknownType, e.Name, errMetaVariantKey, v.Type+" is an interface")
			return
		}
		tag, convErr := safecast.Conv[uint8](i)
		if convErr != nil {
			err = planErr(ErrTooManyVariants, e.Name, errMetaVariantKey, v.Name)
			return
		}
		vp := &VariantPlan{
			Name:        v.Name,
			Type:        v.Type,
			Tag:         tag,
			CloneMethod: hasCloneMethod(t, pkg),
			Duplicable:  duplicable(t),
			PointerFree: pointerFree(t),
		}
		if !vp.CloneMethod && !vp.Duplicable {
			allDuplicable = false
		}
		if !vp.PointerFree {
			plan.Bump = false
		}
		plan.Variants = append(plan.Variants, vp)
		named = append(named, t)
	}
	if err = checkNamesFree(pkg, e, plan.Bump); err != nil {
		return
	}

	// clone
	switch {
	case e.Arena:
		if e.Clone == CloneAlways {
			Logger().Info("clone ignored for arena enum, handles copy by value", zap.String("enum", e.Name))
		}
	case e.Clone == CloneNever:
	case allDuplicable:
		plan.Clone = true
	case e.Clone == CloneAlways:
		for _, vp := range plan.Variants {
			if !vp.CloneMethod && !vp.Duplicable {
				err = planErr(ErrNotDuplicable, e.Name, errMetaVariantKey, vp.Name)
				return
			}
		}
	}

	// contract methods
	methods, complete, collectErr := collectMethods(m, pkg, e)
	if collectErr != nil {
		err = collectErr
		return
	}
	plan.Contracts = complete
	for _, cm := range methods {
		mp := &MethodPlan{
			Name:     cm.fn.Name(),
			Contract: cm.contract.Name,
			Variadic: cm.sig.Variadic(),
		}
		params := cm.sig.Params()
		for i := 0; i < params.Len(); i++ {
			name := params.At(i).Name()
			if name == "" || name == "_" || name == "h" || name == "tagged" {
				name = "a" + strconv.Itoa(i)
			}
			typ := params.At(i).Type()
			var typeStr string
			if mp.Variadic && i == params.Len()-1 {
				typeStr = "..." + types.TypeString(typ.(*types.Slice).Elem(), plan.Imports.qualifier)
			} else {
				typeStr = types.TypeString(typ, plan.Imports.qualifier)
			}
			mp.Params = append(mp.Params, ParamPlan{Name: name, Type: typeStr})
		}
		results := cm.sig.Results()
		for i := 0; i < results.Len(); i++ {
			mp.Results = append(mp.Results, types.TypeString(results.At(i).Type(), plan.Imports.qualifier))
		}
		plan.Methods = append(plan.Methods, mp)
	}
	for i, mp := range plan.Methods {
		cm := methods[i]
		for j, vp := range plan.Variants {
			arm, armErr := resolveArm(pkg, e, cm, methods, named[j], vp)
			if armErr != nil {
				err = armErr
				return
			}
			mp.Arms = append(mp.Arms, arm)
		}
	}
	return
}

// collectMethods returns the dispatched methods of e's contracts, sorted by
// name, and the contracts the handle implements in full.
func collectMethods(m *Manifest, pkg *types.Package, e Enum) (methods []contractMethod, complete []string, err error) {
	owner := make(map[string]string)
	for _, name := range e.Contracts {
		c, _ := m.Contract(name)
		named, _, ok := lookupNamed(pkg, c.Name)
		if !ok {
			err = planErr(ErrUnknownContract, e.Name, errMetaContractKey, c.Name)
			return
		}
		if isGeneric(named) {
			err = planErr(ErrGenericContract, e.Name, errMetaContractKey, c.Name)
			return
		}
		iface, ok := named.Underlying().(*types.Interface)
		if !ok {
			err = planErr(ErrNotInterface, e.Name, errMetaContractKey, c.Name)
			return
		}
		if !iface.IsMethodSet() {
			err = planErr(ErrNotInterface, e.Name, errMetaContractKey, c.Name+" is a constraint")
			return
		}
		skip := make(map[string]bool, len(c.NoDispatch))
		for _, name := range c.NoDispatch {
			if obj, _, _ := types.LookupFieldOrMethod(named, false, pkg, name); obj == nil {
				err = planErr(ErrUnknownNoDispatch, e.Name, errMetaMethodKey, c.Name+"."+name)
				return
			}
			skip[name] = true
		}
		if len(skip) == 0 {
			complete = append(complete, c.Name)
		}
		for i := 0; i < iface.NumMethods(); i++ {
			fn := iface.Method(i)
			if skip[fn.Name()] {
				continue
			}
			if !fn.Exported() {
				err = planErr(ErrMethodCollision, e.Name, errMetaMethodKey, c.Name+"."+fn.Name()+" is unexported")
				return
			}
			if generatedMethods[fn.Name()] || isAccessorName(fn.Name(), e) {
				err = planErr(ErrMethodCollision, e.Name, errMetaMethodKey, c.Name+"."+fn.Name()+" collides with a generated method")
				return
			}
			if prev, dup := owner[fn.Name()]; dup {
				err = planErr(ErrMethodCollision, e.Name, errMetaMethodKey, fn.Name()+" is declared by both "+prev+" and "+c.Name)
				return
			}
			owner[fn.Name()] = c.Name
			methods = append(methods, contractMethod{
				contract: c,
				fn:       fn,
				sig:      fn.Type().(*types.Signature),
			})
		}
	}
	sort.SliceStable(methods, func(i, j int) bool {
		return methods[i].fn.Name() < methods[j].fn.Name()
	})
	return
}

func isAccessorName(name string, e Enum) bool {
	for _, v := range e.Variants {
		if name == "As"+v.Name {
			return true
		}
	}
	return false
}

// resolveArm picks the body of cm for one variant: the variant's own method
// with an identical signature, else the contract default.
func resolveArm(pkg *types.Package, e Enum, cm contractMethod, methods []contractMethod, variant *types.Named, vp *VariantPlan) (arm ArmPlan, err error) {
	arm.Variant = vp
	want := detach(cm.sig)
	if fn, ok := methodOf(variant, pkg, cm.fn.Name()); ok {
		if types.Identical(detach(fn.Type().(*types.Signature)), want) {
			return
		}
		err = planErr(ErrNoImplementation, e.Name, errMetaMethodKey,
			vp.Name+"."+signatureString(cm.fn.Name(), fn.Type().(*types.Signature), nil)+
				" does not match "+cm.contract.Name+"."+signatureString(cm.fn.Name(), cm.sig, nil))
		return
	}
	if cm.contract.Defaults == "" {
		err = planErr(ErrNoImplementation, e.Name, errMetaMethodKey, vp.Name+"."+cm.fn.Name())
		return
	}
	defaults, _, ok := lookupNamed(pkg, cm.contract.Defaults)
	if !ok {
		err = planErr(ErrMalformedDefault, e.Name, errMetaContractKey, cm.contract.Defaults+" is not a type of the package")
		return
	}
	if _, isStruct := defaults.Underlying().(*types.Struct); !isStruct {
		err = planErr(ErrMalformedDefault, e.Name, errMetaContractKey, cm.contract.Defaults+" must be a struct type")
		return
	}
	obj, _, indirect := types.LookupFieldOrMethod(defaults, true, pkg, cm.fn.Name())
	fn, ok := obj.(*types.Func)
	if !ok {
		err = planErr(ErrNoImplementation, e.Name, errMetaMethodKey, vp.Name+"."+cm.fn.Name()+" (no default on "+cm.contract.Defaults+")")
		return
	}
	if arm.Default, err = defaultReceiver(e, cm, defaults, fn, indirect); err != nil {
		return
	}
	self := fn.Type().(*types.Signature).Params().At(0).Type()
	if types.AssignableTo(types.NewPointer(variant), self) {
		return
	}
	if handleSatisfies(self, methods) {
		arm.ByHandle = true
		return
	}
	err = planErr(ErrMalformedDefault, e.Name, errMetaMethodKey,
		cm.contract.Defaults+"."+cm.fn.Name()+": self of type "+types.TypeString(self, nil)+" accepts neither *"+vp.Type+" nor the "+e.Name+" handle")
	return
}

// defaultReceiver checks the shape of a default method and returns the
// expression to call it on.
func defaultReceiver(e Enum, cm contractMethod, defaults *types.Named, fn *types.Func, indirect bool) (string, error) {
	sig := fn.Type().(*types.Signature)
	params := sig.Params()
	want := cm.sig.Params()
	malformed := func(reason string) error {
		return planErr(ErrMalformedDefault, e.Name, errMetaMethodKey, cm.contract.Defaults+"."+cm.fn.Name()+": "+reason)
	}
	if params.Len() != want.Len()+1 {
		return "", malformed("want self followed by the contract parameters")
	}
	if sig.Variadic() != cm.sig.Variadic() {
		return "", malformed("variadic mismatch")
	}
	for i := 0; i < want.Len(); i++ {
		if !types.Identical(params.At(i+1).Type(), want.At(i).Type()) {
			return "", malformed("parameter " + strconv.Itoa(i+1) + " has type " + types.TypeString(params.At(i+1).Type(), nil))
		}
	}
	if !types.Identical(sig.Results(), cm.sig.Results()) {
		return "", malformed("results differ from the contract")
	}
	_, ptrRecv := sig.Recv().Type().(*types.Pointer)
	if indirect || ptrRecv {
		return "(&" + defaults.Obj().Name() + "{})", nil
	}
	return defaults.Obj().Name() + "{}", nil
}

// handleSatisfies reports whether the generated handle, which gets exactly
// the dispatched methods, implements the interface self.
func handleSatisfies(self types.Type, methods []contractMethod) bool {
	iface, ok := self.Underlying().(*types.Interface)
	if !ok {
		return false
	}
	for i := 0; i < iface.NumMethods(); i++ {
		need := iface.Method(i)
		found := false
		for _, cm := range methods {
			if cm.fn.Name() == need.Name() && types.Identical(detach(cm.sig), detach(need.Type().(*types.Signature))) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func hasCloneMethod(t *types.Named, pkg *types.Package) bool {
	fn, ok := methodOf(t, pkg, "Clone")
	if !ok {
		return false
	}
	sig := fn.Type().(*types.Signature)
	return sig.Params().Len() == 0 && sig.Results().Len() == 1 && types.Identical(sig.Results().At(0).Type(), t)
}

// checkNamesFree rejects enums whose generated package-level names are
// already declared by hand. bump adds the constructors only generated for
// pointer-free arena enums.
func checkNamesFree(pkg *types.Package, e Enum, bump bool) error {
	names := []string{e.Name, e.Name + "Type"}
	if e.Arena {
		builder := "New" + e.Name + "ArenaBuilder"
		names = append(names, e.Name+"ArenaBuilder", builder)
		if bump {
			names = append(names, builder+"WithBump", builder+"WithExternalBump", builder+"WithTyped")
		}
	} else {
		for _, v := range e.Variants {
			names = append(names, "New"+e.Name+v.Name)
		}
	}
	for _, name := range names {
		if pkg.Scope().Lookup(name) != nil {
			return planErr(ErrNameTaken, e.Name, errMetaReasonKey, name)
		}
	}
	return nil
}
