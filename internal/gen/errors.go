package gen

import (
	"github.com/brickingsoft/errors"
)

var (
	ErrManifest          = errors.Define("invalid manifest")
	ErrNoManifest        = errors.Define("no tagdispatch manifest found")
	ErrLoad              = errors.Define("load package failed")
	ErrUnknownContract   = errors.Define("unknown contract")
	ErrNotInterface      = errors.Define("contract is not an interface")
	ErrGenericContract   = errors.Define("generic contracts are not supported")
	ErrUnknownType       = errors.Define("unknown variant type")
	ErrGenericVariant    = errors.Define("generic variant types are not supported")
	ErrEmptyEnum         = errors.Define("enum declares no variants")
	ErrTooManyVariants   = errors.Define("too many variants")
	ErrDuplicateVariant  = errors.Define("duplicate variant")
	ErrMethodCollision   = errors.Define("method name collision")
	ErrNameTaken         = errors.Define("generated name is already declared")
	ErrNoImplementation  = errors.Define("contract method has no implementation for this variant")
	ErrMalformedDefault  = errors.Define("malformed contract default")
	ErrUnknownNoDispatch = errors.Define("no_dispatch names an unknown method")
	ErrNotDuplicable     = errors.Define("variant cannot be deep-copied")
	ErrDuplicateOutput   = errors.Define("two enums write the same file")
)

const (
	errMetaPkgKey      = "pkg"
	errMetaPkgVal      = "gen"
	errMetaEnumKey     = "enum"
	errMetaVariantKey  = "variant"
	errMetaContractKey = "contract"
	errMetaMethodKey   = "method"
	errMetaPathKey     = "path"
	errMetaReasonKey   = "reason"
)

// planErr tags sentinel with the enum it was raised for and one more
// key/value pair.
func planErr(sentinel error, enum string, key string, val string) error {
	return errors.From(
		sentinel,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaEnumKey, enum),
		errors.WithMeta(key, val),
	)
}
