// Package gen turns a tagdispatch manifest into Go source.
//
// The manifest (tagdispatch.yaml or tagdispatch.toml, next to the Go package
// it describes) names contracts, which are interfaces declared in the
// package, and enums, which list the concrete variant types of one handle
// type. The generator:
//
//   - loads the package with go/packages, hiding files it generated before;
//   - resolves every contract method for every variant: the variant's own
//     method, else the contract default, else a generation error;
//   - assigns tags 0..N-1 in declaration order;
//   - renders one file per enum with text/template and go/format.
//
// Every failure is reported at generation time. The generated code has no
// recoverable error path of its own.
package gen
