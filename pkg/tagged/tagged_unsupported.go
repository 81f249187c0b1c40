//go:build !amd64 && !arm64

package tagged

// Only amd64 and arm64 guarantee bits 57..63 of a user-space pointer are
// zero. Referencing an undefined name stops the build everywhere else.
const HardwareTagIgnore = tagged_requires_amd64_or_arm64
