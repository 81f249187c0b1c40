//go:build arm64

package tagged

// HardwareTagIgnore is true on arm64 where top-byte-ignore covers bits
// 56..63. Decoding still masks; this is informational only.
const HardwareTagIgnore = true
