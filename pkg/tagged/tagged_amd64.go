//go:build amd64

package tagged

// HardwareTagIgnore is false on amd64: without LAM every load needs the
// canonical address, so the tag is always masked before use.
const HardwareTagIgnore = false
