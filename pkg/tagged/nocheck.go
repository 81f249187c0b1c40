//go:build tagged_nocheck

package tagged

const checks = false
