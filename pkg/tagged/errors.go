package tagged

import "fmt"

// InvariantError is the panic value of a failed invariant check. It signals a
// bug in generated or hand-written packing code, never a user-facing failure.
type InvariantError struct {
	Op     string
	Tag    uint8
	Addr   uintptr
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("tagged: %s(tag=%d, addr=%#x): %s", e.Op, e.Tag, e.Addr, e.Reason)
}

// InvalidTag builds the panic value used by generated dispatch code when a
// handle carries a tag that no variant was assigned.
func InvalidTag(tag uint8) error {
	return &InvariantError{Op: "dispatch", Tag: tag, Reason: "invalid tag"}
}
