package block

import (
	"errors"
	"fmt"
)

var (
	// ErrExhausted is returned when the pool has no free block. It is a
	// recoverable condition: the caller substitutes silence.
	ErrExhausted = errors.New("block pool exhausted")
	// ErrContract is the panic value for contract violations in debug
	// builds.
	ErrContract = errors.New("block contract violation")
	// ErrCapacity is returned when the pool capacity is out of range.
	ErrCapacity = errors.New("invalid pool capacity")
)

// Assert panics with ErrContract when cond is false and the package was
// built with the debug tag. Release builds ignore the failure and the
// caller degrades to a no-op.
func Assert(cond bool, format string, args ...interface{}) {
	if !Debug || cond {
		return
	}
	panic(fmt.Errorf("%w: %s", ErrContract, fmt.Sprintf(format, args...)))
}
