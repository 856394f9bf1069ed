package jsvalue

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownValueKind  = errors.New("unknown value kind")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownOperator   = errors.New("unknown operator")
	ErrUnsupportedKind   = errors.New("unsupported kind")
	ErrUnsupportedSize   = errors.New("unsupported size")
	ErrCategoryViolation = errors.New("category violation")
	ErrWideHeapRead      = errors.New("heap read wider than 4 bytes")
	ErrBadSignature      = errors.New("bad call signature")
)

// BuildError reports a defect hit while constructing or emitting an
// expression tree. Constructors panic with it; Build turns it back into
// an error at the operation boundary.
type BuildError struct {
	Err error
}

func (e *BuildError) Error() string { return "jsvalue: " + e.Err.Error() }

func (e *BuildError) Unwrap() error { return e.Err }

func bail(err error) {
	panic(&BuildError{Err: err})
}

func violation(where string, v Value, want Category) {
	bail(fmt.Errorf("%w: %s operand %v is %v, want %v", ErrCategoryViolation, where, v, categoryOf(v), want))
}

// assertIs is only reached when sanityCheck is set.
func assertIs(where string, v Value, want Category) {
	if !is(v, want) {
		violation(where, v, want)
	}
}

// Build runs fn and returns the BuildError it raised, if any.
// Other panics propagate unchanged.
func Build(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			be, ok := r.(*BuildError)
			if !ok {
				panic(r)
			}
			err = be
		}
	}()
	fn()
	return nil
}
