package jsvalue

import (
	"fmt"

	"jsjit/internal/ir"
)

// Category is the numeric classification the asm.js validator assigns to
// an expression. The order of the constants is significant only for
// String; the subtype relation lives in Satisfies.
type Category int

const (
	Unknown Category = iota
	Doublish
	Double
	Intish
	Int
	Signed
	Unsigned
	Fixnum
)

var categoryNames = [...]string{
	Unknown:  "unknown",
	Doublish: "doublish",
	Double:   "double",
	Intish:   "intish",
	Int:      "int",
	Signed:   "signed",
	Unsigned: "unsigned",
	Fixnum:   "fixnum",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("category(%d)", int(c))
	}
	return categoryNames[c]
}

// Satisfies reports whether a value of category actual may be used where
// required is expected. Every category satisfies Unknown.
func Satisfies(actual, required Category) (bool, error) {
	switch required {
	case Unknown:
		return true, nil
	case Doublish:
		return actual == Doublish || actual == Double, nil
	case Double:
		return actual == Double, nil
	case Intish:
		return actual == Intish || actual == Int || actual == Signed ||
			actual == Unsigned || actual == Fixnum, nil
	case Int:
		return actual == Int || actual == Signed || actual == Unsigned ||
			actual == Fixnum, nil
	case Signed, Unsigned, Fixnum:
		return actual == required, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrUnknownCategory, required)
	}
}

// CategoryOf returns the declared category of v. Trace leaves are
// classified by kind: floats are Double, integers and references Fixnum.
// A nil value stands for an absent integer and is Fixnum.
func CategoryOf(v Value) (Category, error) {
	switch x := v.(type) {
	case nil:
		return Fixnum, nil
	case *ir.Box:
		return kindCategory(x.K, v)
	case *ir.ConstInt, *ir.ConstPtr:
		return Fixnum, nil
	case *ir.ConstFloat:
		return Double, nil
	case *Variable:
		return x.cat, nil
	case *HeapData:
		return x.heap.cat, nil
	case *UnaryOp:
		return x.cat, nil
	case *BinaryOp:
		return x.cat, nil
	case *Call:
		return x.cat, nil
	case *FrameAddr:
		return Intish, nil
	default:
		return Unknown, fmt.Errorf("%w: %T", ErrUnknownValueKind, v)
	}
}

func kindCategory(k ir.Kind, v Value) (Category, error) {
	switch k {
	case ir.KFloat:
		return Double, nil
	case ir.KInt, ir.KRef:
		return Fixnum, nil
	default:
		return Unknown, fmt.Errorf("%w: %v has kind %v", ErrUnknownValueKind, v, k)
	}
}

func categoryOf(v Value) Category {
	c, err := CategoryOf(v)
	if err != nil {
		bail(err)
	}
	return c
}

// Is reports whether v satisfies required. Like the node constructors it
// panics with a *BuildError on a value it cannot classify.
func Is(v Value, required Category) bool { return is(v, required) }

func is(v Value, required Category) bool {
	ok, err := Satisfies(categoryOf(v), required)
	if err != nil {
		bail(err)
	}
	return ok
}
