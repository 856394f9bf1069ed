package jsvalue

import "fmt"

// Call invokes an imported function. Static calls go to "_name";
// dynamic calls go through "dynCall_sig" with the target address as the
// first argument.
type Call struct {
	name string
	args []Value
	cat  Category
}

func CallFunc(name string, args ...Value) *Call {
	return &Call{name: "_" + name, args: coerceArgs(args), cat: Unknown}
}

// DynCallFunc calls through a function-table address. The first letter
// of sig is the result type: i for int, f or d for double, v for none.
func DynCallFunc(sig string, addr Value, args ...Value) *Call {
	if sig == "" {
		bail(fmt.Errorf("%w: empty dynamic call signature", ErrBadSignature))
	}
	all := make([]Value, 0, len(args)+1)
	all = append(all, addr)
	all = append(all, args...)
	c := &Call{name: "dynCall_" + sig, args: coerceArgs(all), cat: Unknown}
	switch sig[0] {
	case 'i':
		c.cat = Intish
	case 'f', 'd':
		c.cat = Doublish
	}
	return c
}

func coerceArgs(args []Value) []Value {
	out := make([]Value, len(args))
	for i, a := range args {
		switch {
		case is(a, Double), is(a, Signed), is(a, Unsigned):
			out[i] = a
		case is(a, Doublish):
			out[i] = DoubleCast(a)
		default:
			out[i] = SignedCast(a)
		}
	}
	return out
}

// Name is the imported name, prefix included.
func (c *Call) Name() string   { return c.name }
func (c *Call) Args() []Value  { return append([]Value(nil), c.args...) }
func (c *Call) String() string { return Render(c, nil) }
