package jsvalue

import "jsjit/internal/ir"

func zero() *ir.ConstInt { return &ir.ConstInt{V: 0} }

// IntCast yields v as an Int, adding "|0" when needed.
func IntCast(v Value) Value {
	if is(v, Int) {
		return v
	}
	return Or(v, zero())
}

func SignedCast(v Value) Value {
	if is(v, Signed) {
		return v
	}
	if is(v, Intish) {
		return Or(v, zero())
	}
	if sanityCheck {
		assertIs("signed cast", v, Double)
	}
	return UNeg(UNeg(v))
}

// UnsignedCast always yields a value of category Unsigned.
func UnsignedCast(v Value) Value {
	if is(v, Unsigned) {
		return v
	}
	if !is(v, Intish) {
		v = SignedCast(v)
	}
	return URShift(v, zero())
}

func DoubleCast(v Value) Value {
	if is(v, Double) {
		return v
	}
	return UPlus(v)
}
