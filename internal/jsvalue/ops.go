package jsvalue

import (
	"fmt"

	"jsjit/internal/ir"
)

// UPlus coerces its operand to double. Operands of unknown category
// (foreign call results) are passed through as is.
func UPlus(v Value) *UnaryOp {
	c := categoryOf(v)
	if c != Unknown && !is(v, Doublish) && !is(v, Signed) && !is(v, Unsigned) {
		v = SignedCast(v)
	}
	return &UnaryOp{op: OpUPlus, operand: v, cat: Double}
}

func UMinus(v Value) *UnaryOp {
	switch {
	case is(v, Int):
		return &UnaryOp{op: OpUMinus, operand: v, cat: Intish}
	case is(v, Doublish):
		return &UnaryOp{op: OpUMinus, operand: v, cat: Double}
	}
	if sanityCheck {
		assertIs("unary minus", v, Intish)
	}
	return &UnaryOp{op: OpUMinus, operand: IntCast(v), cat: Intish}
}

// UNeg is bitwise not.
func UNeg(v Value) *UnaryOp {
	return &UnaryOp{op: OpUNeg, operand: v, cat: Signed}
}

// UNot is logical not.
func UNot(v Value) *UnaryOp {
	if sanityCheck {
		assertIs("logical not", v, Intish)
	}
	if !is(v, Int) {
		v = IntCast(v)
	}
	return &UnaryOp{op: OpUNot, operand: v, cat: Int}
}

// NewBinaryOp builds op over lhs and rhs with the operand coercions the
// operator needs. It never folds; see FoldOrBuild.
func NewBinaryOp(op BinaryOperator, lhs, rhs Value) *BinaryOp {
	switch op {
	case OpPlus, OpMinus:
		return newAdditive(op, lhs, rhs)
	case OpMul:
		if sanityCheck {
			assertIs("double multiply", lhs, Doublish)
			assertIs("double multiply", rhs, Doublish)
		}
		return &BinaryOp{op: op, lhs: lhs, rhs: rhs, cat: Double}
	case OpIMul:
		return newIMul(lhs, rhs)
	case OpDiv, OpMod:
		return newDivish(op, lhs, rhs, Intish, Double)
	case OpOr, OpAnd, OpXor, OpLShift, OpRShift:
		return &BinaryOp{op: op, lhs: lhs, rhs: rhs, cat: Signed}
	case OpURShift:
		return &BinaryOp{op: op, lhs: lhs, rhs: rhs, cat: Unsigned}
	case OpLess, OpLessEq, OpGreater, OpGreaterEq, OpEqual, OpNotEqual:
		return newDivish(op, lhs, rhs, Int, Int)
	}
	bail(fmt.Errorf("%w: %d", ErrUnknownOperator, int(op)))
	return nil
}

// IsComparison reports whether o yields a 0/1 truth value.
func (o BinaryOperator) IsComparison() bool {
	return o >= OpLess && o <= OpNotEqual
}

func newAdditive(op BinaryOperator, lhs, rhs Value) *BinaryOp {
	if is(lhs, Intish) {
		if !is(lhs, Int) {
			lhs = IntCast(lhs)
		}
		if !is(rhs, Int) {
			rhs = IntCast(rhs)
		}
		return &BinaryOp{op: op, lhs: lhs, rhs: rhs, cat: Intish}
	}
	if !is(lhs, Double) {
		lhs = DoubleCast(lhs)
	}
	if !is(rhs, Double) {
		rhs = DoubleCast(rhs)
	}
	return &BinaryOp{op: op, lhs: lhs, rhs: rhs, cat: Double}
}

func newIMul(lhs, rhs Value) *BinaryOp {
	if sanityCheck {
		assertIs("imul", lhs, Intish)
		assertIs("imul", rhs, Intish)
	}
	if !is(lhs, Int) {
		lhs = IntCast(lhs)
	}
	if !is(rhs, Int) {
		rhs = IntCast(rhs)
	}
	cat := Signed
	if _, ok := rhs.(*ir.ConstInt); ok {
		cat = Intish
	}
	return &BinaryOp{op: OpIMul, lhs: lhs, rhs: rhs, cat: cat}
}

// newDivish covers division, modulus and comparisons. Integer operands
// must agree on signedness; anything else is compared as doubles.
func newDivish(op BinaryOperator, lhs, rhs Value, intCat, floatCat Category) *BinaryOp {
	switch {
	case is(lhs, Signed):
		if !is(rhs, Signed) {
			rhs = SignedCast(rhs)
		}
		return &BinaryOp{op: op, lhs: lhs, rhs: rhs, cat: intCat}
	case is(lhs, Unsigned):
		if !is(rhs, Unsigned) {
			rhs = UnsignedCast(rhs)
		}
		return &BinaryOp{op: op, lhs: lhs, rhs: rhs, cat: intCat}
	case is(lhs, Intish):
		lhs = SignedCast(lhs)
		if !is(rhs, Signed) {
			rhs = SignedCast(rhs)
		}
		return &BinaryOp{op: op, lhs: lhs, rhs: rhs, cat: intCat}
	}
	if sanityCheck {
		want := Doublish
		if op.IsComparison() {
			want = Double
		}
		assertIs(op.String(), lhs, want)
		assertIs(op.String(), rhs, want)
	}
	return &BinaryOp{op: op, lhs: lhs, rhs: rhs, cat: floatCat}
}
