package jsvalue

import "jsjit/internal/ir"

type evalFunc func(a, b int32) (int32, bool)

func truth(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// foldTable evaluates each foldable operator the way asm.js does on
// int32 operands. IMul and URShift have no entry and are never folded.
// Division by zero is left to the runtime.
var foldTable = [...]evalFunc{
	OpPlus:  func(a, b int32) (int32, bool) { return a + b, true },
	OpMinus: func(a, b int32) (int32, bool) { return a - b, true },
	OpMul:   func(a, b int32) (int32, bool) { return a * b, true },
	OpDiv: func(a, b int32) (int32, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	},
	OpMod: func(a, b int32) (int32, bool) {
		if b == 0 {
			return 0, false
		}
		return a % b, true
	},
	OpOr:        func(a, b int32) (int32, bool) { return a | b, true },
	OpAnd:       func(a, b int32) (int32, bool) { return a & b, true },
	OpXor:       func(a, b int32) (int32, bool) { return a ^ b, true },
	OpLShift:    func(a, b int32) (int32, bool) { return a << (uint32(b) & 31), true },
	OpRShift:    func(a, b int32) (int32, bool) { return a >> (uint32(b) & 31), true },
	OpLess:      func(a, b int32) (int32, bool) { return truth(a < b), true },
	OpLessEq:    func(a, b int32) (int32, bool) { return truth(a <= b), true },
	OpGreater:   func(a, b int32) (int32, bool) { return truth(a > b), true },
	OpGreaterEq: func(a, b int32) (int32, bool) { return truth(a >= b), true },
	OpEqual:     func(a, b int32) (int32, bool) { return truth(a == b), true },
	OpNotEqual:  func(a, b int32) (int32, bool) { return truth(a != b), true },
}

func constOperand(v Value) (int32, bool) {
	switch c := v.(type) {
	case *ir.ConstInt:
		return int32(c.V), true
	case *ir.ConstPtr:
		return int32(c.Addr), true
	}
	return 0, false
}

// FoldOrBuild returns the constant result of op when both operands are
// integer or pointer constants, and the built node otherwise.
func FoldOrBuild(op BinaryOperator, lhs, rhs Value) Value {
	if int(op) >= 0 && int(op) < len(foldTable) && foldTable[op] != nil {
		a, aok := constOperand(lhs)
		b, bok := constOperand(rhs)
		if aok && bok {
			if r, ok := foldTable[op](a, b); ok {
				return &ir.ConstInt{V: int64(r)}
			}
		}
	}
	return NewBinaryOp(op, lhs, rhs)
}

func Plus(lhs, rhs Value) Value        { return FoldOrBuild(OpPlus, lhs, rhs) }
func Minus(lhs, rhs Value) Value       { return FoldOrBuild(OpMinus, lhs, rhs) }
func Mul(lhs, rhs Value) Value         { return FoldOrBuild(OpMul, lhs, rhs) }
func Div(lhs, rhs Value) Value         { return FoldOrBuild(OpDiv, lhs, rhs) }
func Mod(lhs, rhs Value) Value         { return FoldOrBuild(OpMod, lhs, rhs) }
func Or(lhs, rhs Value) Value          { return FoldOrBuild(OpOr, lhs, rhs) }
func And(lhs, rhs Value) Value         { return FoldOrBuild(OpAnd, lhs, rhs) }
func Xor(lhs, rhs Value) Value         { return FoldOrBuild(OpXor, lhs, rhs) }
func LShift(lhs, rhs Value) Value      { return FoldOrBuild(OpLShift, lhs, rhs) }
func RShift(lhs, rhs Value) Value      { return FoldOrBuild(OpRShift, lhs, rhs) }
func LessThan(lhs, rhs Value) Value    { return FoldOrBuild(OpLess, lhs, rhs) }
func LessThanEq(lhs, rhs Value) Value  { return FoldOrBuild(OpLessEq, lhs, rhs) }
func GreaterThan(lhs, rhs Value) Value { return FoldOrBuild(OpGreater, lhs, rhs) }
func GreaterThanEq(lhs, rhs Value) Value {
	return FoldOrBuild(OpGreaterEq, lhs, rhs)
}
func Equal(lhs, rhs Value) Value    { return FoldOrBuild(OpEqual, lhs, rhs) }
func NotEqual(lhs, rhs Value) Value { return FoldOrBuild(OpNotEqual, lhs, rhs) }

// IMul is the 32-bit integer multiply. It is never folded.
func IMul(lhs, rhs Value) Value { return NewBinaryOp(OpIMul, lhs, rhs) }

func URShift(lhs, rhs Value) Value { return NewBinaryOp(OpURShift, lhs, rhs) }
