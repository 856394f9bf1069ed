// Package jsvalue builds asm.js expression trees whose validator category
// is known at every node. Constructors insert the coercions asm.js
// requires, so a tree that was built is a tree that validates.
package jsvalue

import "fmt"

// Value is an expression operand: a trace box or constant from package
// ir, or one of the node types below. ExprNode marks the members of the
// set; CategoryOf and Emit reject an ir value that is not an operand.
type Value interface {
	ExprNode()
	String() string
}

// Variable is a named asm.js local or parameter.
type Variable struct {
	name string
	cat  Category
}

func NewVariable(name string, cat Category) *Variable {
	return &Variable{name: name, cat: cat}
}

func IntVar(name string) *Variable    { return NewVariable(name, Int) }
func DoubleVar(name string) *Variable { return NewVariable(name, Double) }

// Well-known variables of every compiled function.
var (
	TempDoublePtr = IntVar("tempDoublePtr")
	JitFrame      = IntVar("jitframe")
	Goto          = IntVar("goto")
)

func (*Variable) ExprNode()  {}
func (*HeapData) ExprNode()  {}
func (*UnaryOp) ExprNode()   {}
func (*BinaryOp) ExprNode()  {}
func (*Call) ExprNode()      {}
func (*FrameAddr) ExprNode() {}

func (v *Variable) Name() string   { return v.name }
func (v *Variable) String() string { return v.name }

// HeapData reads one element of a heap view.
type HeapData struct {
	heap *HeapType
	addr Value
}

func NewHeapData(heap *HeapType, addr Value) *HeapData {
	if sanityCheck && heap.Size() > 4 {
		bail(fmt.Errorf("%w: %s", ErrWideHeapRead, heap.name))
	}
	if !is(addr, Intish) {
		addr = IntCast(addr)
	}
	return &HeapData{heap: heap, addr: addr}
}

func (h *HeapData) Heap() *HeapType { return h.heap }
func (h *HeapData) Addr() Value     { return h.addr }
func (h *HeapData) String() string  { return Render(h, nil) }

type UnaryOperator int

const (
	OpUPlus UnaryOperator = iota
	OpUMinus
	OpUNeg
	OpUNot
)

func (o UnaryOperator) String() string {
	switch o {
	case OpUPlus:
		return "+"
	case OpUMinus:
		return "-"
	case OpUNeg:
		return "~"
	case OpUNot:
		return "!"
	default:
		return fmt.Sprintf("unary(%d)", int(o))
	}
}

type UnaryOp struct {
	op      UnaryOperator
	operand Value
	cat     Category
}

func (u *UnaryOp) Op() UnaryOperator { return u.op }
func (u *UnaryOp) Operand() Value    { return u.operand }
func (u *UnaryOp) String() string    { return Render(u, nil) }

type BinaryOperator int

const (
	OpPlus BinaryOperator = iota
	OpMinus
	OpMul
	OpIMul
	OpDiv
	OpMod
	OpOr
	OpAnd
	OpXor
	OpLShift
	OpRShift
	OpURShift
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
	OpEqual
	OpNotEqual
)

var binaryText = [...]string{
	OpPlus:      "+",
	OpMinus:     "-",
	OpMul:       "*",
	OpIMul:      "",
	OpDiv:       "/",
	OpMod:       "%",
	OpOr:        "|",
	OpAnd:       "&",
	OpXor:       "^",
	OpLShift:    "<<",
	OpRShift:    ">>",
	OpURShift:   ">>>",
	OpLess:      "<",
	OpLessEq:    "<=",
	OpGreater:   ">",
	OpGreaterEq: ">=",
	OpEqual:     "==",
	OpNotEqual:  "!=",
}

// Text is the infix operator. IMul has none.
func (o BinaryOperator) Text() string {
	if o < 0 || int(o) >= len(binaryText) {
		return ""
	}
	return binaryText[o]
}

func (o BinaryOperator) String() string {
	switch {
	case o == OpIMul:
		return "imul"
	case o.Text() == "":
		return fmt.Sprintf("binary(%d)", int(o))
	default:
		return o.Text()
	}
}

type BinaryOp struct {
	op       BinaryOperator
	lhs, rhs Value
	cat      Category
}

func (b *BinaryOp) Op() BinaryOperator { return b.op }
func (b *BinaryOp) LHS() Value         { return b.lhs }
func (b *BinaryOp) RHS() Value         { return b.rhs }
func (b *BinaryOp) String() string     { return Render(b, nil) }
