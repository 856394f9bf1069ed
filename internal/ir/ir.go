package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind is the coarse type of a trace value.
type Kind int

const (
	KVoid Kind = iota
	KInt
	KRef
	KFloat
)

func (k Kind) String() string {
	switch k {
	case KInt:
		return "int"
	case KRef:
		return "ref"
	case KFloat:
		return "float"
	default:
		return "void"
	}
}

// Prefix is the leading character of box names of this kind.
func (k Kind) Prefix() byte {
	switch k {
	case KInt:
		return 'i'
	case KRef:
		return 'p'
	case KFloat:
		return 'f'
	default:
		return 'v'
	}
}

// KindOfName derives a box kind from its name prefix.
func KindOfName(name string) (Kind, bool) {
	if len(name) < 2 {
		return KVoid, false
	}
	for i := 1; i < len(name); i++ {
		if name[i] < '0' || name[i] > '9' {
			return KVoid, false
		}
	}
	switch name[0] {
	case 'i':
		return KInt, true
	case 'p':
		return KRef, true
	case 'f':
		return KFloat, true
	default:
		return KVoid, false
	}
}

// Values. ExprNode lets trace values reach the asm.js expression
// builder, which rejects symbols and void boxes.
type Value interface {
	Kind() Kind
	String() string
	ExprNode()
}

// Box is a trace variable. Its name doubles as the target local name.
type Box struct {
	Name string
	K    Kind
}

func (b *Box) Kind() Kind     { return b.K }
func (b *Box) String() string { return b.Name }

type ConstInt struct {
	V int64
}

func (*ConstInt) Kind() Kind       { return KInt }
func (c *ConstInt) String() string { return strconv.FormatInt(c.V, 10) }

// ConstPtr is a constant address. It formats as ConstPtr(N) in trace text.
type ConstPtr struct {
	Addr int64
}

func (*ConstPtr) Kind() Kind       { return KRef }
func (c *ConstPtr) String() string { return fmt.Sprintf("ConstPtr(%d)", c.Addr) }

type ConstFloat struct {
	V float64
}

func (*ConstFloat) Kind() Kind       { return KFloat }
func (c *ConstFloat) String() string { return FormatFloat(c.V) }

// Symbol is a quoted immediate (function name, call signature, heap view).
// It is never an expression operand.
type Symbol struct {
	Text string
}

func (*Symbol) Kind() Kind       { return KVoid }

func (*Box) ExprNode()        {}
func (*ConstInt) ExprNode()   {}
func (*ConstPtr) ExprNode()   {}
func (*ConstFloat) ExprNode() {}
func (*Symbol) ExprNode()     {}
func (s *Symbol) String() string { return strconv.Quote(s.Text) }

// FormatFloat renders f so that it always reads back as a float literal.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Operations
type Op struct {
	Opcode   Opcode
	Args     []Value
	Result   *Box    // nil for operations without a value
	FailArgs []Value // guards only
}

func (o *Op) String() string {
	var sb strings.Builder
	if o.Result != nil {
		sb.WriteString(o.Result.Name)
		sb.WriteString(" = ")
	}
	sb.WriteString(string(o.Opcode))
	sb.WriteByte('(')
	writeValues(&sb, o.Args)
	sb.WriteByte(')')
	if IsGuard(o.Opcode) {
		sb.WriteString(" [")
		writeValues(&sb, o.FailArgs)
		sb.WriteByte(']')
	}
	return sb.String()
}

// Trace is a linear sequence of operations over a set of input boxes.
type Trace struct {
	Name   string
	Inputs []*Box
	Ops    []*Op
}

// Loops reports whether the trace ends in a jump back to its inputs.
func (t *Trace) Loops() bool {
	return len(t.Ops) > 0 && t.Ops[len(t.Ops)-1].Opcode == OpJump
}

func (t *Trace) Format() string {
	var sb strings.Builder
	if t == nil {
		return ""
	}
	if t.Name != "" {
		sb.WriteString("# trace ")
		sb.WriteString(t.Name)
		sb.WriteByte('\n')
	}
	sb.WriteByte('[')
	for i, b := range t.Inputs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(b.Name)
	}
	sb.WriteString("]\n")
	for _, op := range t.Ops {
		sb.WriteString(op.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeValues(sb *strings.Builder, vs []Value) {
	for i, v := range vs {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
}
