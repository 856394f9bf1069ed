package jsvalue

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"jsjit/internal/ir"
)

// Buffer receives emitted text.
type Buffer interface {
	EmitRaw(text string)
	// EmitValue emits a nested operand, normally by calling Emit.
	EmitValue(v Value)
	// RegisterImport records a function the module must import.
	// Registering the same name twice has no effect.
	RegisterImport(name string)
	// Layout may be nil, in which case frame addresses are written
	// symbolically.
	Layout() FrameLayout
}

// Emit writes v to b, depth first and left to right.
func Emit(b Buffer, v Value) {
	switch x := v.(type) {
	case *ir.Box:
		b.EmitRaw(x.Name)
	case *ir.ConstInt:
		b.EmitRaw(formatInt(x.V))
	case *ir.ConstPtr:
		b.EmitRaw(formatInt(x.Addr))
	case *ir.ConstFloat:
		b.EmitRaw(FormatDouble(x.V))
	case *Variable:
		b.EmitRaw(x.name)
	case *HeapData:
		b.EmitRaw(x.heap.name)
		b.EmitRaw("[(")
		b.EmitValue(x.addr)
		b.EmitRaw(")>>" + strconv.Itoa(int(x.heap.shift)) + "]")
	case *UnaryOp:
		b.EmitRaw(x.op.String())
		b.EmitRaw("(")
		b.EmitValue(x.operand)
		b.EmitRaw(")")
	case *BinaryOp:
		emitBinary(b, x)
	case *Call:
		b.RegisterImport(x.name)
		b.EmitRaw(x.name)
		b.EmitRaw("(")
		for i, a := range x.args {
			if i > 0 {
				b.EmitRaw(",")
			}
			b.EmitValue(a)
		}
		b.EmitRaw(")")
	case *FrameAddr:
		if l := b.Layout(); l != nil {
			b.EmitRaw("jitframe + " + strconv.Itoa(x.Resolve(l)))
		} else if x.field == FieldSlot {
			b.EmitRaw(fmt.Sprintf("jitframe + %s[%d]", x.field, x.offset))
		} else {
			b.EmitRaw("jitframe + " + x.field.String())
		}
	default:
		bail(fmt.Errorf("%w: cannot emit %T", ErrUnknownValueKind, v))
	}
}

func emitBinary(b Buffer, x *BinaryOp) {
	if x.op == OpIMul {
		if _, ok := x.rhs.(*ir.ConstInt); ok {
			b.EmitRaw("(")
			b.EmitValue(x.lhs)
			b.EmitRaw(")*")
			b.EmitValue(x.rhs)
			return
		}
		b.EmitRaw("imul(")
		b.EmitValue(x.lhs)
		b.EmitRaw(",")
		b.EmitValue(x.rhs)
		b.EmitRaw(")|0")
		return
	}
	b.EmitRaw("(")
	b.EmitValue(x.lhs)
	b.EmitRaw(")" + x.op.Text() + "(")
	b.EmitValue(x.rhs)
	b.EmitRaw(")")
}

// Integer constants are emitted as their 32-bit two's-complement value.
func formatInt(v int64) string {
	return strconv.FormatInt(int64(int32(v)), 10)
}

// FormatDouble renders f as an asm.js double literal. Literals must
// contain a decimal point; NaN and the infinities are written as
// constant divisions.
func FormatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "(0.0/0.0)"
	case math.IsInf(f, 1):
		return "(1.0/0.0)"
	case math.IsInf(f, -1):
		return "(-1.0/0.0)"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.Contains(s, ".") {
		return s
	}
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		return s[:i] + ".0" + s[i:]
	}
	return s + ".0"
}

type textBuffer struct {
	sb     strings.Builder
	layout FrameLayout
}

func (t *textBuffer) EmitRaw(text string)   { t.sb.WriteString(text) }
func (t *textBuffer) EmitValue(v Value)     { Emit(t, v) }
func (t *textBuffer) RegisterImport(string) {}
func (t *textBuffer) Layout() FrameLayout   { return t.layout }

// Render returns the text of v on its own. layout may be nil.
func Render(v Value, layout FrameLayout) string {
	t := &textBuffer{layout: layout}
	Emit(t, v)
	return t.sb.String()
}
