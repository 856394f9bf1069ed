// Package lower translates a trace into the statements of one asm.js
// function. Every operation becomes zero or more asmjs statements built
// from jsvalue expressions, so coercions and constant folding come from
// the expression constructors.
package lower

import (
	"errors"
	"fmt"
	"io"

	"jsjit/internal/asmjs"
	"jsjit/internal/ir"
	"jsjit/internal/jitframe"
	"jsjit/internal/jsvalue"
)

// FinishDescr is stored into jf_descr when a trace runs to its finish.
const FinishDescr = -1

type Options struct {
	// Name of the compiled function. Defaults to the trace name, then "trace".
	Name     string
	Layout   *jitframe.Layout
	TypeInfo *jitframe.TypeInfo
	// Log receives one progress line per operation when set.
	Log io.Writer
}

// Slot is a value's position in the frame scratch area, relative to
// the first slot.
type Slot struct {
	Value  ir.Value
	Offset int
}

// Exit is a way out of the compiled function. Index is the value the
// function leaves in jf_descr.
type Exit struct {
	Index int
	Op    *ir.Op
	Slots []Slot
}

type Result struct {
	Func   *asmjs.Func
	Inputs []Slot
	Exits  []Exit
	// FrameWords is the largest number of scratch words any entry or
	// exit uses.
	FrameWords int
}

type lowerer struct {
	opts   Options
	fn     *asmjs.Func
	res    *Result
	consts map[*ir.Box]ir.Value
	locals map[string]bool
	temps  int
	guards int
}

// Lower compiles t. Errors from every bad operation are joined; the
// result is nil if there were any.
func Lower(t *ir.Trace, opts Options) (*Result, error) {
	if opts.Layout == nil || opts.TypeInfo == nil {
		return nil, errors.New("lower: frame layout and type info are required")
	}
	name := opts.Name
	if name == "" {
		name = t.Name
	}
	if name == "" {
		name = "trace"
	}
	l := &lowerer{
		opts:   opts,
		fn:     &asmjs.Func{Name: asmjs.Ident(name), Loop: t.Loops()},
		consts: map[*ir.Box]ir.Value{},
		locals: map[string]bool{},
	}
	l.res = &Result{Func: l.fn}

	if err := l.loadInputs(t.Inputs); err != nil {
		return nil, err
	}
	var errs []error
	for i, op := range t.Ops {
		if op.Opcode == ir.OpJump && i != len(t.Ops)-1 {
			errs = append(errs, fmt.Errorf("op %d: %s: jump must be the last operation", i, op))
			continue
		}
		n := len(l.fn.Body)
		if err := l.lowerOp(t, op); err != nil {
			errs = append(errs, fmt.Errorf("op %d: %s: %w", i, op, err))
			continue
		}
		l.logf("%s: %d statements", op, len(l.fn.Body)-n)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return l.res, nil
}

// lowerOp runs one operation under jsvalue.Build, so a rejected
// expression aborts only this operation.
func (l *lowerer) lowerOp(t *ir.Trace, op *ir.Op) error {
	var err error
	if berr := jsvalue.Build(func() { err = l.op(t, op) }); berr != nil {
		return berr
	}
	return err
}

func (l *lowerer) logf(format string, args ...any) {
	if l.opts.Log == nil {
		return
	}
	fmt.Fprintf(l.opts.Log, "lower: "+format+"\n", args...)
}

// Locals

func (l *lowerer) declare(name string, k ir.Kind) {
	if l.locals[name] {
		return
	}
	l.locals[name] = true
	l.fn.Locals = append(l.fn.Locals, asmjs.Local{Name: name, Double: k == ir.KFloat})
}

func (l *lowerer) newTemp(k ir.Kind) string {
	name := asmjs.TempName(l.temps)
	l.temps++
	l.declare(name, k)
	return name
}

func coerce(k ir.Kind, v jsvalue.Value) jsvalue.Value {
	if k == ir.KFloat {
		return jsvalue.DoubleCast(v)
	}
	return jsvalue.IntCast(v)
}

func (l *lowerer) emit(s ...asmjs.Stmt) { l.fn.Body = append(l.fn.Body, s...) }

// assign binds the result of an operation. Constants are remembered and
// substituted into later uses instead of being stored.
func (l *lowerer) assign(dst *ir.Box, v jsvalue.Value) {
	switch c := v.(type) {
	case *ir.ConstInt, *ir.ConstPtr, *ir.ConstFloat:
		l.consts[dst] = c.(ir.Value)
		l.logf("%s folded to %s", dst, c)
		return
	}
	l.declare(dst.Name, dst.K)
	l.emit(asmjs.Assign{Dst: dst.Name, Value: coerce(dst.K, v)})
}

// Frame slots

// packSlots lays values out in the frame scratch area.
func (l *lowerer) packSlots(vs []ir.Value) ([]Slot, error) {
	sizes := make([]int, len(vs))
	for i, v := range vs {
		h, err := jsvalue.FromValue(v)
		if err != nil {
			return nil, err
		}
		sizes[i] = h.Size()
	}
	offs, words := l.opts.Layout.PackSlots(sizes)
	if words > l.res.FrameWords {
		l.res.FrameWords = words
	}
	slots := make([]Slot, len(vs))
	for i, v := range vs {
		slots[i] = Slot{Value: v, Offset: offs[i]}
	}
	return slots, nil
}

func (l *lowerer) loadInputs(inputs []*ir.Box) error {
	vs := make([]ir.Value, len(inputs))
	for i, b := range inputs {
		vs[i] = b
	}
	slots, err := l.packSlots(vs)
	if err != nil {
		return fmt.Errorf("inputs: %w", err)
	}
	l.res.Inputs = slots
	return jsvalue.Build(func() {
		for i, b := range inputs {
			l.declare(b.Name, b.K)
			addr := jsvalue.JitFrameSlotAddr(slots[i].Offset)
			if b.K == ir.KFloat {
				l.fn.Prologue = append(l.fn.Prologue, asmjs.LoadDouble{Dst: b.Name, Addr: addr})
				continue
			}
			h, _ := jsvalue.FromKind(b.K)
			l.fn.Prologue = append(l.fn.Prologue, asmjs.Assign{Dst: b.Name, Value: jsvalue.IntCast(jsvalue.NewHeapData(h, addr))})
		}
	})
}

// exitStmts spills vs to the frame, records descr and leaves.
func (l *lowerer) exitStmts(op *ir.Op, descr int, vs []ir.Value) ([]asmjs.Stmt, error) {
	slots, err := l.packSlots(vs)
	if err != nil {
		return nil, err
	}
	out := []asmjs.Stmt{asmjs.Comment{Text: fmt.Sprintf("%s, descr %d", op.Opcode, descr)}}
	for _, s := range slots {
		v, err := l.operand(s.Value)
		if err != nil {
			return nil, err
		}
		addr := jsvalue.JitFrameSlotAddr(s.Offset)
		if s.Value.Kind() == ir.KFloat {
			out = append(out, asmjs.StoreDouble{Addr: addr, Value: v})
			continue
		}
		h, _ := jsvalue.FromValue(s.Value)
		out = append(out, asmjs.Store{Heap: h, Addr: addr, Value: v})
	}
	out = append(out,
		asmjs.Store{Heap: jsvalue.Int32, Addr: jsvalue.JitFrameDescrAddr(), Value: &ir.ConstInt{V: int64(descr)}},
		asmjs.Return{Value: jsvalue.JitFrame},
	)
	l.res.Exits = append(l.res.Exits, Exit{Index: descr, Op: op, Slots: slots})
	return out, nil
}

// Operands

func (l *lowerer) operand(v ir.Value) (jsvalue.Value, error) {
	switch x := v.(type) {
	case *ir.Box:
		if c, ok := l.consts[x]; ok {
			return c, nil
		}
		return x, nil
	case *ir.ConstInt, *ir.ConstPtr, *ir.ConstFloat:
		return v, nil
	}
	return nil, fmt.Errorf("%s is not a value", v)
}

func isIntKind(k ir.Kind) bool { return k == ir.KInt || k == ir.KRef }

// operands resolves args, checking each against its expected kind:
// ir.KInt accepts int and ref, ir.KVoid accepts any value.
func (l *lowerer) operands(args []ir.Value, kinds ...ir.Kind) ([]jsvalue.Value, error) {
	out := make([]jsvalue.Value, len(args))
	for i, a := range args {
		want := ir.KVoid
		if i < len(kinds) {
			want = kinds[i]
		}
		switch {
		case want == ir.KInt && !isIntKind(a.Kind()):
			return nil, fmt.Errorf("argument %d must be an int or ref, got %s", i+1, a)
		case want == ir.KFloat && a.Kind() != ir.KFloat:
			return nil, fmt.Errorf("argument %d must be a float, got %s", i+1, a)
		}
		v, err := l.operand(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

func symbol(v ir.Value) (string, error) {
	s, ok := v.(*ir.Symbol)
	if !ok {
		return "", fmt.Errorf("expected a quoted name, got %s", v)
	}
	return s.Text, nil
}

func heapView(v ir.Value) (*jsvalue.HeapType, error) {
	name, err := symbol(v)
	if err != nil {
		return nil, err
	}
	return jsvalue.HeapTypeByName(name)
}
