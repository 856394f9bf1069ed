package lower

import (
	"fmt"

	"jsjit/internal/asmjs"
	"jsjit/internal/ir"
	"jsjit/internal/jsvalue"
	"jsjit/internal/stringlit"
)

type binaryFunc func(lhs, rhs jsvalue.Value) jsvalue.Value

type unaryFunc func(v jsvalue.Value) jsvalue.Value

func unsigned(f binaryFunc) binaryFunc {
	return func(lhs, rhs jsvalue.Value) jsvalue.Value {
		return f(jsvalue.UnsignedCast(lhs), jsvalue.UnsignedCast(rhs))
	}
}

var intBinary = map[ir.Opcode]binaryFunc{
	ir.OpIntAdd:      jsvalue.Plus,
	ir.OpIntSub:      jsvalue.Minus,
	ir.OpIntMul:      jsvalue.IMul,
	ir.OpIntFloorDiv: jsvalue.Div,
	ir.OpIntMod:      jsvalue.Mod,
	ir.OpIntAnd:      jsvalue.And,
	ir.OpIntOr:       jsvalue.Or,
	ir.OpIntXor:      jsvalue.Xor,
	ir.OpIntLshift:   jsvalue.LShift,
	ir.OpIntRshift:   jsvalue.RShift,
	ir.OpUintRshift:  jsvalue.URShift,

	ir.OpIntLt: jsvalue.LessThan,
	ir.OpIntLe: jsvalue.LessThanEq,
	ir.OpIntGt: jsvalue.GreaterThan,
	ir.OpIntGe: jsvalue.GreaterThanEq,
	ir.OpIntEq: jsvalue.Equal,
	ir.OpIntNe: jsvalue.NotEqual,
	ir.OpPtrEq: jsvalue.Equal,
	ir.OpPtrNe: jsvalue.NotEqual,

	ir.OpUintLt: unsigned(jsvalue.LessThan),
	ir.OpUintLe: unsigned(jsvalue.LessThanEq),
	ir.OpUintGt: unsigned(jsvalue.GreaterThan),
	ir.OpUintGe: unsigned(jsvalue.GreaterThanEq),
}

var floatBinary = map[ir.Opcode]binaryFunc{
	ir.OpFloatAdd:     jsvalue.Plus,
	ir.OpFloatSub:     jsvalue.Minus,
	ir.OpFloatMul:     jsvalue.Mul,
	ir.OpFloatTrueDiv: jsvalue.Div,
	ir.OpFloatLt:      jsvalue.LessThan,
	ir.OpFloatLe:      jsvalue.LessThanEq,
	ir.OpFloatGt:      jsvalue.GreaterThan,
	ir.OpFloatGe:      jsvalue.GreaterThanEq,
	ir.OpFloatEq:      jsvalue.Equal,
	ir.OpFloatNe:      jsvalue.NotEqual,
}

type unaryOp struct {
	arg ir.Kind
	f   unaryFunc
}

var unary = map[ir.Opcode]unaryOp{
	ir.OpIntNeg:         {ir.KInt, func(v jsvalue.Value) jsvalue.Value { return jsvalue.UMinus(v) }},
	ir.OpIntInvert:      {ir.KInt, func(v jsvalue.Value) jsvalue.Value { return jsvalue.UNeg(v) }},
	ir.OpIntIsZero:      {ir.KInt, func(v jsvalue.Value) jsvalue.Value { return jsvalue.UNot(v) }},
	ir.OpIntIsTrue:      {ir.KInt, func(v jsvalue.Value) jsvalue.Value { return jsvalue.NotEqual(v, &ir.ConstInt{}) }},
	ir.OpFloatNeg:       {ir.KFloat, func(v jsvalue.Value) jsvalue.Value { return jsvalue.UMinus(v) }},
	ir.OpCastIntToFloat: {ir.KInt, jsvalue.DoubleCast},
	ir.OpCastFloatToInt: {ir.KFloat, jsvalue.SignedCast},
	ir.OpSameAsI:        {ir.KInt, identity},
	ir.OpSameAsR:        {ir.KInt, identity},
	ir.OpSameAsF:        {ir.KFloat, identity},
}

func identity(v jsvalue.Value) jsvalue.Value { return v }

func (l *lowerer) op(t *ir.Trace, op *ir.Op) error {
	if f, ok := intBinary[op.Opcode]; ok {
		args, err := l.operands(op.Args, ir.KInt, ir.KInt)
		if err != nil {
			return err
		}
		l.assign(op.Result, f(args[0], args[1]))
		return nil
	}
	if f, ok := floatBinary[op.Opcode]; ok {
		args, err := l.operands(op.Args, ir.KFloat, ir.KFloat)
		if err != nil {
			return err
		}
		l.assign(op.Result, f(args[0], args[1]))
		return nil
	}
	if u, ok := unary[op.Opcode]; ok {
		args, err := l.operands(op.Args, u.arg)
		if err != nil {
			return err
		}
		l.assign(op.Result, u.f(args[0]))
		return nil
	}

	switch op.Opcode {
	case ir.OpGetfieldGcI, ir.OpGetfieldGcR, ir.OpGetfieldRawI:
		return l.getfield(op)
	case ir.OpGetfieldGcF:
		args, err := l.operands(op.Args, ir.KInt, ir.KInt)
		if err != nil {
			return err
		}
		l.declare(op.Result.Name, ir.KFloat)
		l.emit(asmjs.LoadDouble{Dst: op.Result.Name, Addr: jsvalue.Plus(args[0], args[1])})
		return nil
	case ir.OpGetarrayitemGcI:
		return l.getarrayitem(op)
	case ir.OpSetfieldGc:
		return l.setfield(op)
	case ir.OpSetarrayitemGc:
		return l.setarrayitem(op)
	case ir.OpCallI, ir.OpCallF, ir.OpCallN:
		return l.call(op)
	case ir.OpDynCallI, ir.OpDynCallF, ir.OpDynCallN:
		return l.dyncall(op)
	case ir.OpGuardTrue, ir.OpGuardFalse, ir.OpGuardValue, ir.OpGuardClass, ir.OpGuardNonnull, ir.OpGuardIsnull:
		return l.guard(op)
	case ir.OpFinish:
		stmts, err := l.exitStmts(op, FinishDescr, op.Args)
		if err != nil {
			return err
		}
		l.emit(stmts...)
		return nil
	case ir.OpJump:
		return l.jump(t, op)
	}
	return fmt.Errorf("no lowering for %s", op.Opcode)
}

// Heap access

func intView(v ir.Value) (*jsvalue.HeapType, error) {
	h, err := heapView(v)
	if err != nil {
		return nil, err
	}
	if h.Category() != jsvalue.Intish {
		return nil, fmt.Errorf("heap view %s does not hold integers", h)
	}
	return h, nil
}

// elemAddr is ptr + base + index scaled by the element size.
func elemAddr(ptr, index, base jsvalue.Value, h *jsvalue.HeapType) jsvalue.Value {
	scaled := index
	if h.Shift() > 0 {
		scaled = jsvalue.LShift(index, &ir.ConstInt{V: int64(h.Shift())})
	}
	return jsvalue.Plus(jsvalue.Plus(ptr, base), scaled)
}

func (l *lowerer) getfield(op *ir.Op) error {
	h, err := intView(op.Args[2])
	if err != nil {
		return err
	}
	args, err := l.operands(op.Args[:2], ir.KInt, ir.KInt)
	if err != nil {
		return err
	}
	l.assign(op.Result, jsvalue.NewHeapData(h, jsvalue.Plus(args[0], args[1])))
	return nil
}

func (l *lowerer) getarrayitem(op *ir.Op) error {
	h, err := intView(op.Args[3])
	if err != nil {
		return err
	}
	args, err := l.operands(op.Args[:3], ir.KInt, ir.KInt, ir.KInt)
	if err != nil {
		return err
	}
	l.assign(op.Result, jsvalue.NewHeapData(h, elemAddr(args[0], args[1], args[2], h)))
	return nil
}

func (l *lowerer) store(h *jsvalue.HeapType, addr jsvalue.Value, value ir.Value) error {
	want := ir.KInt
	if h.Category() != jsvalue.Intish {
		want = ir.KFloat
	}
	vs, err := l.operands([]ir.Value{value}, want)
	if err != nil {
		return fmt.Errorf("value for %s: %w", h, err)
	}
	if h == jsvalue.Float64 {
		l.emit(asmjs.StoreDouble{Addr: addr, Value: vs[0]})
		return nil
	}
	l.emit(asmjs.Store{Heap: h, Addr: addr, Value: vs[0]})
	return nil
}

func (l *lowerer) setfield(op *ir.Op) error {
	h, err := heapView(op.Args[2])
	if err != nil {
		return err
	}
	args, err := l.operands(op.Args[:2], ir.KInt, ir.KInt)
	if err != nil {
		return err
	}
	return l.store(h, jsvalue.Plus(args[0], args[1]), op.Args[3])
}

func (l *lowerer) setarrayitem(op *ir.Op) error {
	h, err := heapView(op.Args[3])
	if err != nil {
		return err
	}
	args, err := l.operands(op.Args[:3], ir.KInt, ir.KInt, ir.KInt)
	if err != nil {
		return err
	}
	return l.store(h, elemAddr(args[0], args[1], args[2], h), op.Args[4])
}

// Calls

func (l *lowerer) bindCall(op *ir.Op, c *jsvalue.Call) {
	if op.Result == nil {
		l.emit(asmjs.Exec{Value: c})
		return
	}
	l.assign(op.Result, c)
}

func (l *lowerer) call(op *ir.Op) error {
	name, err := symbol(op.Args[0])
	if err != nil {
		return err
	}
	if !stringlit.IsIdent(name) {
		return fmt.Errorf("invalid function name %q", name)
	}
	args, err := l.operands(op.Args[1:])
	if err != nil {
		return err
	}
	l.bindCall(op, jsvalue.CallFunc(name, args...))
	return nil
}

var dynResult = map[ir.Opcode]string{
	ir.OpDynCallI: "i",
	ir.OpDynCallF: "fd",
	ir.OpDynCallN: "v",
}

func sigKind(c byte) ir.Kind {
	if c == 'f' || c == 'd' {
		return ir.KFloat
	}
	return ir.KInt
}

func (l *lowerer) dyncall(op *ir.Op) error {
	sig, err := symbol(op.Args[0])
	if err != nil {
		return err
	}
	if !stringlit.IsSignature(sig) {
		return fmt.Errorf("invalid call signature %q", sig)
	}
	want := dynResult[op.Opcode]
	if !containsByte(want, sig[0]) {
		return fmt.Errorf("signature %q does not return what %s needs", sig, op.Opcode)
	}
	params := op.Args[2:]
	if len(sig)-1 != len(params) {
		return fmt.Errorf("signature %q takes %d arguments, got %d", sig, len(sig)-1, len(params))
	}
	kinds := []ir.Kind{ir.KInt}
	for i := 1; i < len(sig); i++ {
		kinds = append(kinds, sigKind(sig[i]))
	}
	args, err := l.operands(op.Args[1:], kinds...)
	if err != nil {
		return err
	}
	l.bindCall(op, jsvalue.DynCallFunc(sig, args[0], args[1:]...))
	return nil
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}

// Guards

// failCond is true when the guard fails.
func (l *lowerer) failCond(op *ir.Op) (jsvalue.Value, error) {
	switch op.Opcode {
	case ir.OpGuardTrue, ir.OpGuardFalse, ir.OpGuardNonnull, ir.OpGuardIsnull:
		args, err := l.operands(op.Args, ir.KInt)
		if err != nil {
			return nil, err
		}
		if op.Opcode == ir.OpGuardFalse || op.Opcode == ir.OpGuardIsnull {
			return args[0], nil
		}
		return notValue(args[0]), nil
	case ir.OpGuardValue:
		k := ir.KInt
		if op.Args[0].Kind() == ir.KFloat {
			k = ir.KFloat
		}
		args, err := l.operands(op.Args, k, k)
		if err != nil {
			return nil, err
		}
		return jsvalue.NotEqual(args[0], args[1]), nil
	case ir.OpGuardClass:
		args, err := l.operands(op.Args, ir.KInt, ir.KInt)
		if err != nil {
			return nil, err
		}
		if l.opts.TypeInfo.RemovesTypePtr() {
			typeID := jsvalue.NewHeapData(jsvalue.UInt16, args[0])
			return jsvalue.NotEqual(typeID, jsvalue.ClassPtrTypeID(args[1], l.opts.TypeInfo)), nil
		}
		return jsvalue.NotEqual(jsvalue.NewHeapData(jsvalue.UInt32, args[0]), args[1]), nil
	}
	return nil, fmt.Errorf("%s is not a guard", op.Opcode)
}

// notValue folds logical not of a constant.
func notValue(v jsvalue.Value) jsvalue.Value {
	if c, ok := v.(*ir.ConstInt); ok {
		return jsvalue.Equal(c, &ir.ConstInt{})
	}
	if c, ok := v.(*ir.ConstPtr); ok {
		return jsvalue.Equal(c, &ir.ConstInt{})
	}
	return jsvalue.UNot(v)
}

func (l *lowerer) guard(op *ir.Op) error {
	cond, err := l.failCond(op)
	if err != nil {
		return err
	}
	var always bool
	switch c := cond.(type) {
	case *ir.ConstInt:
		if int32(c.V) == 0 {
			l.logf("%s never fails", op)
			return nil
		}
		always = true
	case *ir.ConstPtr:
		if int32(c.Addr) == 0 {
			l.logf("%s never fails", op)
			return nil
		}
		always = true
	}
	stmts, err := l.exitStmts(op, l.guards, op.FailArgs)
	if err != nil {
		return err
	}
	l.guards++
	if always {
		l.logf("%s always fails", op)
		l.emit(stmts...)
		return nil
	}
	l.emit(asmjs.If{Cond: cond, Then: stmts})
	return nil
}

// jump copies the new values into the inputs through temporaries, so
// no input is overwritten before every new value has been read.
func (l *lowerer) jump(t *ir.Trace, op *ir.Op) error {
	if len(op.Args) != len(t.Inputs) {
		return fmt.Errorf("jump passes %d values to %d inputs", len(op.Args), len(t.Inputs))
	}
	type move struct {
		dst, tmp string
		k        ir.Kind
	}
	var moves []move
	for i, a := range op.Args {
		in := t.Inputs[i]
		if a == ir.Value(in) {
			continue
		}
		if a.Kind() != in.K && !(isIntKind(a.Kind()) && isIntKind(in.K)) {
			return fmt.Errorf("jump argument %d is %s, input %s is %s", i+1, a.Kind(), in, in.K)
		}
		v, err := l.operand(a)
		if err != nil {
			return err
		}
		tmp := l.newTemp(in.K)
		l.emit(asmjs.Assign{Dst: tmp, Value: coerce(in.K, v)})
		moves = append(moves, move{dst: in.Name, tmp: tmp, k: in.K})
	}
	for _, m := range moves {
		l.emit(asmjs.Assign{Dst: m.dst, Value: coerce(m.k, jsvalue.NewVariable(m.tmp, localCategory(m.k)))})
	}
	l.emit(asmjs.Continue{})
	return nil
}

func localCategory(k ir.Kind) jsvalue.Category {
	if k == ir.KFloat {
		return jsvalue.Double
	}
	return jsvalue.Int
}
