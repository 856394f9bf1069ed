package gofront

import (
	"errors"
	"fmt"
	"go/constant"
	"go/token"

	"golang.org/x/tools/go/ssa"

	"jsjit/internal/ir"
)

// Integer operators: signed form, unsigned form. An empty opcode means
// there is no trace operation for that signedness.
var intBinOps = map[token.Token][2]ir.Opcode{
	token.ADD: {ir.OpIntAdd, ir.OpIntAdd},
	token.SUB: {ir.OpIntSub, ir.OpIntSub},
	token.MUL: {ir.OpIntMul, ir.OpIntMul},
	token.QUO: {ir.OpIntFloorDiv, ""},
	token.REM: {ir.OpIntMod, ""},
	token.AND: {ir.OpIntAnd, ir.OpIntAnd},
	token.OR:  {ir.OpIntOr, ir.OpIntOr},
	token.XOR: {ir.OpIntXor, ir.OpIntXor},
	token.EQL: {ir.OpIntEq, ir.OpIntEq},
	token.NEQ: {ir.OpIntNe, ir.OpIntNe},
	token.LSS: {ir.OpIntLt, ir.OpUintLt},
	token.LEQ: {ir.OpIntLe, ir.OpUintLe},
	token.GTR: {ir.OpIntGt, ir.OpUintGt},
	token.GEQ: {ir.OpIntGe, ir.OpUintGe},
}

var floatBinOps = map[token.Token]ir.Opcode{
	token.ADD: ir.OpFloatAdd,
	token.SUB: ir.OpFloatSub,
	token.MUL: ir.OpFloatMul,
	token.QUO: ir.OpFloatTrueDiv,
	token.EQL: ir.OpFloatEq,
	token.NEQ: ir.OpFloatNe,
	token.LSS: ir.OpFloatLt,
	token.LEQ: ir.OpFloatLe,
	token.GTR: ir.OpFloatGt,
	token.GEQ: ir.OpFloatGe,
}

var errUnsupported = errors.New("unsupported instruction")

func (tr *translator) instr(instr ssa.Instruction) error {
	switch x := instr.(type) {
	case *ssa.BinOp:
		return tr.binOp(x)
	case *ssa.UnOp:
		return tr.unOp(x)
	case *ssa.Convert:
		return tr.convert(x, x.X)
	case *ssa.ChangeType:
		return tr.convert(x, x.X)
	case *ssa.Call:
		return tr.call(x)
	case *ssa.Return:
		args, err := tr.operands(x.Results)
		if err != nil {
			return err
		}
		tr.emit(ir.OpFinish, args...)
		return nil
	case *ssa.DebugRef:
		return nil
	}
	return errUnsupported
}

func (tr *translator) binOp(x *ssa.BinOp) error {
	k, ok := kindOf(x.X.Type())
	if !ok {
		return fmt.Errorf("operand type %s is not supported", x.X.Type())
	}
	if k != ir.KFloat && (x.Op == token.SHL || x.Op == token.SHR) {
		lhs, err := tr.operand(x.X)
		if err != nil {
			return err
		}
		return tr.shift(x, lhs)
	}
	args, err := tr.operands([]ssa.Value{x.X, x.Y})
	if err != nil {
		return err
	}
	if k == ir.KFloat {
		opc, ok := floatBinOps[x.Op]
		if !ok {
			return fmt.Errorf("operator %s on float64 is not supported", x.Op)
		}
		tr.define(x, tr.emit(opc, args...))
		return nil
	}
	if x.Op == token.AND_NOT {
		inv := tr.emit(ir.OpIntInvert, args[1])
		tr.define(x, tr.emit(ir.OpIntAnd, args[0], inv))
		return nil
	}
	forms, ok := intBinOps[x.Op]
	if !ok {
		return fmt.Errorf("operator %s is not supported", x.Op)
	}
	opc := forms[0]
	if isUnsigned(x.X.Type()) {
		opc = forms[1]
	}
	if opc == "" {
		return fmt.Errorf("unsigned operator %s is not supported", x.Op)
	}
	tr.define(x, tr.emit(opc, args...))
	return nil
}

// shift follows Go rather than asm.js: a count of 32 or more clears
// the value, or fills it with the sign bit for a signed right shift.
// asm.js only looks at the low five bits of the count.
func (tr *translator) shift(x *ssa.BinOp, lhs ir.Value) error {
	opc := ir.OpIntLshift
	switch {
	case x.Op == token.SHR && isUnsigned(x.X.Type()):
		opc = ir.OpUintRshift
	case x.Op == token.SHR:
		opc = ir.OpIntRshift
	}
	fill := opc == ir.OpIntRshift

	if c, ok := x.Y.(*ssa.Const); ok {
		n, ok := shiftCount(c)
		if !ok {
			return fmt.Errorf("shift count %s is not an integer", c)
		}
		switch {
		case n < 32:
			tr.define(x, tr.emit(opc, lhs, &ir.ConstInt{V: int64(n)}))
		case fill:
			tr.define(x, tr.emit(opc, lhs, &ir.ConstInt{V: 31}))
		default:
			tr.values[x] = &ir.ConstInt{}
		}
		return nil
	}

	count, err := tr.operand(x.Y)
	if err != nil {
		return err
	}
	// mask is -1 when the count is below 32 and 0 otherwise.
	inRange := tr.emit(ir.OpUintLt, count, &ir.ConstInt{V: 32})
	mask := tr.emit(ir.OpIntNeg, inRange)
	if fill {
		clamp := tr.emit(ir.OpIntAnd, tr.emit(ir.OpIntInvert, mask), &ir.ConstInt{V: 31})
		tr.define(x, tr.emit(opc, lhs, tr.emit(ir.OpIntOr, count, clamp)))
		return nil
	}
	tr.define(x, tr.emit(ir.OpIntAnd, tr.emit(opc, lhs, count), mask))
	return nil
}

// shiftCount reads a constant count of any integer type. Counts too
// large for a uint64 are reported as 32.
func shiftCount(c *ssa.Const) (uint64, bool) {
	if c.Value == nil {
		return 0, true
	}
	if c.Value.Kind() != constant.Int {
		return 0, false
	}
	n, exact := constant.Uint64Val(c.Value)
	if !exact {
		return 32, true
	}
	return n, true
}

func (tr *translator) unOp(x *ssa.UnOp) error {
	args, err := tr.operands([]ssa.Value{x.X})
	if err != nil {
		return err
	}
	k, _ := kindOf(x.X.Type())
	var opc ir.Opcode
	switch {
	case x.Op == token.SUB && k == ir.KFloat:
		opc = ir.OpFloatNeg
	case x.Op == token.SUB && k != ir.KVoid:
		opc = ir.OpIntNeg
	case x.Op == token.XOR && k != ir.KFloat && k != ir.KVoid:
		opc = ir.OpIntInvert
	case x.Op == token.NOT:
		opc = ir.OpIntIsZero
	default:
		return errUnsupported
	}
	tr.define(x, tr.emit(opc, args...))
	return nil
}

// convert handles numeric conversions. Integers share one 32-bit
// representation, so integer to integer conversions are copies.
func (tr *translator) convert(v ssa.Value, from ssa.Value) error {
	fk, ok := kindOf(from.Type())
	if !ok {
		return fmt.Errorf("conversion from %s is not supported", from.Type())
	}
	tk, ok := kindOf(v.Type())
	if !ok {
		return fmt.Errorf("conversion to %s is not supported", v.Type())
	}
	args, err := tr.operands([]ssa.Value{from})
	if err != nil {
		return err
	}
	var opc ir.Opcode
	switch {
	case fk == ir.KFloat && tk == ir.KFloat:
		opc = ir.OpSameAsF
	case tk == ir.KFloat:
		if isUnsigned(from.Type()) {
			return fmt.Errorf("conversion from %s to float64 is not supported", from.Type())
		}
		opc = ir.OpCastIntToFloat
	case fk == ir.KFloat:
		if isUnsigned(v.Type()) {
			return fmt.Errorf("conversion from float64 to %s is not supported", v.Type())
		}
		opc = ir.OpCastFloatToInt
	case tk == ir.KRef:
		opc = ir.OpSameAsR
	default:
		opc = ir.OpSameAsI
	}
	tr.define(v, tr.emit(opc, args...))
	return nil
}

func (tr *translator) call(x *ssa.Call) error {
	callee := x.Call.StaticCallee()
	if callee == nil || x.Call.IsInvoke() {
		return errors.New("only calls to package functions are supported")
	}
	name := callee.Name()
	if p := callee.Package(); p != nil && p != tr.fn.Package() {
		name = p.Pkg.Name() + "_" + name
	}
	args, err := tr.operands(x.Call.Args)
	if err != nil {
		return err
	}
	args = append([]ir.Value{&ir.Symbol{Text: name}}, args...)

	res := x.Call.Signature().Results()
	switch res.Len() {
	case 0:
		tr.emit(ir.OpCallN, args...)
		return nil
	case 1:
		k, ok := kindOf(res.At(0).Type())
		if !ok {
			return fmt.Errorf("call result type %s is not supported", res.At(0).Type())
		}
		opc := ir.OpCallI
		if k == ir.KFloat {
			opc = ir.OpCallF
		}
		tr.define(x, tr.emit(opc, args...))
		return nil
	}
	return errors.New("calls with several results are not supported")
}

func (tr *translator) operands(vs []ssa.Value) ([]ir.Value, error) {
	out := make([]ir.Value, len(vs))
	for i, v := range vs {
		iv, err := tr.operand(v)
		if err != nil {
			return nil, err
		}
		out[i] = iv
	}
	return out, nil
}

func (tr *translator) operand(v ssa.Value) (ir.Value, error) {
	if c, ok := v.(*ssa.Const); ok {
		return constValue(c)
	}
	if iv, ok := tr.values[v]; ok {
		return iv, nil
	}
	return nil, fmt.Errorf("value %s has no trace equivalent", v.Name())
}

func constValue(c *ssa.Const) (ir.Value, error) {
	k, ok := kindOf(c.Type())
	if !ok {
		return nil, fmt.Errorf("constant of type %s is not supported", c.Type())
	}
	if c.Value == nil {
		if k == ir.KFloat {
			return &ir.ConstFloat{}, nil
		}
		return &ir.ConstInt{}, nil
	}
	switch {
	case k == ir.KFloat:
		f, _ := constant.Float64Val(constant.ToFloat(c.Value))
		return &ir.ConstFloat{V: f}, nil
	case c.Value.Kind() == constant.Bool:
		if constant.BoolVal(c.Value) {
			return &ir.ConstInt{V: 1}, nil
		}
		return &ir.ConstInt{V: 0}, nil
	}
	iv := constant.ToInt(c.Value)
	n, exact := constant.Int64Val(iv)
	if !exact {
		u, _ := constant.Uint64Val(iv)
		n = int64(u)
	}
	if k == ir.KRef {
		return &ir.ConstPtr{Addr: n}, nil
	}
	return &ir.ConstInt{V: n}, nil
}
