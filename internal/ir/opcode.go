package ir

// Opcode names a trace operation as written in trace text.
type Opcode string

const (
	OpIntAdd      Opcode = "int_add"
	OpIntSub      Opcode = "int_sub"
	OpIntMul      Opcode = "int_mul"
	OpIntFloorDiv Opcode = "int_floordiv"
	OpIntMod      Opcode = "int_mod"
	OpIntAnd      Opcode = "int_and"
	OpIntOr       Opcode = "int_or"
	OpIntXor      Opcode = "int_xor"
	OpIntLshift   Opcode = "int_lshift"
	OpIntRshift   Opcode = "int_rshift"
	OpUintRshift  Opcode = "uint_rshift"

	OpIntLt  Opcode = "int_lt"
	OpIntLe  Opcode = "int_le"
	OpIntGt  Opcode = "int_gt"
	OpIntGe  Opcode = "int_ge"
	OpIntEq  Opcode = "int_eq"
	OpIntNe  Opcode = "int_ne"
	OpUintLt Opcode = "uint_lt"
	OpUintLe Opcode = "uint_le"
	OpUintGt Opcode = "uint_gt"
	OpUintGe Opcode = "uint_ge"

	OpIntNeg    Opcode = "int_neg"
	OpIntInvert Opcode = "int_invert"
	OpIntIsZero Opcode = "int_is_zero"
	OpIntIsTrue Opcode = "int_is_true"
	OpPtrEq     Opcode = "ptr_eq"
	OpPtrNe     Opcode = "ptr_ne"
	OpSameAsI   Opcode = "same_as_i"
	OpSameAsR   Opcode = "same_as_r"
	OpSameAsF   Opcode = "same_as_f"

	OpFloatAdd     Opcode = "float_add"
	OpFloatSub     Opcode = "float_sub"
	OpFloatMul     Opcode = "float_mul"
	OpFloatTrueDiv Opcode = "float_truediv"
	OpFloatNeg     Opcode = "float_neg"
	OpFloatLt      Opcode = "float_lt"
	OpFloatLe      Opcode = "float_le"
	OpFloatGt      Opcode = "float_gt"
	OpFloatGe      Opcode = "float_ge"
	OpFloatEq      Opcode = "float_eq"
	OpFloatNe      Opcode = "float_ne"

	OpCastIntToFloat Opcode = "cast_int_to_float"
	OpCastFloatToInt Opcode = "cast_float_to_int"

	OpGetfieldGcI     Opcode = "getfield_gc_i"
	OpGetfieldGcR     Opcode = "getfield_gc_r"
	OpGetfieldGcF     Opcode = "getfield_gc_f"
	OpGetfieldRawI    Opcode = "getfield_raw_i"
	OpGetarrayitemGcI Opcode = "getarrayitem_gc_i"
	OpSetfieldGc      Opcode = "setfield_gc"
	OpSetarrayitemGc  Opcode = "setarrayitem_gc"

	OpCallI    Opcode = "call_i"
	OpCallF    Opcode = "call_f"
	OpCallN    Opcode = "call_n"
	OpDynCallI Opcode = "dyncall_i"
	OpDynCallF Opcode = "dyncall_f"
	OpDynCallN Opcode = "dyncall_n"

	OpGuardTrue    Opcode = "guard_true"
	OpGuardFalse   Opcode = "guard_false"
	OpGuardValue   Opcode = "guard_value"
	OpGuardClass   Opcode = "guard_class"
	OpGuardNonnull Opcode = "guard_nonnull"
	OpGuardIsnull  Opcode = "guard_isnull"

	OpFinish Opcode = "finish"
	OpJump   Opcode = "jump"
)

// OpInfo describes the shape of an operation.
// MaxArgs < 0 means the operation is variadic from MinArgs up.
type OpInfo struct {
	MinArgs int
	MaxArgs int
	Result  Kind
	Guard   bool
}

func fixed(n int, res Kind) OpInfo { return OpInfo{MinArgs: n, MaxArgs: n, Result: res} }

func variadic(min int, res Kind) OpInfo { return OpInfo{MinArgs: min, MaxArgs: -1, Result: res} }

func guard(n int) OpInfo { return OpInfo{MinArgs: n, MaxArgs: n, Result: KVoid, Guard: true} }

var opTable = map[Opcode]OpInfo{
	OpIntAdd:      fixed(2, KInt),
	OpIntSub:      fixed(2, KInt),
	OpIntMul:      fixed(2, KInt),
	OpIntFloorDiv: fixed(2, KInt),
	OpIntMod:      fixed(2, KInt),
	OpIntAnd:      fixed(2, KInt),
	OpIntOr:       fixed(2, KInt),
	OpIntXor:      fixed(2, KInt),
	OpIntLshift:   fixed(2, KInt),
	OpIntRshift:   fixed(2, KInt),
	OpUintRshift:  fixed(2, KInt),

	OpIntLt:  fixed(2, KInt),
	OpIntLe:  fixed(2, KInt),
	OpIntGt:  fixed(2, KInt),
	OpIntGe:  fixed(2, KInt),
	OpIntEq:  fixed(2, KInt),
	OpIntNe:  fixed(2, KInt),
	OpUintLt: fixed(2, KInt),
	OpUintLe: fixed(2, KInt),
	OpUintGt: fixed(2, KInt),
	OpUintGe: fixed(2, KInt),

	OpIntNeg:    fixed(1, KInt),
	OpIntInvert: fixed(1, KInt),
	OpIntIsZero: fixed(1, KInt),
	OpIntIsTrue: fixed(1, KInt),
	OpPtrEq:     fixed(2, KInt),
	OpPtrNe:     fixed(2, KInt),
	OpSameAsI:   fixed(1, KInt),
	OpSameAsR:   fixed(1, KRef),
	OpSameAsF:   fixed(1, KFloat),

	OpFloatAdd:     fixed(2, KFloat),
	OpFloatSub:     fixed(2, KFloat),
	OpFloatMul:     fixed(2, KFloat),
	OpFloatTrueDiv: fixed(2, KFloat),
	OpFloatNeg:     fixed(1, KFloat),
	OpFloatLt:      fixed(2, KInt),
	OpFloatLe:      fixed(2, KInt),
	OpFloatGt:      fixed(2, KInt),
	OpFloatGe:      fixed(2, KInt),
	OpFloatEq:      fixed(2, KInt),
	OpFloatNe:      fixed(2, KInt),

	OpCastIntToFloat: fixed(1, KFloat),
	OpCastFloatToInt: fixed(1, KInt),

	// getfield(ptr, offset, view), getfield_gc_f(ptr, offset)
	OpGetfieldGcI:  fixed(3, KInt),
	OpGetfieldGcR:  fixed(3, KRef),
	OpGetfieldGcF:  fixed(2, KFloat),
	OpGetfieldRawI: fixed(3, KInt),
	// getarrayitem(ptr, index, base offset, view)
	OpGetarrayitemGcI: fixed(4, KInt),
	// setfield(ptr, offset, view, value)
	OpSetfieldGc: fixed(4, KVoid),
	// setarrayitem(ptr, index, base offset, view, value)
	OpSetarrayitemGc: fixed(5, KVoid),

	OpCallI:    variadic(1, KInt),
	OpCallF:    variadic(1, KFloat),
	OpCallN:    variadic(1, KVoid),
	OpDynCallI: variadic(2, KInt),
	OpDynCallF: variadic(2, KFloat),
	OpDynCallN: variadic(2, KVoid),

	OpGuardTrue:    guard(1),
	OpGuardFalse:   guard(1),
	OpGuardValue:   guard(2),
	OpGuardClass:   guard(2),
	OpGuardNonnull: guard(1),
	OpGuardIsnull:  guard(1),

	OpFinish: variadic(0, KVoid),
	OpJump:   variadic(0, KVoid),
}

// LookupOp returns the shape of the named operation.
func LookupOp(name string) (Opcode, OpInfo, bool) {
	op := Opcode(name)
	info, ok := opTable[op]
	return op, info, ok
}

func IsGuard(op Opcode) bool { return opTable[op].Guard }

// AcceptsArgs reports whether n arguments fit the operation's arity.
func (i OpInfo) AcceptsArgs(n int) bool {
	if n < i.MinArgs {
		return false
	}
	return i.MaxArgs < 0 || n <= i.MaxArgs
}
