package ir

import (
	"math"
	"testing"
)

func TestStringValues(t *testing.T) {
	cases := []struct {
		name string
		v    Value
		want string
	}{
		{name: "box", v: &Box{Name: "i3", K: KInt}, want: "i3"},
		{name: "int", v: &ConstInt{V: -7}, want: "-7"},
		{name: "ptr", v: &ConstPtr{Addr: 4096}, want: "ConstPtr(4096)"},
		{name: "float_whole", v: &ConstFloat{V: 2}, want: "2.0"},
		{name: "float_frac", v: &ConstFloat{V: 1.5}, want: "1.5"},
		{name: "float_exp", v: &ConstFloat{V: 1e300}, want: "1e+300"},
		{name: "float_nan", v: &ConstFloat{V: math.NaN()}, want: "nan"},
		{name: "float_neg_inf", v: &ConstFloat{V: math.Inf(-1)}, want: "-inf"},
		{name: "symbol", v: &Symbol{Text: "HU16"}, want: `"HU16"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.String(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestOpString(t *testing.T) {
	i0 := &Box{Name: "i0", K: KInt}
	i1 := &Box{Name: "i1", K: KInt}
	p0 := &Box{Name: "p0", K: KRef}

	cases := []struct {
		name string
		op   *Op
		want string
	}{
		{name: "binop", op: &Op{Opcode: OpIntAdd, Args: []Value{i0, &ConstInt{V: 5}}, Result: i1}, want: "i1 = int_add(i0, 5)"},
		{name: "guard", op: &Op{Opcode: OpGuardTrue, Args: []Value{i1}, FailArgs: []Value{i0, p0}}, want: "guard_true(i1) [i0, p0]"},
		{name: "guard_no_failargs", op: &Op{Opcode: OpGuardIsnull, Args: []Value{p0}}, want: "guard_isnull(p0) []"},
		{name: "call", op: &Op{Opcode: OpCallN, Args: []Value{&Symbol{Text: "free"}, p0}}, want: `call_n("free", p0)`},
		{name: "finish_empty", op: &Op{Opcode: OpFinish}, want: "finish()"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.op.String(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
