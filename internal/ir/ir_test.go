package ir

import (
	"strings"
	"testing"
)

func TestFormatTrace(t *testing.T) {
	i0 := &Box{Name: "i0", K: KInt}
	i1 := &Box{Name: "i1", K: KInt}
	tr := &Trace{
		Name:   "loop",
		Inputs: []*Box{i0},
		Ops: []*Op{
			{Opcode: OpIntAdd, Args: []Value{i0, &ConstInt{V: 1}}, Result: i1},
			{Opcode: OpJump, Args: []Value{i1}},
		},
	}
	got := tr.Format()
	want := "# trace loop\n[i0]\ni1 = int_add(i0, 1)\njump(i1)\n"
	if got != want {
		t.Fatalf("expected:\n%s\ngot:\n%s", want, got)
	}
	if !tr.Loops() {
		t.Fatalf("expected trace ending in jump to loop")
	}
	if !strings.HasPrefix(got, "# trace") {
		t.Fatalf("expected name header")
	}
}

func TestKindOfName(t *testing.T) {
	cases := []struct {
		name string
		want Kind
		ok   bool
	}{
		{name: "i0", want: KInt, ok: true},
		{name: "p12", want: KRef, ok: true},
		{name: "f3", want: KFloat, ok: true},
		{name: "x1", ok: false},
		{name: "i", ok: false},
		{name: "i1a", ok: false},
	}
	for _, tc := range cases {
		got, ok := KindOfName(tc.name)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("%s: expected (%v, %v), got (%v, %v)", tc.name, tc.want, tc.ok, got, ok)
		}
	}
}

func TestLookupOpArity(t *testing.T) {
	_, info, ok := LookupOp("int_add")
	if !ok || !info.AcceptsArgs(2) || info.AcceptsArgs(3) || info.Result != KInt {
		t.Fatalf("unexpected int_add info: %+v", info)
	}
	_, info, ok = LookupOp("call_f")
	if !ok || !info.AcceptsArgs(1) || !info.AcceptsArgs(9) || info.AcceptsArgs(0) {
		t.Fatalf("unexpected call_f info: %+v", info)
	}
	if !IsGuard(OpGuardClass) || IsGuard(OpFinish) {
		t.Fatalf("unexpected guard classification")
	}
	if _, _, ok := LookupOp("int_frobnicate"); ok {
		t.Fatalf("expected unknown opcode")
	}
}
