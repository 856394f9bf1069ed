package parser

import (
	"testing"

	"jsjit/internal/ir"
	"jsjit/internal/source"
)

const loopTrace = `# trace countdown
[i0, i1, f0, p0]
i2 = int_sub(i0, 1)
i3 = int_gt(i2, 0)
guard_true(i3) [i2, i1]   # exit when done
i4 = getfield_gc_i(p0, 8, "HU16")
i5 = call_i("strlen", p0)
f1 = dyncall_f("fii", i4, i0, 0x10)
f2 = float_add(f0, 1.5)
p1 = same_as_r(ConstPtr(4096))
setfield_gc(p1, 4, "HI32", -7)
jump(i2, i5, f2, p0)
`

func TestParseLoopTrace(t *testing.T) {
	tr, diags := Parse(source.NewFile("loop.trace", loopTrace))
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if tr.Name != "countdown" {
		t.Fatalf("expected %q, got %q", "countdown", tr.Name)
	}
	if len(tr.Inputs) != 4 || tr.Inputs[2].K != ir.KFloat || tr.Inputs[3].K != ir.KRef {
		t.Fatalf("unexpected inputs: %v", tr.Inputs)
	}
	if len(tr.Ops) != 10 {
		t.Fatalf("expected 10 ops, got %d", len(tr.Ops))
	}
	if !tr.Loops() {
		t.Fatalf("expected trace to loop")
	}
	guard := tr.Ops[2]
	if guard.Opcode != ir.OpGuardTrue || len(guard.FailArgs) != 2 || guard.FailArgs[0] != ir.Value(tr.Ops[0].Result) {
		t.Fatalf("unexpected guard: %v", guard)
	}
	if c, ok := tr.Ops[5].Args[3].(*ir.ConstInt); !ok || c.V != 16 {
		t.Fatalf("expected hex constant 16, got %v", tr.Ops[5].Args[3])
	}
	if c, ok := tr.Ops[7].Args[0].(*ir.ConstPtr); !ok || c.Addr != 4096 {
		t.Fatalf("expected ConstPtr(4096), got %v", tr.Ops[7].Args[0])
	}
	if s, ok := tr.Ops[3].Args[2].(*ir.Symbol); !ok || s.Text != "HU16" {
		t.Fatalf("expected symbol HU16, got %v", tr.Ops[3].Args[2])
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	tr, diags := Parse(source.NewFile("loop.trace", loopTrace))
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	text := tr.Format()
	again, diags := Parse(source.NewFile("again.trace", text))
	if diags != nil {
		t.Fatalf("unexpected diagnostics on reparse: %v\n%s", diags, text)
	}
	if again.Format() != text {
		t.Fatalf("expected %q, got %q", text, again.Format())
	}
}

func TestParseEmptyInputsAndFloats(t *testing.T) {
	src := "[]\nf0 = same_as_f(-inf)\nf1 = same_as_f(nan)\nf2 = float_mul(f0, 2.5e-3)\nfinish(f2)\n"
	tr, diags := Parse(source.NewFile("f.trace", src))
	if diags != nil {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(tr.Inputs) != 0 || len(tr.Ops) != 4 {
		t.Fatalf("unexpected trace shape: %d inputs, %d ops", len(tr.Inputs), len(tr.Ops))
	}
	if got := tr.Ops[2].Args[1].String(); got != "0.0025" {
		t.Fatalf("expected %q, got %q", "0.0025", got)
	}
	if tr.Loops() {
		t.Fatalf("expected finished trace not to loop")
	}
}
