package asmjs

import (
	"testing"

	"jsjit/internal/ir"
	"jsjit/internal/jsvalue"
)

type testLayout struct{}

func (testLayout) BaseOffsetOfFrameField() int        { return 40 }
func (testLayout) OffsetOfFrameField(name string) int { return map[string]int{"jf_descr": 8}[name] }
func (testLayout) FrameLengthFieldOffset() int        { return 36 }

var (
	i0 = &ir.Box{Name: "i0", K: ir.KInt}
	i1 = &ir.Box{Name: "i1", K: ir.KInt}
	f1 = &ir.Box{Name: "f1", K: ir.KFloat}
	p0 = &ir.Box{Name: "p0", K: ir.KRef}
)

func render(t *testing.T, stmts ...Stmt) string {
	t.Helper()
	b := NewBuilder(testLayout{})
	if err := jsvalue.Build(func() { b.EmitStmts(stmts) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b.String()
}

func TestStatements(t *testing.T) {
	cases := []struct {
		name string
		stmt Stmt
		want string
	}{
		{"assign", Assign{Dst: "i1", Value: jsvalue.Plus(i0, &ir.ConstInt{V: 1})}, "i1 = (i0)+(1);\n"},
		{"store int", Store{Heap: jsvalue.UInt16, Addr: p0, Value: i1}, "HU16[(p0)>>1] = i1;\n"},
		{"store double into int view", Store{Heap: jsvalue.Int32, Addr: p0, Value: jsvalue.DoubleVar("d")}, "HI32[(p0)>>2] = ~(~(d));\n"},
		{"store int into float view", Store{Heap: jsvalue.Float32, Addr: p0, Value: i1}, "HF32[(p0)>>2] = +((i1)|(0));\n"},
		{"store frame slot", Store{Heap: jsvalue.Int32, Addr: jsvalue.JitFrameDescrAddr(), Value: &ir.ConstInt{V: 3}}, "HI32[(jitframe + 8)>>2] = 3;\n"},
		{"if", If{Cond: jsvalue.LessThan(i0, i1), Then: []Stmt{Return{Value: jsvalue.JitFrame}}},
			"if (((i0)|(0))<((i1)|(0))) {\n  return (jitframe)|(0);\n}\n"},
		{"if intish", If{Cond: jsvalue.Plus(i0, i1)}, "if (((i0)+(i1))|(0)) {\n}\n"},
		{"load double", LoadDouble{Dst: "f1", Addr: p0},
			"HI32[(tempDoublePtr)>>2] = HI32[(p0)>>2];\nHI32[((tempDoublePtr)+(4))>>2] = HI32[((p0)+(4))>>2];\nf1 = +HF64[(tempDoublePtr)>>3];\n"},
		{"store double", StoreDouble{Addr: p0, Value: f1},
			"HF64[(tempDoublePtr)>>3] = f1;\nHI32[(p0)>>2] = HI32[(tempDoublePtr)>>2];\nHI32[((p0)+(4))>>2] = HI32[((tempDoublePtr)+(4))>>2];\n"},
		{"exec", Exec{Value: jsvalue.CallFunc("free", p0)}, "_free((p0)|(0));\n"},
		{"comment", Comment{Text: "guard 0"}, "// guard 0\n"},
		{"continue", Continue{}, "continue;\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := render(t, tc.stmt); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestBuilderImportsSorted(t *testing.T) {
	b := NewBuilder(nil)
	b.EmitValue(jsvalue.CallFunc("zeta"))
	b.EmitValue(jsvalue.DynCallFunc("vi", i0))
	b.EmitValue(jsvalue.CallFunc("alpha"))
	b.EmitValue(jsvalue.CallFunc("zeta"))
	got := b.Imports()
	if len(got) != 3 || got[0] != "_alpha" || got[1] != "_zeta" || got[2] != "dynCall_vi" {
		t.Fatalf("unexpected imports: %v", got)
	}
}

func TestIdent(t *testing.T) {
	cases := map[string]string{
		"loop":     "loop",
		"my-trace": "my_trace",
		"9x":       "_9x",
		"":         "_",
		"imul":     "_imul",
		"a.b$c":    "a_b$c",
	}
	for in, want := range cases {
		if got := Ident(in); got != want {
			t.Fatalf("Ident(%q): expected %q, got %q", in, want, got)
		}
	}
}
