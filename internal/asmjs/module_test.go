package asmjs

import (
	"errors"
	"strings"
	"testing"

	"jsjit/internal/ir"
	"jsjit/internal/jsvalue"
)

const wantLoopModule = `function jitted(stdlib, foreign, heap) {
  "use asm";
  var HI8 = new stdlib.Int8Array(heap);
  var HI16 = new stdlib.Int16Array(heap);
  var HI32 = new stdlib.Int32Array(heap);
  var HU8 = new stdlib.Uint8Array(heap);
  var HU16 = new stdlib.Uint16Array(heap);
  var HU32 = new stdlib.Uint32Array(heap);
  var HF32 = new stdlib.Float32Array(heap);
  var HF64 = new stdlib.Float64Array(heap);
  var imul = stdlib.Math.imul;
  var tempDoublePtr = foreign.tempDoublePtr|0;
  var _tick = foreign._tick;
  function loop(jitframe, goto) {
    jitframe = jitframe|0;
    goto = goto|0;
    var i0 = 0;
    var i1 = 0;
    var f0 = 0.0;
    i0 = (HI32[(jitframe + 40)>>2])|(0);
    while (1) {
      i1 = (_tick((i0)|(0)))|(0);
      continue;
    }
    return (jitframe)|(0);
  }
  return loop;
}
`

func loopFunc() *Func {
	return &Func{
		Name:     "loop",
		Locals:   []Local{{Name: "i0"}, {Name: "i1"}, {Name: "f0", Double: true}},
		Prologue: []Stmt{Assign{Dst: "i0", Value: jsvalue.IntCast(jsvalue.NewHeapData(jsvalue.Int32, jsvalue.JitFrameSlotAddr(0)))}},
		Body: []Stmt{
			Assign{Dst: "i1", Value: jsvalue.IntCast(jsvalue.CallFunc("tick", i0))},
			Continue{},
		},
		Loop: true,
	}
}

func TestEmitModule(t *testing.T) {
	m, err := EmitModule("jitted", testLayout{}, loopFunc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Source != wantLoopModule {
		t.Fatalf("expected:\n%s\ngot:\n%s", wantLoopModule, m.Source)
	}
	if len(m.Imports) != 1 || m.Imports[0] != "_tick" || len(m.Funcs) != 1 || m.Funcs[0] != "loop" {
		t.Fatalf("unexpected module metadata: %+v", m)
	}
	if !strings.HasPrefix(m.Quote(), `"function jitted(stdlib, foreign, heap) {\n  \"use asm\";`) {
		t.Fatalf("unexpected quoted module: %.60s", m.Quote())
	}
}

func TestEmitModuleStraightLine(t *testing.T) {
	fn := &Func{Name: "once", Body: []Stmt{Comment{Text: "nothing"}}}
	m, err := EmitModule("m", testLayout{}, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(m.Source, "while") {
		t.Fatalf("expected no loop in straight-line function")
	}
	if !strings.Contains(m.Source, "    // nothing\n    return (jitframe)|(0);\n") {
		t.Fatalf("unexpected body:\n%s", m.Source)
	}
}

func TestEmitModuleReportsBuildErrors(t *testing.T) {
	fn := &Func{Name: "bad", Body: []Stmt{Assign{Dst: "i0", Value: &ir.Symbol{Text: "oops"}}}}
	_, err := EmitModule("m", testLayout{}, fn)
	if !errors.Is(err, jsvalue.ErrUnknownValueKind) {
		t.Fatalf("expected ErrUnknownValueKind, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "bad: ") {
		t.Fatalf("expected error to name the function, got %q", err.Error())
	}
}

func TestEmitModuleSkipsUnreachableReturn(t *testing.T) {
	fn := &Func{Name: "done", Body: []Stmt{
		Store{Heap: jsvalue.Int32, Addr: jsvalue.JitFrameDescrAddr(), Value: &ir.ConstInt{V: -1}},
		Return{Value: jsvalue.JitFrame},
	}}
	m, err := EmitModule("m", testLayout{}, fn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := strings.Count(m.Source, "return (jitframe)|(0);"); n != 1 {
		t.Fatalf("expected one return, got %d in:\n%s", n, m.Source)
	}
}

func TestEmitModuleSeveralFunctions(t *testing.T) {
	other := &Func{Name: "step", Body: []Stmt{Exec{Value: jsvalue.CallFunc("log", i0)}}}
	m, err := EmitModule("jitted", testLayout{}, loopFunc(), other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(m.Source, "(stdlib, foreign, heap)") != 1 {
		t.Fatalf("expected a single module, got:\n%s", m.Source)
	}
	for _, want := range []string{
		"  var _log = foreign._log;\n  var _tick = foreign._tick;\n",
		"  function loop(jitframe, goto) {\n",
		"  function step(jitframe, goto) {\n",
		"  return {loop: loop, step: step};\n}\n",
	} {
		if !strings.Contains(m.Source, want) {
			t.Fatalf("expected %q in:\n%s", want, m.Source)
		}
	}
	if len(m.Funcs) != 2 || m.Funcs[1] != "step" {
		t.Fatalf("unexpected functions: %v", m.Funcs)
	}
}

func TestEmitModuleErrors(t *testing.T) {
	tests := []struct {
		name string
		fns  []*Func
		want string
	}{
		{"empty", nil, "module m has no functions"},
		{"duplicate", []*Func{{Name: "f"}, {Name: "f"}}, "module m: function f is defined twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := EmitModule("m", testLayout{}, tt.fns...)
			if err == nil || err.Error() != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, err)
			}
		})
	}
}
