package jsvalue

import (
	"errors"
	"math"
	"sort"
	"strings"
	"testing"

	"jsjit/internal/ir"
)

type fakeLayout struct {
	base   int
	length int
	fields map[string]int
}

func (l fakeLayout) BaseOffsetOfFrameField() int        { return l.base }
func (l fakeLayout) OffsetOfFrameField(name string) int { return l.fields[name] }
func (l fakeLayout) FrameLengthFieldOffset() int        { return l.length }

var testLayout = fakeLayout{
	base:   64,
	length: 60,
	fields: map[string]int{"jf_descr": 8, "jf_force_descr": 12, "jf_guard_exc": 16, "jf_gcmap": 20},
}

type recordingBuffer struct {
	sb      strings.Builder
	imports map[string]bool
}

func (r *recordingBuffer) EmitRaw(text string) { r.sb.WriteString(text) }
func (r *recordingBuffer) EmitValue(v Value)   { Emit(r, v) }
func (r *recordingBuffer) RegisterImport(name string) {
	if r.imports == nil {
		r.imports = map[string]bool{}
	}
	r.imports[name] = true
}
func (r *recordingBuffer) Layout() FrameLayout { return testLayout }

func TestFrameAddresses(t *testing.T) {
	cases := []struct {
		addr *FrameAddr
		want string
		sym  string
	}{
		{JitFrameSlotAddr(8), "jitframe + 72", "jitframe + jf_frame[8]"},
		{JitFrameDescrAddr(), "jitframe + 8", "jitframe + jf_descr"},
		{JitFrameForceDescrAddr(), "jitframe + 12", "jitframe + jf_force_descr"},
		{JitFrameGuardExcAddr(), "jitframe + 16", "jitframe + jf_guard_exc"},
		{JitFrameGCMapAddr(), "jitframe + 20", "jitframe + jf_gcmap"},
		{JitFrameSizeAddr(), "jitframe + 60", "jitframe + jf_frame.length"},
	}
	for _, tc := range cases {
		t.Run(tc.addr.Field().String(), func(t *testing.T) {
			if got := Render(tc.addr, testLayout); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if got := tc.addr.String(); got != tc.sym {
				t.Fatalf("expected %q, got %q", tc.sym, got)
			}
			if c := mustCategory(t, tc.addr); c != Intish {
				t.Fatalf("expected intish, got %v", c)
			}
		})
	}
}

func TestFrameAddressInExpression(t *testing.T) {
	v := NewHeapData(Int32, JitFrameSlotAddr(4))
	if got := Render(v, testLayout); got != "HI32[(jitframe + 68)>>2]" {
		t.Fatalf("expected %q, got %q", "HI32[(jitframe + 68)>>2]", got)
	}
}

func TestEmitRegistersImports(t *testing.T) {
	v := Plus(CallFunc("f", vx), DynCallFunc("vi", vs))
	b := &recordingBuffer{}
	Emit(b, Plus(v, CallFunc("f")))
	var names []string
	for n := range b.imports {
		names = append(names, n)
	}
	sort.Strings(names)
	if strings.Join(names, ",") != "_f,dynCall_vi" {
		t.Fatalf("expected %q, got %q", "_f,dynCall_vi", strings.Join(names, ","))
	}
	want := "((+(_f((x)|(0))))+(+(dynCall_vi(s))))+(+(_f()))"
	if b.sb.String() != want {
		t.Fatalf("expected %q, got %q", want, b.sb.String())
	}
}

func TestEmitLeaves(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{&ir.Box{Name: "i3", K: ir.KInt}, "i3"},
		{ci(-12), "-12"},
		{ci(1<<32 - 1), "-1"},
		{&ir.ConstPtr{Addr: 4096}, "4096"},
		{&ir.ConstFloat{V: 0.25}, "0.25"},
		{TempDoublePtr, "tempDoublePtr"},
	}
	for _, tc := range cases {
		if got := Render(tc.v, nil); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestFormatDouble(t *testing.T) {
	cases := []struct {
		f    float64
		want string
	}{
		{1.5, "1.5"},
		{2, "2.0"},
		{100000, "100000.0"},
		{-3, "-3.0"},
		{1e300, "1.0e+300"},
		{1.5e-300, "1.5e-300"},
		{math.NaN(), "(0.0/0.0)"},
		{math.Inf(1), "(1.0/0.0)"},
		{math.Inf(-1), "(-1.0/0.0)"},
	}
	for _, tc := range cases {
		if got := FormatDouble(tc.f); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestBuildRecoversConstructionErrors(t *testing.T) {
	err := Build(func() { DynCallFunc("", vx) })
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature, got %v", err)
	}
	var be *BuildError
	if !errors.As(err, &be) {
		t.Fatalf("expected *BuildError, got %T", err)
	}
	err = Build(func() { Plus(&ir.Symbol{Text: "x"}, vx) })
	if !errors.Is(err, ErrUnknownValueKind) {
		t.Fatalf("expected ErrUnknownValueKind, got %v", err)
	}
	err = Build(func() { Render(&ir.Symbol{Text: "HI8"}, nil) })
	if !errors.Is(err, ErrUnknownValueKind) {
		t.Fatalf("expected ErrUnknownValueKind, got %v", err)
	}
	err = Build(func() { NewBinaryOp(BinaryOperator(99), vx, vy) })
	if !errors.Is(err, ErrUnknownOperator) {
		t.Fatalf("expected ErrUnknownOperator, got %v", err)
	}
	if err := Build(func() { Plus(vx, vy) }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBuildPropagatesOtherPanics(t *testing.T) {
	defer func() {
		if r := recover(); r != "boom" {
			t.Fatalf("expected panic %q, got %v", "boom", r)
		}
	}()
	_ = Build(func() { panic("boom") })
	t.Fatalf("expected panic")
}
