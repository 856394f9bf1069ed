package jitframe

import (
	"fmt"
	"testing"

	"jsjit/internal/config"
	"jsjit/internal/jsvalue"
)

func TestLayoutFromConfig(t *testing.T) {
	c := config.Default()
	l := NewLayout(c)
	var _ jsvalue.FrameLayout = l
	if l.BaseOffsetOfFrameField() != 40 || l.FrameLengthFieldOffset() != 36 {
		t.Fatalf("unexpected offsets: %d %d", l.BaseOffsetOfFrameField(), l.FrameLengthFieldOffset())
	}
	if l.OffsetOfFrameField("jf_guard_exc") != 28 {
		t.Fatalf("expected 28, got %d", l.OffsetOfFrameField("jf_guard_exc"))
	}
	c.Frame.Fields["jf_descr"] = 100
	if l.OffsetOfFrameField("jf_descr") != 8 {
		t.Fatalf("expected layout to copy the configuration")
	}
}

func TestLayoutResolvesFrameAddresses(t *testing.T) {
	l := NewLayout(config.Default())
	cases := []struct {
		addr *jsvalue.FrameAddr
		want string
	}{
		{jsvalue.JitFrameSlotAddr(8), "jitframe + 48"},
		{jsvalue.JitFrameDescrAddr(), "jitframe + 8"},
		{jsvalue.JitFrameGCMapAddr(), "jitframe + 16"},
		{jsvalue.JitFrameSizeAddr(), "jitframe + 36"},
	}
	for _, tc := range cases {
		if got := jsvalue.Render(tc.addr, l); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestUnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewLayout(config.Default()).OffsetOfFrameField("jf_nope")
}

func TestPackSlots(t *testing.T) {
	l := NewLayout(config.Default())
	cases := []struct {
		sizes []int
		offs  []int
		slots int
	}{
		{nil, []int{}, 0},
		{[]int{4}, []int{0}, 1},
		{[]int{4, 4, 4}, []int{0, 4, 8}, 3},
		{[]int{4, 8}, []int{0, 8}, 4},
		{[]int{8, 4}, []int{0, 8}, 3},
		{[]int{4, 8, 4}, []int{0, 8, 16}, 5},
	}
	for _, tc := range cases {
		offs, slots := l.PackSlots(tc.sizes)
		if slots != tc.slots || fmt.Sprint(offs) != fmt.Sprint(tc.offs) {
			t.Fatalf("PackSlots(%v): expected %v/%d, got %v/%d", tc.sizes, tc.offs, tc.slots, offs, slots)
		}
	}
}

func TestTypeInfo(t *testing.T) {
	c := config.Default()
	c.GC.TypeInfoSize = 8
	c.GC.TypeInfoGroup = 4096
	ti := NewTypeInfo(c)
	got := jsvalue.Render(jsvalue.ClassPtrTypeID(jsvalue.IntVar("cls"), ti), nil)
	if got != "(((cls)-(4104))>>(2))&(65535)" {
		t.Fatalf("expected %q, got %q", "(((cls)-(4104))>>(2))&(65535)", got)
	}
	if ti.RemovesTypePtr() {
		t.Fatalf("expected class pointers by default")
	}
}
