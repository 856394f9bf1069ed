//go:build !jsjit_sanity

package jsvalue

import "testing"

func TestWideHeapReadWithoutSanity(t *testing.T) {
	if got := Render(NewHeapData(Float64, vx), nil); got != "HF64[(x)>>3]" {
		t.Fatalf("expected %q, got %q", "HF64[(x)>>3]", got)
	}
	if got := Render(Mul(vx, vd), nil); got != "(x)*(d)" {
		t.Fatalf("expected %q, got %q", "(x)*(d)", got)
	}
}

func TestSignedDivisionCastsDoublishRHS(t *testing.T) {
	v := Div(vs, NewHeapData(Float32, vx))
	if got := Render(v, nil); got != "(s)/(~(~(HF32[(x)>>2])))" {
		t.Fatalf("expected %q, got %q", "(s)/(~(~(HF32[(x)>>2])))", got)
	}
	if c, _ := CategoryOf(v); c != Intish {
		t.Fatalf("expected %v, got %v", Intish, c)
	}
}
