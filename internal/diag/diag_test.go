package diag

import (
	"bytes"
	"errors"
	"testing"

	"jsjit/internal/source"
)

func TestPrintSortsByPosition(t *testing.T) {
	var b Bag
	b.Add("b.trace", 1, 1, "second file")
	b.Add("a.trace", 3, 2, "later line")
	b.Add("a.trace", 1, 5, "first")
	var out bytes.Buffer
	Print(&out, &b)
	want := "a.trace:1:5: error: first\na.trace:3:2: error: later line\nb.trace:1:1: error: second file\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestBagErr(t *testing.T) {
	var b *Bag
	if b.Err() != nil {
		t.Fatalf("expected nil error for nil bag")
	}
	b = &Bag{}
	if b.Err() != nil {
		t.Fatalf("expected nil error for empty bag")
	}
	f := source.NewFile("x.trace", "[i0]\nbogus(i0)\n")
	b.AddSpan(source.Span{File: f, Start: 5, End: 10}, "unknown operation %q", "bogus")
	err := b.Err()
	var got *Bag
	if !errors.As(err, &got) || got.Len() != 1 {
		t.Fatalf("expected a bag with one item, got %v", err)
	}
	if err.Error() != `x.trace:2:1: error: unknown operation "bogus"` {
		t.Fatalf("expected %q, got %q", `x.trace:2:1: error: unknown operation "bogus"`, err.Error())
	}
}

func TestPrintShowsSourceLine(t *testing.T) {
	f := source.NewFile("x.trace", "[i0]\n\tbogus(i0)\n")
	var b Bag
	b.AddSpan(source.Span{File: f, Start: 6, End: 11}, "unknown operation %q", "bogus")
	var out bytes.Buffer
	Print(&out, &b)
	want := "x.trace:2:2: error: unknown operation \"bogus\"\n  \tbogus(i0)\n  \t^\n"
	if out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}
