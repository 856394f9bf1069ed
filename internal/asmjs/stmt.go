package asmjs

import (
	"jsjit/internal/ir"
	"jsjit/internal/jsvalue"
)

// Stmt is one statement of a compiled function body.
type Stmt interface {
	emit(b *Builder)
}

// Assign sets a local. Value must already carry the local's category.
type Assign struct {
	Dst   string
	Value jsvalue.Value
}

// Store writes one heap element. Value is coerced to the view's category.
type Store struct {
	Heap  *jsvalue.HeapType
	Addr  jsvalue.Value
	Value jsvalue.Value
}

// LoadDouble reads a float64 from a word-aligned address by copying its
// two words through tempDoublePtr.
type LoadDouble struct {
	Dst  string
	Addr jsvalue.Value
}

// StoreDouble is the inverse of LoadDouble.
type StoreDouble struct {
	Addr  jsvalue.Value
	Value jsvalue.Value
}

// Exec evaluates a value for its side effects, such as a void call.
type Exec struct {
	Value jsvalue.Value
}

type If struct {
	Cond jsvalue.Value
	Then []Stmt
}

type Return struct {
	Value jsvalue.Value
}

type Continue struct{}

type Comment struct {
	Text string
}

func (s Assign) emit(b *Builder) {
	b.startLine()
	b.EmitRaw(s.Dst)
	b.EmitRaw(" = ")
	b.EmitValue(s.Value)
	b.EmitRaw(";\n")
}

func (s Store) emit(b *Builder) {
	v := s.Value
	if s.Heap.Category() == jsvalue.Intish {
		if !jsvalue.Is(v, jsvalue.Intish) {
			v = jsvalue.SignedCast(v)
		}
	} else if !jsvalue.Is(v, jsvalue.Doublish) {
		v = jsvalue.DoubleCast(v)
	}
	b.startLine()
	b.EmitValue(jsvalue.NewHeapData(s.Heap, s.Addr))
	b.EmitRaw(" = ")
	b.EmitValue(v)
	b.EmitRaw(";\n")
}

func secondWord(addr jsvalue.Value) jsvalue.Value {
	return jsvalue.Plus(addr, &ir.ConstInt{V: 4})
}

func copyWords(b *Builder, dst, src jsvalue.Value) {
	Store{Heap: jsvalue.Int32, Addr: dst, Value: jsvalue.NewHeapData(jsvalue.Int32, src)}.emit(b)
	Store{Heap: jsvalue.Int32, Addr: secondWord(dst), Value: jsvalue.NewHeapData(jsvalue.Int32, secondWord(src))}.emit(b)
}

func (s LoadDouble) emit(b *Builder) {
	copyWords(b, jsvalue.TempDoublePtr, s.Addr)
	b.line(s.Dst + " = +HF64[(tempDoublePtr)>>3];")
}

func (s StoreDouble) emit(b *Builder) {
	b.startLine()
	b.EmitRaw("HF64[(tempDoublePtr)>>3] = ")
	b.EmitValue(jsvalue.DoubleCast(s.Value))
	b.EmitRaw(";\n")
	copyWords(b, s.Addr, jsvalue.TempDoublePtr)
}

func (s Exec) emit(b *Builder) {
	b.startLine()
	b.EmitValue(s.Value)
	b.EmitRaw(";\n")
}

func (s If) emit(b *Builder) {
	cond := s.Cond
	if !jsvalue.Is(cond, jsvalue.Int) {
		cond = jsvalue.IntCast(cond)
	}
	b.startLine()
	b.EmitRaw("if (")
	b.EmitValue(cond)
	b.EmitRaw(") {\n")
	b.indent++
	b.EmitStmts(s.Then)
	b.indent--
	b.line("}")
}

// Return leaves the function with a signed int result.
func (s Return) emit(b *Builder) {
	b.startLine()
	b.EmitRaw("return ")
	b.EmitValue(jsvalue.SignedCast(s.Value))
	b.EmitRaw(";\n")
}

func (Continue) emit(b *Builder) { b.line("continue;") }

func (s Comment) emit(b *Builder) { b.line("// " + s.Text) }
