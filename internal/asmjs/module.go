package asmjs

import (
	"fmt"
	"strings"

	"jsjit/internal/jsvalue"
	"jsjit/internal/stringlit"
)

type Local struct {
	Name   string
	Double bool
}

// Func is one compiled trace. Prologue runs once; Body is wrapped in a
// while loop when Loop is set, so a trailing Continue re-enters it.
type Func struct {
	Name     string
	Locals   []Local
	Prologue []Stmt
	Body     []Stmt
	Loop     bool
}

// Module is the text of a complete asm.js module.
type Module struct {
	Name    string
	Funcs   []string
	Imports []string
	Source  string
}

// EmitModule renders fns inside an asm.js module called name. Frame
// addresses are resolved through layout. A module of one function
// returns that function; otherwise it returns an object holding each
// function under its own name.
func EmitModule(name string, layout jsvalue.FrameLayout, fns ...*Func) (*Module, error) {
	if len(fns) == 0 {
		return nil, fmt.Errorf("module %s has no functions", name)
	}
	out := NewBuilder(layout)
	names := make([]string, len(fns))
	texts := make([]string, len(fns))
	seen := map[string]bool{}
	for i, fn := range fns {
		if seen[fn.Name] {
			return nil, fmt.Errorf("module %s: function %s is defined twice", name, fn.Name)
		}
		seen[fn.Name] = true
		fb, err := emitFunc(fn, layout)
		if err != nil {
			return nil, err
		}
		for _, imp := range fb.Imports() {
			out.RegisterImport(imp)
		}
		names[i], texts[i] = fn.Name, fb.String()
	}
	imports := out.Imports()

	out.line("function " + name + "(stdlib, foreign, heap) {")
	out.indent++
	out.line(`"use asm";`)
	for _, h := range jsvalue.HeapTypes {
		out.line(fmt.Sprintf("var %s = new stdlib.%s(heap);", h.Name(), h.ArrayType()))
	}
	out.line("var imul = stdlib.Math.imul;")
	out.line("var tempDoublePtr = foreign.tempDoublePtr|0;")
	for _, imp := range imports {
		out.line(fmt.Sprintf("var %s = foreign.%s;", imp, imp))
	}
	for _, text := range texts {
		out.EmitRaw(text)
	}
	if len(names) == 1 {
		out.line("return " + names[0] + ";")
	} else {
		fields := make([]string, len(names))
		for i, n := range names {
			fields[i] = n + ": " + n
		}
		out.line("return {" + strings.Join(fields, ", ") + "};")
	}
	out.indent--
	out.line("}")
	return &Module{Name: name, Funcs: names, Imports: imports, Source: out.String()}, nil
}

// emitFunc renders one function at module indentation.
func emitFunc(fn *Func, layout jsvalue.FrameLayout) (*Builder, error) {
	b := NewBuilder(layout)
	b.indent = 1
	err := jsvalue.Build(func() {
		b.line("function " + fn.Name + "(jitframe, goto) {")
		b.indent++
		b.line("jitframe = jitframe|0;")
		b.line("goto = goto|0;")
		for _, l := range fn.Locals {
			if l.Double {
				b.line("var " + l.Name + " = 0.0;")
			} else {
				b.line("var " + l.Name + " = 0;")
			}
		}
		b.EmitStmts(fn.Prologue)
		if fn.Loop {
			b.line("while (1) {")
			b.indent++
			b.EmitStmts(fn.Body)
			b.indent--
			b.line("}")
		} else {
			b.EmitStmts(fn.Body)
		}
		if fn.Loop || !endsInReturn(fn.Body) {
			Return{Value: jsvalue.JitFrame}.emit(b)
		}
		b.indent--
		b.line("}")
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	return b, nil
}

func endsInReturn(body []Stmt) bool {
	if len(body) == 0 {
		return false
	}
	_, ok := body[len(body)-1].(Return)
	return ok
}

// Quote renders the module source as a JavaScript string literal, for
// loaders that compile modules from strings.
func (m *Module) Quote() string { return stringlit.Quote(m.Source) }
