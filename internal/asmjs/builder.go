package asmjs

import (
	"bytes"
	"sort"

	"jsjit/internal/jsvalue"
)

// Builder is the emission buffer for one compiled function. It
// implements jsvalue.Buffer.
type Builder struct {
	out     bytes.Buffer
	layout  jsvalue.FrameLayout
	imports map[string]bool
	indent  int
}

func NewBuilder(layout jsvalue.FrameLayout) *Builder {
	return &Builder{layout: layout, imports: map[string]bool{}}
}

func (b *Builder) EmitRaw(text string)         { b.out.WriteString(text) }
func (b *Builder) EmitValue(v jsvalue.Value)   { jsvalue.Emit(b, v) }
func (b *Builder) RegisterImport(name string)  { b.imports[name] = true }
func (b *Builder) Layout() jsvalue.FrameLayout { return b.layout }
func (b *Builder) String() string              { return b.out.String() }

// Imports returns every registered function name in sorted order.
func (b *Builder) Imports() []string {
	names := make([]string, 0, len(b.imports))
	for n := range b.imports {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (b *Builder) startLine() {
	for i := 0; i < b.indent; i++ {
		b.out.WriteString("  ")
	}
}

func (b *Builder) line(text string) {
	b.startLine()
	b.out.WriteString(text)
	b.out.WriteByte('\n')
}

// EmitStmts writes statements at the current indentation.
func (b *Builder) EmitStmts(stmts []Stmt) {
	for _, s := range stmts {
		s.emit(b)
	}
}
