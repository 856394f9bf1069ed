// Package gofront builds traces from straight-line Go functions. A Go
// file is type-checked for a 32-bit target, converted to SSA, and each
// function made of a single basic block over int, int32, uint, uint32,
// uintptr, float64 and bool values becomes one trace: parameters are
// the inputs and the return is a finish.
package gofront

import (
	"errors"
	"fmt"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"

	"golang.org/x/tools/go/ssa"

	"jsjit/internal/ir"
)

// Translate returns a trace for every top-level function of the file,
// in source order. Functions that cannot be translated are reported in
// the joined error; the traces of the others are still returned.
func Translate(filename string, src []byte) ([]*ir.Trace, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.AllErrors)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	var typeErrs []error
	conf := &types.Config{
		Importer: importer.ForCompiler(fset, "source", nil),
		Sizes:    types.SizesFor("gc", "386"),
		Error:    func(err error) { typeErrs = append(typeErrs, err) },
	}
	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Implicits:  make(map[ast.Node]types.Object),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
		Instances:  make(map[*ast.Ident]types.Instance),
	}
	pkg, _ := conf.Check(file.Name.Name, fset, []*ast.File{file}, info)
	if len(typeErrs) > 0 {
		return nil, fmt.Errorf("typecheck: %w", errors.Join(typeErrs...))
	}

	prog := ssa.NewProgram(fset, ssa.BuilderMode(0))
	for _, imp := range pkg.Imports() {
		prog.CreatePackage(imp, nil, nil, true)
	}
	ssaPkg := prog.CreatePackage(pkg, []*ast.File{file}, info, false)
	ssaPkg.Build()

	var traces []*ir.Trace
	var errs []error
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv != nil || fd.Body == nil || fd.Name.Name == "init" || fd.Name.Name == "_" {
			continue
		}
		fn := ssaPkg.Func(fd.Name.Name)
		if fn == nil {
			continue
		}
		t, err := translateFunc(fn)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		traces = append(traces, t)
	}
	return traces, errors.Join(errs...)
}

type translator struct {
	fn     *ssa.Function
	trace  *ir.Trace
	values map[ssa.Value]ir.Value
	counts map[ir.Kind]int
}

func translateFunc(fn *ssa.Function) (*ir.Trace, error) {
	if fn.TypeParams().Len() > 0 {
		return nil, fmt.Errorf("%s: generic functions are not supported", fn.Name())
	}
	if len(fn.Blocks) != 1 {
		return nil, fmt.Errorf("%s: control flow is not supported (%d blocks)", fn.Name(), len(fn.Blocks))
	}
	tr := &translator{
		fn:     fn,
		trace:  &ir.Trace{Name: fn.Name()},
		values: map[ssa.Value]ir.Value{},
		counts: map[ir.Kind]int{},
	}
	for _, p := range fn.Params {
		k, ok := kindOf(p.Type())
		if !ok {
			return nil, fmt.Errorf("%s: parameter %s has unsupported type %s", fn.Name(), p.Name(), p.Type())
		}
		b := tr.newBox(k)
		tr.trace.Inputs = append(tr.trace.Inputs, b)
		tr.values[p] = b
	}
	res := fn.Signature.Results()
	for i := 0; i < res.Len(); i++ {
		if _, ok := kindOf(res.At(i).Type()); !ok {
			return nil, fmt.Errorf("%s: result type %s is not supported", fn.Name(), res.At(i).Type())
		}
	}
	for _, instr := range fn.Blocks[0].Instrs {
		if err := tr.instr(instr); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn.Name(), instr, err)
		}
	}
	return tr.trace, nil
}

func kindOf(t types.Type) (ir.Kind, bool) {
	b, ok := t.Underlying().(*types.Basic)
	if !ok {
		return ir.KVoid, false
	}
	switch b.Kind() {
	case types.Int, types.Int32, types.Uint, types.Uint32, types.Bool, types.UntypedBool:
		return ir.KInt, true
	case types.Uintptr:
		return ir.KRef, true
	case types.Float64:
		return ir.KFloat, true
	}
	return ir.KVoid, false
}

func isUnsigned(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&types.IsUnsigned != 0
}

func (tr *translator) newBox(k ir.Kind) *ir.Box {
	n := tr.counts[k]
	tr.counts[k]++
	return &ir.Box{Name: fmt.Sprintf("%c%d", k.Prefix(), n), K: k}
}

// emit appends an operation and returns its result box, if it has one.
func (tr *translator) emit(opc ir.Opcode, args ...ir.Value) *ir.Box {
	_, info, _ := ir.LookupOp(string(opc))
	op := &ir.Op{Opcode: opc, Args: args}
	if info.Result != ir.KVoid {
		op.Result = tr.newBox(info.Result)
	}
	tr.trace.Ops = append(tr.trace.Ops, op)
	return op.Result
}

func (tr *translator) define(v ssa.Value, b *ir.Box) { tr.values[v] = b }
