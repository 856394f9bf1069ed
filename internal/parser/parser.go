package parser

import (
	"fmt"
	"strconv"
	"strings"

	"jsjit/internal/diag"
	"jsjit/internal/ir"
	"jsjit/internal/lexer"
	"jsjit/internal/source"
	"jsjit/internal/stringlit"
)

type Parser struct {
	file  *source.File
	toks  []lexer.Token
	pos   int
	diags *diag.Bag
	boxes map[string]*ir.Box
}

// Parse reads one trace. The bag is nil when the trace is well formed.
// After an error the parser resumes at the next line, so a single call
// reports every bad line.
func Parse(file *source.File) (*ir.Trace, *diag.Bag) {
	toks := lexer.Lex(file)
	p := &Parser{file: file, toks: toks, diags: &diag.Bag{}, boxes: map[string]*ir.Box{}}
	t := p.parseTrace()
	if p.diags.Len() > 0 {
		return t, p.diags
	}
	return t, nil
}

func (p *Parser) parseTrace() *ir.Trace {
	t := &ir.Trace{}
	seenInputs := false
	for !p.at(lexer.TokenEOF) {
		switch {
		case p.match(lexer.TokenNewline):
			continue
		case p.at(lexer.TokenComment):
			c := p.advance()
			if t.Name == "" && !seenInputs && len(t.Ops) == 0 && strings.HasPrefix(c.Lexeme, "# trace ") {
				t.Name = strings.TrimSpace(strings.TrimPrefix(c.Lexeme, "# trace "))
			}
			continue
		case p.at(lexer.TokenLBracket):
			if seenInputs || len(t.Ops) > 0 {
				p.fail(p.peek().Span, "input list must be the first line of a trace")
				break
			}
			seenInputs = true
			t.Inputs = p.parseInputs()
		default:
			if op := p.parseOp(); op != nil {
				t.Ops = append(t.Ops, op)
			}
		}
		p.endLine()
	}
	return t
}

func (p *Parser) parseInputs() []*ir.Box {
	p.advance() // [
	var boxes []*ir.Box
	if p.match(lexer.TokenRBracket) {
		return boxes
	}
	for {
		tok := p.peek()
		if !tok.Is(lexer.TokenIdent) {
			p.fail(tok.Span, "expected input box name")
			return boxes
		}
		p.advance()
		b := p.define(tok, ir.KVoid)
		if b == nil {
			return boxes
		}
		boxes = append(boxes, b)
		if p.match(lexer.TokenComma) {
			continue
		}
		if p.match(lexer.TokenRBracket) {
			return boxes
		}
		p.fail(p.peek().Span, "expected ',' or ']' in input list")
		return boxes
	}
}

func (p *Parser) parseOp() *ir.Op {
	var resTok lexer.Token
	hasRes := false
	if p.at(lexer.TokenIdent) && p.peekN(1).Is(lexer.TokenEq) {
		resTok = p.advance()
		p.advance()
		hasRes = true
	}
	nameTok := p.peek()
	if !nameTok.Is(lexer.TokenIdent) {
		p.fail(nameTok.Span, "expected operation name")
		return nil
	}
	p.advance()
	opc, info, ok := ir.LookupOp(nameTok.Lexeme)
	if !ok {
		p.fail(nameTok.Span, "unknown operation %q", nameTok.Lexeme)
		return nil
	}
	if !p.match(lexer.TokenLParen) {
		p.fail(p.peek().Span, "expected '(' after operation name")
		return nil
	}
	args, ok := p.parseValues(lexer.TokenRParen)
	if !ok {
		return nil
	}
	if !info.AcceptsArgs(len(args)) {
		p.fail(nameTok.Span, "%s", arityMessage(opc, info, len(args)))
		return nil
	}
	op := &ir.Op{Opcode: opc, Args: args}
	if p.at(lexer.TokenLBracket) {
		if !info.Guard {
			p.fail(p.peek().Span, "%s takes no fail arguments", opc)
			return nil
		}
		p.advance()
		if op.FailArgs, ok = p.parseValues(lexer.TokenRBracket); !ok {
			return nil
		}
	}
	switch {
	case hasRes && info.Result == ir.KVoid:
		p.fail(resTok.Span, "%s has no result", opc)
		return nil
	case !hasRes && info.Result != ir.KVoid:
		p.fail(nameTok.Span, "%s needs a result box", opc)
		return nil
	case hasRes:
		if op.Result = p.define(resTok, info.Result); op.Result == nil {
			return nil
		}
	}
	return op
}

func arityMessage(op ir.Opcode, info ir.OpInfo, n int) string {
	switch {
	case info.MaxArgs < 0:
		return fmt.Sprintf("%s expects at least %d arguments, got %d", op, info.MinArgs, n)
	case info.MinArgs == info.MaxArgs:
		return fmt.Sprintf("%s expects %d arguments, got %d", op, info.MinArgs, n)
	default:
		return fmt.Sprintf("%s expects %d to %d arguments, got %d", op, info.MinArgs, info.MaxArgs, n)
	}
}

// parseValues reads a comma separated operand list up to end.
func (p *Parser) parseValues(end lexer.Kind) ([]ir.Value, bool) {
	var vs []ir.Value
	if p.match(end) {
		return vs, true
	}
	for {
		v := p.parseValue()
		if v == nil {
			return nil, false
		}
		vs = append(vs, v)
		if p.match(lexer.TokenComma) {
			continue
		}
		if p.match(end) {
			return vs, true
		}
		p.fail(p.peek().Span, "expected ',' or %v", end)
		return nil, false
	}
}

func (p *Parser) parseValue() ir.Value {
	tok := p.peek()
	switch tok.Kind {
	case lexer.TokenInt:
		p.advance()
		n, err := strconv.ParseInt(tok.Lexeme, 0, 64)
		if err != nil {
			p.fail(tok.Span, "invalid integer %s", tok.Lexeme)
			return nil
		}
		return &ir.ConstInt{V: n}
	case lexer.TokenFloat:
		p.advance()
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			p.fail(tok.Span, "invalid float %s", tok.Lexeme)
			return nil
		}
		return &ir.ConstFloat{V: f}
	case lexer.TokenString:
		p.advance()
		s, err := stringlit.Decode(tok.Lexeme)
		if err != nil {
			p.fail(tok.Span, "%v", err)
			return nil
		}
		return &ir.Symbol{Text: s}
	case lexer.TokenIdent:
		p.advance()
		if tok.Lexeme == "ConstPtr" {
			return p.parseConstPtr()
		}
		if _, ok := ir.KindOfName(tok.Lexeme); !ok {
			p.fail(tok.Span, "unexpected identifier %s", tok.Lexeme)
			return nil
		}
		b, ok := p.boxes[tok.Lexeme]
		if !ok {
			p.fail(tok.Span, "use of undefined box %s", tok.Lexeme)
			return nil
		}
		return b
	default:
		p.fail(tok.Span, "expected operand")
		return nil
	}
}

func (p *Parser) parseConstPtr() ir.Value {
	if !p.match(lexer.TokenLParen) {
		p.fail(p.peek().Span, "expected '(' after ConstPtr")
		return nil
	}
	tok := p.peek()
	if !tok.Is(lexer.TokenInt) {
		p.fail(tok.Span, "expected address in ConstPtr")
		return nil
	}
	p.advance()
	n, err := strconv.ParseInt(tok.Lexeme, 0, 64)
	if err != nil {
		p.fail(tok.Span, "invalid address %s", tok.Lexeme)
		return nil
	}
	if !p.match(lexer.TokenRParen) {
		p.fail(p.peek().Span, "expected ')' after ConstPtr address")
		return nil
	}
	return &ir.ConstPtr{Addr: n}
}

// define introduces a box. want is the required kind, or KVoid for any.
func (p *Parser) define(tok lexer.Token, want ir.Kind) *ir.Box {
	k, ok := ir.KindOfName(tok.Lexeme)
	if !ok {
		p.fail(tok.Span, "invalid box name %q", tok.Lexeme)
		return nil
	}
	if want != ir.KVoid && k != want {
		p.fail(tok.Span, "result %s must be a %v box", tok.Lexeme, want)
		return nil
	}
	if _, dup := p.boxes[tok.Lexeme]; dup {
		p.fail(tok.Span, "box %s redefined", tok.Lexeme)
		return nil
	}
	b := &ir.Box{Name: tok.Lexeme, K: k}
	p.boxes[tok.Lexeme] = b
	return b
}

// endLine consumes a trailing comment and the line terminator.
func (p *Parser) endLine() {
	p.match(lexer.TokenComment)
	if p.at(lexer.TokenEOF) || p.match(lexer.TokenNewline) {
		return
	}
	p.fail(p.peek().Span, "expected end of line")
	p.match(lexer.TokenNewline)
}

// helpers
func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peekN(n int) lexer.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) at(k lexer.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k lexer.Kind) bool {
	if p.at(k) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if t.Kind != lexer.TokenEOF {
		p.pos++
	}
	return t
}

// fail records an error and skips to the end of the current line.
func (p *Parser) fail(s source.Span, format string, args ...any) {
	p.diags.AddSpan(s, format, args...)
	for !p.at(lexer.TokenNewline) && !p.at(lexer.TokenEOF) {
		p.advance()
	}
}
