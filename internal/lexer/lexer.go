package lexer

import (
	"strings"

	"jsjit/internal/source"
)

// Lex splits a trace into tokens. Newlines are significant: every
// operation sits on its own line.
func Lex(file *source.File) []Token {
	lx := &lexer{file: file, input: file.Input}
	for {
		lx.skipSpace()
		start := lx.pos
		if lx.pos >= len(lx.input) {
			lx.emit(TokenEOF, "", start, start)
			break
		}
		ch := lx.peek()
		switch {
		case ch == '\n':
			lx.pos++
			lx.emit(TokenNewline, "\n", start, lx.pos)
		case ch == '#':
			lx.lexComment()
		case isIdentStart(ch):
			lx.lexIdent()
		case isDigit(ch) || ch == '-' || ch == '+':
			lx.lexNumber()
		case ch == '"':
			lx.lexString()
		default:
			lx.lexPunct()
		}
	}
	return lx.tokens
}

type lexer struct {
	file   *source.File
	input  string
	pos    int
	tokens []Token
}

func (lx *lexer) peek() byte { return lx.input[lx.pos] }

func (lx *lexer) next() byte {
	ch := lx.input[lx.pos]
	lx.pos++
	return ch
}

func (lx *lexer) emit(k Kind, lex string, start, end int) {
	lx.tokens = append(lx.tokens, Token{
		Kind:   k,
		Lexeme: lex,
		Span:   source.Span{File: lx.file, Start: start, End: end},
	})
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.input) {
		ch := lx.input[lx.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			lx.pos++
			continue
		}
		return
	}
}

func (lx *lexer) lexComment() {
	start := lx.pos
	for lx.pos < len(lx.input) && lx.input[lx.pos] != '\n' {
		lx.pos++
	}
	lx.emit(TokenComment, strings.TrimRight(lx.input[start:lx.pos], " \t\r"), start, lx.pos)
}

func (lx *lexer) lexIdent() {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.input) && isIdentContinue(lx.input[lx.pos]) {
		lx.pos++
	}
	lex := lx.input[start:lx.pos]
	switch lex {
	case "nan", "inf":
		lx.emit(TokenFloat, lex, start, lx.pos)
	default:
		lx.emit(TokenIdent, lex, start, lx.pos)
	}
}

// lexNumber reads a signed decimal or hex integer, a float with a
// fraction or exponent, or a signed "inf".
func (lx *lexer) lexNumber() {
	start := lx.pos
	if ch := lx.peek(); ch == '-' || ch == '+' {
		lx.pos++
		if strings.HasPrefix(lx.input[lx.pos:], "inf") {
			lx.pos += 3
			lx.emit(TokenFloat, lx.input[start:lx.pos], start, lx.pos)
			return
		}
		if lx.pos >= len(lx.input) || !isDigit(lx.peek()) {
			lx.emit(TokenBad, lx.input[start:lx.pos], start, lx.pos)
			return
		}
	}
	if lx.peek() == '0' && lx.pos+1 < len(lx.input) && (lx.input[lx.pos+1] == 'x' || lx.input[lx.pos+1] == 'X') {
		lx.pos += 2
		for lx.pos < len(lx.input) && isHexDigit(lx.input[lx.pos]) {
			lx.pos++
		}
		lx.emit(TokenInt, lx.input[start:lx.pos], start, lx.pos)
		return
	}
	kind := TokenInt
	lx.digits()
	if lx.pos < len(lx.input) && lx.peek() == '.' {
		kind = TokenFloat
		lx.pos++
		lx.digits()
	}
	if lx.pos < len(lx.input) && (lx.peek() == 'e' || lx.peek() == 'E') {
		kind = TokenFloat
		lx.pos++
		if lx.pos < len(lx.input) && (lx.peek() == '-' || lx.peek() == '+') {
			lx.pos++
		}
		lx.digits()
	}
	lx.emit(kind, lx.input[start:lx.pos], start, lx.pos)
}

func (lx *lexer) digits() {
	for lx.pos < len(lx.input) && isDigit(lx.input[lx.pos]) {
		lx.pos++
	}
}

func (lx *lexer) lexString() {
	start := lx.pos
	lx.pos++ // opening "
	for lx.pos < len(lx.input) {
		ch := lx.next()
		if ch == '"' {
			lx.emit(TokenString, lx.input[start:lx.pos], start, lx.pos)
			return
		}
		if ch == '\n' {
			lx.pos--
			break
		}
		if ch == '\\' && lx.pos < len(lx.input) {
			lx.pos++
		}
	}
	// unterminated
	lx.emit(TokenBad, lx.input[start:lx.pos], start, lx.pos)
}

func (lx *lexer) lexPunct() {
	start := lx.pos
	ch := lx.next()
	switch ch {
	case '(':
		lx.emit(TokenLParen, "(", start, lx.pos)
	case ')':
		lx.emit(TokenRParen, ")", start, lx.pos)
	case '[':
		lx.emit(TokenLBracket, "[", start, lx.pos)
	case ']':
		lx.emit(TokenRBracket, "]", start, lx.pos)
	case ',':
		lx.emit(TokenComma, ",", start, lx.pos)
	case '=':
		lx.emit(TokenEq, "=", start, lx.pos)
	default:
		lx.emit(TokenBad, string(ch), start, lx.pos)
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}
