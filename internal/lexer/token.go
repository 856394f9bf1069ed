package lexer

import "jsjit/internal/source"

type Kind int

const (
	TokenEOF Kind = iota
	TokenBad
	TokenNewline
	TokenComment

	TokenIdent
	TokenInt
	TokenFloat
	TokenString

	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenComma
	TokenEq
)

var kindNames = [...]string{
	TokenEOF:      "end of file",
	TokenBad:      "invalid token",
	TokenNewline:  "newline",
	TokenComment:  "comment",
	TokenIdent:    "identifier",
	TokenInt:      "integer",
	TokenFloat:    "float",
	TokenString:   "string",
	TokenLParen:   "'('",
	TokenRParen:   "')'",
	TokenLBracket: "'['",
	TokenRBracket: "']'",
	TokenComma:    "','",
	TokenEq:       "'='",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "token"
	}
	return kindNames[k]
}

type Token struct {
	Kind   Kind
	Lexeme string
	Span   source.Span
}

func (t Token) Is(k Kind) bool { return t.Kind == k }
