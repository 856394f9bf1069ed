package asmjs

import (
	"fmt"
	"strings"
)

// Ident maps an arbitrary name (a trace or Go function name) to a valid
// asm.js identifier: [A-Za-z0-9_$] kept, anything else becomes '_'.
func Ident(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		ok := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '$'
		if !ok {
			ch = '_'
		}
		if i == 0 && (ch >= '0' && ch <= '9') {
			b.WriteByte('_')
		}
		b.WriteByte(ch)
	}
	out := b.String()
	if out == "" || reserved[out] {
		return "_" + out
	}
	return out
}

// Words the module itself declares or that JavaScript reserves.
var reserved = map[string]bool{
	"stdlib": true, "foreign": true, "heap": true, "imul": true,
	"jitframe": true, "goto": true, "tempDoublePtr": true,
	"HI8": true, "HI16": true, "HI32": true, "HU8": true, "HU16": true, "HU32": true, "HF32": true, "HF64": true,
	"break": true, "case": true, "continue": true, "default": true, "do": true, "else": true,
	"for": true, "function": true, "if": true, "new": true, "return": true, "switch": true,
	"var": true, "while": true,
}

// TempName names the i-th scratch local. Trace boxes never start with t.
func TempName(i int) string { return fmt.Sprintf("t%d", i) }
