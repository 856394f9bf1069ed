package source

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// File is one trace or Go input with line offsets for diagnostics.
type File struct {
	Name        string
	Input       string
	lineOffsets []int // byte offset of each line start
}

func NewFile(name string, input string) *File {
	f := &File{Name: name, Input: input}
	f.lineOffsets = []int{0}
	for i := 0; i < len(input); i++ {
		if input[i] == '\n' {
			f.lineOffsets = append(f.lineOffsets, i+1)
		}
	}
	return f
}

// LineCol returns the 1-based line and rune column of a byte offset.
func (f *File) LineCol(off int) (int, int) {
	if off < 0 {
		off = 0
	}
	if off > len(f.Input) {
		off = len(f.Input)
	}
	i := sort.Search(len(f.lineOffsets), func(i int) bool { return f.lineOffsets[i] > off }) - 1
	if i < 0 {
		i = 0
	}
	col := 1
	for pos := f.lineOffsets[i]; pos < off; {
		_, sz := utf8.DecodeRuneInString(f.Input[pos:])
		if sz <= 0 {
			sz = 1
		}
		if pos+sz > off {
			break
		}
		col++
		pos += sz
	}
	return i + 1, col
}

// Line returns the text of a 1-based line without its newline.
func (f *File) Line(n int) string {
	if n < 1 || n > len(f.lineOffsets) {
		return ""
	}
	start := f.lineOffsets[n-1]
	end := len(f.Input)
	if n < len(f.lineOffsets) {
		end = f.lineOffsets[n] - 1
	}
	return strings.TrimSuffix(f.Input[start:end], "\r")
}

type Span struct {
	File       *File
	Start, End int // [Start, End) in bytes
}

func (s Span) LocStart() (filename string, line int, col int) {
	if s.File == nil {
		return "", 0, 0
	}
	line, col = s.File.LineCol(s.Start)
	return s.File.Name, line, col
}

func (s Span) String() string {
	name, line, col := s.LocStart()
	return fmt.Sprintf("%s:%d:%d", name, line, col)
}
