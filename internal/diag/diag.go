package diag

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"jsjit/internal/source"
)

type Item struct {
	Filename string
	Line     int
	Col      int
	Msg      string
	// Source is the offending line, when the item came from a span.
	Source string
}

func (it Item) String() string {
	return fmt.Sprintf("%s:%d:%d: error: %s", it.Filename, it.Line, it.Col, it.Msg)
}

// Bag collects positional errors. A non-empty Bag is an error.
type Bag struct {
	Items []Item
}

func (b *Bag) Add(filename string, line int, col int, msg string) {
	b.Items = append(b.Items, Item{Filename: filename, Line: line, Col: col, Msg: msg})
}

func (b *Bag) AddSpan(sp source.Span, format string, args ...any) {
	name, line, col := sp.LocStart()
	it := Item{Filename: name, Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
	if sp.File != nil {
		it.Source = sp.File.Line(line)
	}
	b.Items = append(b.Items, it)
}

func (b *Bag) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Items)
}

// Err returns b when it holds at least one item and nil otherwise.
func (b *Bag) Err() error {
	if b.Len() == 0 {
		return nil
	}
	return b
}

func (b *Bag) Error() string {
	var sb strings.Builder
	for i, it := range b.sorted() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(it.String())
	}
	return sb.String()
}

func (b *Bag) sorted() []Item {
	items := make([]Item, 0, len(b.Items))
	items = append(items, b.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Filename != items[j].Filename {
			return items[i].Filename < items[j].Filename
		}
		if items[i].Line != items[j].Line {
			return items[i].Line < items[j].Line
		}
		return items[i].Col < items[j].Col
	})
	return items
}

func Print(w io.Writer, b *Bag) {
	if b.Len() == 0 {
		return
	}
	for _, it := range b.sorted() {
		fmt.Fprintln(w, it.String())
		if it.Source != "" {
			fmt.Fprintf(w, "  %s\n  %s^\n", it.Source, caretIndent(it.Source, it.Col))
		}
	}
}

// caretIndent blanks the part of line before col, keeping tabs so the
// caret lines up.
func caretIndent(line string, col int) string {
	var sb strings.Builder
	n := 1
	for _, r := range line {
		if n >= col {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}
		n++
	}
	return sb.String()
}
