// Package jitframe answers layout questions about the jitframe and the
// GC type-info table for the configured target.
package jitframe

import (
	"fmt"

	"jsjit/internal/config"
)

// Layout implements jsvalue.FrameLayout from a validated configuration.
type Layout struct {
	word   int
	base   int
	length int
	fields map[string]int
}

func NewLayout(c *config.Config) *Layout {
	fields := make(map[string]int, len(c.Frame.Fields))
	for k, v := range c.Frame.Fields {
		fields[k] = v
	}
	return &Layout{word: c.WordSize, base: c.Frame.BaseOffset, length: c.Frame.LengthOffset, fields: fields}
}

func (l *Layout) BaseOffsetOfFrameField() int { return l.base }

// OffsetOfFrameField panics on an unknown name; configuration validation
// guarantees every field the backend addresses.
func (l *Layout) OffsetOfFrameField(name string) int {
	off, ok := l.fields[name]
	if !ok {
		panic(fmt.Sprintf("jitframe: unknown frame field %q", name))
	}
	return off
}

func (l *Layout) FrameLengthFieldOffset() int { return l.length }

// PackSlots lays out values of the given byte sizes in scratch space,
// each aligned to its own size. It returns each value's offset and the
// number of word slots used.
func (l *Layout) PackSlots(sizes []int) ([]int, int) {
	offs := make([]int, len(sizes))
	off := 0
	for i, sz := range sizes {
		offs[i] = align(off, sz)
		off = offs[i] + sz
	}
	return offs, align(off, l.word) / l.word
}

func align(off, to int) int {
	if to <= 1 {
		return off
	}
	return (off + to - 1) / to * to
}

// TypeInfo implements jsvalue.TypeInfo.
type TypeInfo struct {
	recordSize int
	tableBase  int
	removePtr  bool
}

func NewTypeInfo(c *config.Config) *TypeInfo {
	return &TypeInfo{recordSize: c.GC.TypeInfoSize, tableBase: c.GC.TypeInfoGroup, removePtr: c.GC.RemoveTypePtr}
}

func (t *TypeInfo) TypeInfoRecordSize() int       { return t.recordSize }
func (t *TypeInfo) TypeInfoTableBaseAddress() int { return t.tableBase }

// RemovesTypePtr reports whether objects carry a half-word type id in
// place of a class pointer.
func (t *TypeInfo) RemovesTypePtr() bool { return t.removePtr }
