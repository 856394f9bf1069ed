package jsvalue

import (
	"fmt"

	"jsjit/internal/ir"
)

// FrameLayout answers where the fields of a jitframe live.
type FrameLayout interface {
	// BaseOffsetOfFrameField is the offset of the first scratch slot.
	BaseOffsetOfFrameField() int
	OffsetOfFrameField(name string) int
	FrameLengthFieldOffset() int
}

// TypeInfo describes the GC's type-info table.
type TypeInfo interface {
	TypeInfoRecordSize() int
	TypeInfoTableBaseAddress() int
}

type FrameField int

const (
	FieldSlot FrameField = iota
	FieldDescr
	FieldForceDescr
	FieldGuardExc
	FieldGCMap
	FieldFrameSize
)

// String is the frame field name handed to FrameLayout.
func (f FrameField) String() string {
	switch f {
	case FieldSlot:
		return "jf_frame"
	case FieldDescr:
		return "jf_descr"
	case FieldForceDescr:
		return "jf_force_descr"
	case FieldGuardExc:
		return "jf_guard_exc"
	case FieldGCMap:
		return "jf_gcmap"
	case FieldFrameSize:
		return "jf_frame.length"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// FrameAddr is the address of a field of the current jitframe. The
// numeric offset is looked up in the buffer's layout when emitted.
type FrameAddr struct {
	field  FrameField
	offset int
}

// JitFrameSlotAddr addresses the scratch slot at byte offset off.
func JitFrameSlotAddr(off int) *FrameAddr { return &FrameAddr{field: FieldSlot, offset: off} }
func JitFrameDescrAddr() *FrameAddr       { return &FrameAddr{field: FieldDescr} }
func JitFrameForceDescrAddr() *FrameAddr  { return &FrameAddr{field: FieldForceDescr} }
func JitFrameGuardExcAddr() *FrameAddr    { return &FrameAddr{field: FieldGuardExc} }
func JitFrameGCMapAddr() *FrameAddr       { return &FrameAddr{field: FieldGCMap} }
func JitFrameSizeAddr() *FrameAddr        { return &FrameAddr{field: FieldFrameSize} }
func (a *FrameAddr) Field() FrameField    { return a.field }
func (a *FrameAddr) Offset() int          { return a.offset }
func (a *FrameAddr) String() string       { return Render(a, nil) }

// Resolve computes the byte offset of the field from the frame start.
func (a *FrameAddr) Resolve(l FrameLayout) int {
	switch a.field {
	case FieldSlot:
		return l.BaseOffsetOfFrameField() + a.offset
	case FieldFrameSize:
		return l.FrameLengthFieldOffset()
	default:
		return l.OffsetOfFrameField(a.field.String())
	}
}

// ClassPtrTypeID extracts the expected type id from a class pointer, for
// comparison against the first half-word of an object.
func ClassPtrTypeID(classptr Value, gc TypeInfo) Value {
	base := int64(gc.TypeInfoRecordSize()) + int64(gc.TypeInfoTableBaseAddress())
	id := Minus(classptr, &ir.ConstInt{V: base})
	id = RShift(id, &ir.ConstInt{V: 2})
	return And(id, &ir.ConstInt{V: 0xFFFF})
}
