package jsvalue

import (
	"fmt"

	"jsjit/internal/ir"
)

// HeapType marks one typed view over the asm.js heap. The eight views
// below are the only instances; compare them by pointer.
type HeapType struct {
	cat   Category
	name  string
	array string
	shift uint
}

var (
	Int8    = &HeapType{Intish, "HI8", "Int8Array", 0}
	Int16   = &HeapType{Intish, "HI16", "Int16Array", 1}
	Int32   = &HeapType{Intish, "HI32", "Int32Array", 2}
	UInt8   = &HeapType{Intish, "HU8", "Uint8Array", 0}
	UInt16  = &HeapType{Intish, "HU16", "Uint16Array", 1}
	UInt32  = &HeapType{Intish, "HU32", "Uint32Array", 2}
	Float32 = &HeapType{Doublish, "HF32", "Float32Array", 2}
	Float64 = &HeapType{Doublish, "HF64", "Float64Array", 3}
)

// HeapTypes lists every view in module declaration order.
var HeapTypes = []*HeapType{Int8, Int16, Int32, UInt8, UInt16, UInt32, Float32, Float64}

func (h *HeapType) Category() Category { return h.cat }

// Name is the module-level variable holding the view.
func (h *HeapType) Name() string { return h.name }

// ArrayType is the global typed-array constructor for the view.
func (h *HeapType) ArrayType() string { return h.array }

func (h *HeapType) Shift() uint { return h.shift }

func (h *HeapType) Size() int { return 1 << h.shift }

func (h *HeapType) String() string { return h.name }

// HeapTypeByName looks a view up by its variable name ("HU16").
func HeapTypeByName(name string) (*HeapType, error) {
	for _, h := range HeapTypes {
		if h.name == name {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w: heap view %q", ErrUnsupportedKind, name)
}

// FromKind picks the view that holds a full word of the given kind.
func FromKind(k ir.Kind) (*HeapType, error) {
	switch k {
	case ir.KFloat:
		return Float64, nil
	case ir.KInt:
		return Int32, nil
	case ir.KRef:
		return UInt32, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedKind, k)
	}
}

// FromValue picks the view by the kind of a trace box or constant.
// A nil value is an integer.
func FromValue(v Value) (*HeapType, error) {
	if v == nil {
		return Int32, nil
	}
	iv, ok := v.(ir.Value)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedKind, v)
	}
	return FromKind(iv.Kind())
}

// FromSize picks the unsigned view of the given width, or Float64 for 8.
func FromSize(size int) (*HeapType, error) {
	switch size {
	case 1:
		return UInt8, nil
	case 2:
		return UInt16, nil
	case 4:
		return UInt32, nil
	case 8:
		return Float64, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSize, size)
	}
}

func FromSizeAndSign(size int, signed bool) (*HeapType, error) {
	if !signed || size == 8 {
		return FromSize(size)
	}
	switch size {
	case 1:
		return Int8, nil
	case 2:
		return Int16, nil
	case 4:
		return Int32, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSize, size)
	}
}
