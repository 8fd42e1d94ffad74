// Package fir defines the typed intermediate representation the lowering
// emits: its type system, attributes, operation catalog with builders,
// structural verifiers and constant folders, and a symmetric textual form.
package fir

import "strconv"

// Type is the interface implemented by all IR types. Types are immutable
// values compared structurally with Equal.
type Type interface {
	AppendString(dst []byte) []byte
	typeNode()
}

// IntType is a signless integer of the given bit width, written i<width>.
type IntType struct {
	Width int
}

func (t IntType) typeNode() {}
func (t IntType) AppendString(dst []byte) []byte {
	dst = append(dst, 'i')
	return strconv.AppendInt(dst, int64(t.Width), 10)
}

// FloatType is an IEEE float of the given bit width, written f32 or f64.
type FloatType struct {
	Width int
}

func (t FloatType) typeNode() {}
func (t FloatType) AppendString(dst []byte) []byte {
	dst = append(dst, 'f')
	return strconv.AppendInt(dst, int64(t.Width), 10)
}

// LogicalType is a Fortran LOGICAL of the given kind.
type LogicalType struct {
	Kind int
}

func (t LogicalType) typeNode() {}
func (t LogicalType) AppendString(dst []byte) []byte {
	dst = append(dst, "logical<"...)
	dst = strconv.AppendInt(dst, int64(t.Kind), 10)
	return append(dst, '>')
}

// CharType is a Fortran CHARACTER of the given kind.
type CharType struct {
	Kind int
}

func (t CharType) typeNode() {}
func (t CharType) AppendString(dst []byte) []byte {
	dst = append(dst, "char<"...)
	dst = strconv.AppendInt(dst, int64(t.Kind), 10)
	return append(dst, '>')
}

// ComplexType is a Fortran COMPLEX of the given kind.
type ComplexType struct {
	Kind int
}

func (t ComplexType) typeNode() {}
func (t ComplexType) AppendString(dst []byte) []byte {
	dst = append(dst, "complex<"...)
	dst = strconv.AppendInt(dst, int64(t.Kind), 10)
	return append(dst, '>')
}

// IndexType is the target-width loop index and address arithmetic type.
type IndexType struct{}

func (t IndexType) typeNode() {}
func (t IndexType) AppendString(dst []byte) []byte {
	return append(dst, "index"...)
}

// NoneType is the unit type of operations producing no meaningful value.
type NoneType struct{}

func (t NoneType) typeNode() {}
func (t NoneType) AppendString(dst []byte) []byte {
	return append(dst, "none"...)
}

// RefType is a reference to a value in memory, written ref<T>.
type RefType struct {
	Elem Type
}

func (t RefType) typeNode() {}
func (t RefType) AppendString(dst []byte) []byte {
	dst = append(dst, "ref<"...)
	dst = t.Elem.AppendString(dst)
	return append(dst, '>')
}

// HeapType is a reference to an allocated heap value, written heap<T>.
type HeapType struct {
	Elem Type
}

func (t HeapType) typeNode() {}
func (t HeapType) AppendString(dst []byte) []byte {
	dst = append(dst, "heap<"...)
	dst = t.Elem.AppendString(dst)
	return append(dst, '>')
}

// PtrType is a Fortran POINTER target reference, written ptr<T>.
type PtrType struct {
	Elem Type
}

func (t PtrType) typeNode() {}
func (t PtrType) AppendString(dst []byte) []byte {
	dst = append(dst, "ptr<"...)
	dst = t.Elem.AppendString(dst)
	return append(dst, '>')
}

// UnknownExtent marks an array dimension whose extent is not a compile-time
// constant; it prints as `?`.
const UnknownExtent = -1

// SeqType is an array type with a shape, written array<10x?xf32>.
type SeqType struct {
	Shape []int // per-dimension extents, UnknownExtent for `?`
	Elem  Type
}

func (t SeqType) typeNode() {}
func (t SeqType) AppendString(dst []byte) []byte {
	dst = append(dst, "array<"...)
	for _, extent := range t.Shape {
		if extent == UnknownExtent {
			dst = append(dst, '?')
		} else {
			dst = strconv.AppendInt(dst, int64(extent), 10)
		}
		dst = append(dst, 'x')
	}
	dst = t.Elem.AppendString(dst)
	return append(dst, '>')
}

// RecordType names a derived type, written rec<name>.
type RecordType struct {
	Name string
}

func (t RecordType) typeNode() {}
func (t RecordType) AppendString(dst []byte) []byte {
	dst = append(dst, "rec<"...)
	dst = append(dst, t.Name...)
	return append(dst, '>')
}

// FuncType is a function signature, written (T...) -> T or (T...) -> (T...).
type FuncType struct {
	Inputs  []Type
	Results []Type
}

func (t FuncType) typeNode() {}
func (t FuncType) AppendString(dst []byte) []byte {
	dst = append(dst, '(')
	for i, in := range t.Inputs {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = in.AppendString(dst)
	}
	dst = append(dst, ") -> "...)
	if len(t.Results) == 1 {
		return t.Results[0].AppendString(dst)
	}
	dst = append(dst, '(')
	for i, out := range t.Results {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = out.AppendString(dst)
	}
	return append(dst, ')')
}

// TypeString renders a type to a string.
func TypeString(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return string(t.AppendString(nil))
}

// TypesEqual reports structural equality of two types.
func TypesEqual(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch at := a.(type) {
	case IntType:
		bt, ok := b.(IntType)
		return ok && at.Width == bt.Width
	case FloatType:
		bt, ok := b.(FloatType)
		return ok && at.Width == bt.Width
	case LogicalType:
		bt, ok := b.(LogicalType)
		return ok && at.Kind == bt.Kind
	case CharType:
		bt, ok := b.(CharType)
		return ok && at.Kind == bt.Kind
	case ComplexType:
		bt, ok := b.(ComplexType)
		return ok && at.Kind == bt.Kind
	case IndexType:
		_, ok := b.(IndexType)
		return ok
	case NoneType:
		_, ok := b.(NoneType)
		return ok
	case RefType:
		bt, ok := b.(RefType)
		return ok && TypesEqual(at.Elem, bt.Elem)
	case HeapType:
		bt, ok := b.(HeapType)
		return ok && TypesEqual(at.Elem, bt.Elem)
	case PtrType:
		bt, ok := b.(PtrType)
		return ok && TypesEqual(at.Elem, bt.Elem)
	case SeqType:
		bt, ok := b.(SeqType)
		if !ok || len(at.Shape) != len(bt.Shape) || !TypesEqual(at.Elem, bt.Elem) {
			return false
		}
		for i := range at.Shape {
			if at.Shape[i] != bt.Shape[i] {
				return false
			}
		}
		return true
	case RecordType:
		bt, ok := b.(RecordType)
		return ok && at.Name == bt.Name
	case FuncType:
		bt, ok := b.(FuncType)
		return ok && typeListsEqual(at.Inputs, bt.Inputs) &&
			typeListsEqual(at.Results, bt.Results)
	}
	return false
}

func typeListsEqual(a, b []Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !TypesEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// IsReferenceLike reports whether t is a memory reference type (ref, heap,
// or ptr).
func IsReferenceLike(t Type) bool {
	switch t.(type) {
	case RefType, HeapType, PtrType:
		return true
	}
	return false
}

// ElemType returns the element type of a reference-like type, or nil.
func ElemType(t Type) Type {
	switch rt := t.(type) {
	case RefType:
		return rt.Elem
	case HeapType:
		return rt.Elem
	case PtrType:
		return rt.Elem
	}
	return nil
}

// IsIntegerLike reports whether t can carry an integer selector or operand
// (integers and index).
func IsIntegerLike(t Type) bool {
	switch t.(type) {
	case IntType, IndexType:
		return true
	}
	return false
}

// IsFloat reports whether t is a floating-point type.
func IsFloat(t Type) bool {
	_, ok := t.(FloatType)
	return ok
}
