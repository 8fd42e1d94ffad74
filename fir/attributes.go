package fir

import "strconv"

// Attribute is immutable compile-time metadata attached to an operation by
// name.
type Attribute interface {
	AppendString(dst []byte) []byte
	attributeNode()
}

// IntAttr is an integer literal attribute.
type IntAttr struct {
	Value int64
}

func (a IntAttr) attributeNode() {}
func (a IntAttr) AppendString(dst []byte) []byte {
	return strconv.AppendInt(dst, a.Value, 10)
}

// FloatAttr is a floating-point literal attribute.
type FloatAttr struct {
	Value float64
}

func (a FloatAttr) attributeNode() {}
func (a FloatAttr) AppendString(dst []byte) []byte {
	dst = strconv.AppendFloat(dst, a.Value, 'g', -1, 64)
	// Keep the float/integer distinction through a round trip.
	if !hasFloatSyntax(dst) {
		dst = append(dst, ".0"...)
	}
	return dst
}

func hasFloatSyntax(lit []byte) bool {
	for _, c := range lit {
		if c == '.' || c == 'e' || c == 'E' || c == 'n' || c == 'i' {
			return true
		}
	}
	return false
}

// StringAttr is a quoted string attribute.
type StringAttr struct {
	Value string
}

func (a StringAttr) attributeNode() {}
func (a StringAttr) AppendString(dst []byte) []byte {
	return strconv.AppendQuote(dst, a.Value)
}

// TypeAttr carries a type as metadata.
type TypeAttr struct {
	Type Type
}

func (a TypeAttr) attributeNode() {}
func (a TypeAttr) AppendString(dst []byte) []byte {
	return a.Type.AppendString(dst)
}

// UnitAttr is a presence-only marker attribute, written `unit`.
type UnitAttr struct{}

func (a UnitAttr) attributeNode() {}
func (a UnitAttr) AppendString(dst []byte) []byte {
	return append(dst, "unit"...)
}

// SymbolRefAttr names a module-level symbol, written @name.
type SymbolRefAttr struct {
	Name string
}

func (a SymbolRefAttr) attributeNode() {}
func (a SymbolRefAttr) AppendString(dst []byte) []byte {
	dst = append(dst, '@')
	return append(dst, a.Name...)
}

// DenseIntAttr is a dense array of i32 values, written dense<[1, 2, 3]>.
// Segmented-operand operations record their group lengths with it.
type DenseIntAttr struct {
	Values []int32
}

func (a DenseIntAttr) attributeNode() {}
func (a DenseIntAttr) AppendString(dst []byte) []byte {
	dst = append(dst, "dense<["...)
	for i, v := range a.Values {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = strconv.AppendInt(dst, int64(v), 10)
	}
	return append(dst, "]>"...)
}

// ArrayAttr is an ordered list of attributes, written [a, b, c].
type ArrayAttr struct {
	Elems []Attribute
}

func (a ArrayAttr) attributeNode() {}
func (a ArrayAttr) AppendString(dst []byte) []byte {
	dst = append(dst, '[')
	for i, e := range a.Elems {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = e.AppendString(dst)
	}
	return append(dst, ']')
}

// CaseKind discriminates the selector forms of a select_case branch.
type CaseKind int

const (
	// CasePoint matches one exact value: CASE (v).
	CasePoint CaseKind = iota
	// CaseInterval matches a closed range: CASE (lo:hi).
	CaseInterval
	// CaseLower matches values >= a bound: CASE (lo:).
	CaseLower
	// CaseUpper matches values <= a bound: CASE (:hi).
	CaseUpper
)

// CaseAttr is a select_case comparator selector, written #fir.point,
// #fir.interval, #fir.lower, or #fir.upper.
type CaseAttr struct {
	Kind CaseKind
}

func (a CaseAttr) attributeNode() {}
func (a CaseAttr) AppendString(dst []byte) []byte {
	switch a.Kind {
	case CasePoint:
		return append(dst, "#fir.point"...)
	case CaseInterval:
		return append(dst, "#fir.interval"...)
	case CaseLower:
		return append(dst, "#fir.lower"...)
	case CaseUpper:
		return append(dst, "#fir.upper"...)
	}
	return append(dst, "#fir.invalid"...)
}

// CompareOperandCount returns how many compare operands the selector form
// consumes: two bounds for an interval, one value otherwise.
func (a CaseAttr) CompareOperandCount() int {
	if a.Kind == CaseInterval {
		return 2
	}
	return 1
}

// AttrString renders an attribute to a string.
func AttrString(a Attribute) string {
	if a == nil {
		return "<nil>"
	}
	return string(a.AppendString(nil))
}

// AttrsEqual reports structural equality of two attributes.
func AttrsEqual(a, b Attribute) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch at := a.(type) {
	case IntAttr:
		bt, ok := b.(IntAttr)
		return ok && at.Value == bt.Value
	case FloatAttr:
		bt, ok := b.(FloatAttr)
		return ok && at.Value == bt.Value
	case StringAttr:
		bt, ok := b.(StringAttr)
		return ok && at.Value == bt.Value
	case TypeAttr:
		bt, ok := b.(TypeAttr)
		return ok && TypesEqual(at.Type, bt.Type)
	case UnitAttr:
		_, ok := b.(UnitAttr)
		return ok
	case SymbolRefAttr:
		bt, ok := b.(SymbolRefAttr)
		return ok && at.Name == bt.Name
	case DenseIntAttr:
		bt, ok := b.(DenseIntAttr)
		if !ok || len(at.Values) != len(bt.Values) {
			return false
		}
		for i := range at.Values {
			if at.Values[i] != bt.Values[i] {
				return false
			}
		}
		return true
	case ArrayAttr:
		bt, ok := b.(ArrayAttr)
		if !ok || len(at.Elems) != len(bt.Elems) {
			return false
		}
		for i := range at.Elems {
			if !AttrsEqual(at.Elems[i], bt.Elems[i]) {
				return false
			}
		}
		return true
	case CaseAttr:
		bt, ok := b.(CaseAttr)
		return ok && at.Kind == bt.Kind
	}
	return false
}
