package dtype

import (
	"fmt"
	"math"
)

// Scalar is a single typed value matching a DType, including the null
// value for a nullable DType. Scalars back expression literals and
// per-array statistics values.
type Scalar struct {
	typ   *DType
	null  bool
	value any // bool, int64/uint64 (sign/width implied by typ), float64, string, []byte, []Scalar (struct/list)
}

// NewNull constructs the null Scalar of the given DType. t must be
// nullable.
func NewNull(t *DType) *Scalar {
	return &Scalar{typ: t, null: true}
}

// NewBool constructs a Bool Scalar.
func NewBool(v bool, nullable bool) *Scalar {
	return &Scalar{typ: Bool(nullable), value: v}
}

// NewInt constructs a signed integer Scalar of the given width.
func NewInt(v int64, width PrimitiveWidth, nullable bool) *Scalar {
	return &Scalar{typ: Primitive(width, nullable), value: v}
}

// NewUint constructs an unsigned integer Scalar of the given width.
func NewUint(v uint64, width PrimitiveWidth, nullable bool) *Scalar {
	return &Scalar{typ: Primitive(width, nullable), value: v}
}

// NewFloat constructs a floating-point Scalar of the given width.
func NewFloat(v float64, width PrimitiveWidth, nullable bool) *Scalar {
	return &Scalar{typ: Primitive(width, nullable), value: v}
}

// NewUtf8 constructs a UTF-8 string Scalar.
func NewUtf8(v string, nullable bool) *Scalar {
	return &Scalar{typ: Utf8(nullable), value: v}
}

// NewBinary constructs a binary Scalar.
func NewBinary(v []byte, nullable bool) *Scalar {
	return &Scalar{typ: Binary(nullable), value: append([]byte(nil), v...)}
}

// NewStruct constructs a struct Scalar from field values in declaration
// order matching t's fields.
func NewStruct(t *DType, values []*Scalar) (*Scalar, error) {
	if t.Kind() != KindStruct {
		return nil, fmt.Errorf("dtype: NewStruct: %w: not a struct dtype", ErrDTypeMismatch)
	}
	if len(values) != len(t.Fields()) {
		return nil, fmt.Errorf("dtype: NewStruct: %w: expected %d field values, got %d", ErrInvalidArgument, len(t.Fields()), len(values))
	}
	return &Scalar{typ: t, value: values}, nil
}

// String renders the value followed by its DType, e.g. "20:i32" or
// "null:bool?".
func (s *Scalar) String() string {
	if s.null {
		return "null:" + s.typ.String()
	}
	return fmt.Sprintf("%v:%s", s.value, s.typ)
}

func (s *Scalar) DType() *DType { return s.typ }
func (s *Scalar) IsNull() bool  { return s.null }

// Bool returns the boolean value. Panics if the scalar is not a non-null
// Bool; callers must check IsNull and DType().Kind() first.
func (s *Scalar) Bool() bool { return s.value.(bool) }

// Int returns the value as int64, valid for signed Primitive scalars.
func (s *Scalar) Int() int64 { return s.value.(int64) }

// Uint returns the value as uint64, valid for unsigned Primitive scalars.
func (s *Scalar) Uint() uint64 { return s.value.(uint64) }

// Float returns the value as float64, valid for floating Primitive scalars.
func (s *Scalar) Float() float64 { return s.value.(float64) }

// Utf8 returns the string value.
func (s *Scalar) Utf8() string { return s.value.(string) }

// Binary returns the byte-string value.
func (s *Scalar) Binary() []byte { return s.value.([]byte) }

// StructFields returns the field values of a struct scalar, in
// declaration order.
func (s *Scalar) StructFields() []*Scalar { return s.value.([]*Scalar) }

// NewList constructs a list Scalar from element values.
func NewList(t *DType, values []*Scalar) (*Scalar, error) {
	if t.Kind() != KindList {
		return nil, fmt.Errorf("dtype: NewList: %w: not a list dtype", ErrDTypeMismatch)
	}
	return &Scalar{typ: t, value: values}, nil
}

// ListElements returns the element values of a list scalar, in order.
func (s *Scalar) ListElements() []*Scalar { return s.value.([]*Scalar) }

// Equal compares two scalars for equality. Floating-point comparison uses
// bit-pattern equality per spec.md §4.2, so NaN == NaN here, distinct from
// the ordering used by comparison kernels.
func (s *Scalar) Equal(o *Scalar) bool {
	if !s.typ.Equal(o.typ) {
		return false
	}
	if s.null || o.null {
		return s.null == o.null
	}
	switch s.typ.Kind() {
	case KindPrimitive:
		if s.typ.Width().IsFloat() {
			return math.Float64bits(s.Float()) == math.Float64bits(o.Float())
		}
		if s.typ.Width().IsSigned() {
			return s.Int() == o.Int()
		}
		return s.Uint() == o.Uint()
	case KindBool:
		return s.Bool() == o.Bool()
	case KindUtf8:
		return s.Utf8() == o.Utf8()
	case KindBinary:
		return string(s.Binary()) == string(o.Binary())
	case KindStruct:
		sf, of := s.StructFields(), o.StructFields()
		if len(sf) != len(of) {
			return false
		}
		for i := range sf {
			if !sf[i].Equal(of[i]) {
				return false
			}
		}
		return true
	case KindList:
		se, oe := s.ListElements(), o.ListElements()
		if len(se) != len(oe) {
			return false
		}
		for i := range se {
			if !se[i].Equal(oe[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Compare orders two non-null, same-typed scalars: -1, 0, 1. Ordering (not equality) is used by compute's relational
// kernels and statistics-based pruning; it treats NaN according to IEEE
// total order semantics (NaN sorts greater than +Inf), distinct from
// Equal's bit-pattern NaN==NaN rule.
func Compare(a, b *Scalar) (int, error) {
	if !a.typ.Equal(b.typ) {
		return 0, fmt.Errorf("dtype: Compare: %w: %s vs %s", ErrDTypeMismatch, a.typ, b.typ)
	}
	if a.null || b.null {
		return 0, fmt.Errorf("dtype: Compare: %w: null operand", ErrInvalidArgument)
	}
	switch a.typ.Kind() {
	case KindPrimitive:
		if a.typ.Width().IsFloat() {
			return compareFloat(a.Float(), b.Float()), nil
		}
		if a.typ.Width().IsSigned() {
			return compareInt(a.Int(), b.Int()), nil
		}
		return compareUint(a.Uint(), b.Uint()), nil
	case KindUtf8:
		return compareString(a.Utf8(), b.Utf8()), nil
	case KindBinary:
		return compareString(string(a.Binary()), string(b.Binary())), nil
	case KindBool:
		return compareBool(a.Bool(), b.Bool()), nil
	default:
		return 0, fmt.Errorf("dtype: Compare: %w: unorderable kind %s", ErrUnsupportedOperation, a.typ.Kind())
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareUint(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat(a, b float64) int {
	switch {
	case math.IsNaN(a) && math.IsNaN(b):
		return 0
	case math.IsNaN(a):
		return 1
	case math.IsNaN(b):
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a && b {
		return -1
	}
	return 1
}
