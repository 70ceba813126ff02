package dtype

import (
	"fmt"
	"strings"
)

// Kind identifies which alternative of the DType sum a node is.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindPrimitive
	KindUtf8
	KindBinary
	KindStruct
	KindList
	KindExtension
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindPrimitive:
		return "primitive"
	case KindUtf8:
		return "utf8"
	case KindBinary:
		return "binary"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindExtension:
		return "extension"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// PrimitiveWidth enumerates the fixed-width numeric representations a
// Primitive node can carry.
type PrimitiveWidth uint8

const (
	I8 PrimitiveWidth = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
)

// Bits returns the bit width of the primitive representation.
func (w PrimitiveWidth) Bits() int {
	switch w {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32, F32:
		return 32
	case I64, U64, F64:
		return 64
	default:
		return 0
	}
}

// IsFloat reports whether the width is a floating-point representation.
func (w PrimitiveWidth) IsFloat() bool { return w == F32 || w == F64 }

// IsSigned reports whether the width is a signed integer representation.
func (w PrimitiveWidth) IsSigned() bool {
	switch w {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

func (w PrimitiveWidth) String() string {
	names := [...]string{"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64", "f32", "f64"}
	if int(w) < len(names) {
		return names[w]
	}
	return "unknown"
}

// Field is one named member of a Struct DType. Insertion order is
// semantic: it participates in structural equality and is the canonical
// projection path ordering.
type Field struct {
	Name string
	Type *DType
}

// DType is Vortex's logical type tree. The zero value is not valid; use
// the constructors below.
type DType struct {
	kind      Kind
	nullable  bool
	width     PrimitiveWidth // KindPrimitive only
	fields    []Field        // KindStruct only
	elem      *DType          // KindList only
	extID     string          // KindExtension only
	extMeta   []byte          // KindExtension only
	extStore  *DType          // KindExtension only
}

// Null constructs the Null DType. nullable is almost always true for
// Null, but the flag is still carried explicitly for uniformity.
func Null(nullable bool) *DType { return &DType{kind: KindNull, nullable: nullable} }

// Bool constructs a Bool DType.
func Bool(nullable bool) *DType { return &DType{kind: KindBool, nullable: nullable} }

// Primitive constructs a fixed-width numeric DType.
func Primitive(width PrimitiveWidth, nullable bool) *DType {
	return &DType{kind: KindPrimitive, width: width, nullable: nullable}
}

// Utf8 constructs a UTF-8 string DType.
func Utf8(nullable bool) *DType { return &DType{kind: KindUtf8, nullable: nullable} }

// Binary constructs an untyped byte-string DType.
func Binary(nullable bool) *DType { return &DType{kind: KindBinary, nullable: nullable} }

// Struct constructs a struct-of-fields DType. Field order is preserved and
// semantic.
func Struct(nullable bool, fields ...Field) *DType {
	cp := make([]Field, len(fields))
	copy(cp, fields)
	return &DType{kind: KindStruct, nullable: nullable, fields: cp}
}

// List constructs a homogeneous variable-length list DType.
func List(elem *DType, nullable bool) *DType {
	return &DType{kind: KindList, nullable: nullable, elem: elem}
}

// Extension constructs an Extension DType. Storage governs physical
// layout; id and metadata convey domain meaning that is transparent to
// every encoding (invariant from spec.md §3).
func Extension(id string, storage *DType, metadata []byte, nullable bool) *DType {
	return &DType{kind: KindExtension, nullable: nullable, extID: id, extStore: storage, extMeta: append([]byte(nil), metadata...)}
}

func (d *DType) Kind() Kind       { return d.kind }
func (d *DType) Nullable() bool   { return d.nullable }
func (d *DType) Width() PrimitiveWidth {
	return d.width
}
func (d *DType) Fields() []Field { return d.fields }
func (d *DType) Elem() *DType    { return d.elem }

func (d *DType) ExtensionID() string      { return d.extID }
func (d *DType) ExtensionMetadata() []byte { return d.extMeta }
func (d *DType) ExtensionStorage() *DType { return d.extStore }

// AsNullable returns a copy of d with nullable set to true (or d itself if
// already nullable).
func (d *DType) AsNullable() *DType {
	if d.nullable {
		return d
	}
	cp := *d
	cp.nullable = true
	return &cp
}

// AsNonNullable returns a copy of d with nullable set to false.
func (d *DType) AsNonNullable() *DType {
	if !d.nullable {
		return d
	}
	cp := *d
	cp.nullable = false
	return &cp
}

// PhysicalDType returns the DType that governs physical layout:
// Extension's storage DType, or d itself for every other kind. Encodings
// must dispatch on this, never on d directly, per the Extension
// transparency invariant.
func (d *DType) PhysicalDType() *DType {
	if d.kind == KindExtension {
		return d.extStore.PhysicalDType()
	}
	return d
}

// Equal reports structural equality. Field order is semantic for Struct.
// Extension equality requires both id and metadata bytes to match
// (SPEC_FULL.md open question D.2).
func (d *DType) Equal(other *DType) bool {
	if d == other {
		return true
	}
	if d == nil || other == nil {
		return false
	}
	if d.kind != other.kind || d.nullable != other.nullable {
		return false
	}
	switch d.kind {
	case KindPrimitive:
		return d.width == other.width
	case KindStruct:
		if len(d.fields) != len(other.fields) {
			return false
		}
		for i := range d.fields {
			if d.fields[i].Name != other.fields[i].Name || !d.fields[i].Type.Equal(other.fields[i].Type) {
				return false
			}
		}
		return true
	case KindList:
		return d.elem.Equal(other.elem)
	case KindExtension:
		return d.extID == other.extID &&
			string(d.extMeta) == string(other.extMeta) &&
			d.extStore.Equal(other.extStore)
	default:
		return true
	}
}

// IsAssignableFrom reports whether a value of DType other can be used
// where d is expected without an explicit cast: widening primitives and
// relaxing non-nullable -> nullable are allowed; narrowing is not.
func (d *DType) IsAssignableFrom(other *DType) bool {
	if other == nil || d == nil {
		return false
	}
	if other.nullable && !d.nullable {
		return false
	}
	if d.kind != other.kind {
		return false
	}
	switch d.kind {
	case KindPrimitive:
		return widensTo(other.width, d.width)
	case KindStruct:
		if len(d.fields) != len(other.fields) {
			return false
		}
		for i := range d.fields {
			if d.fields[i].Name != other.fields[i].Name || !d.fields[i].Type.IsAssignableFrom(other.fields[i].Type) {
				return false
			}
		}
		return true
	case KindList:
		return d.elem.IsAssignableFrom(other.elem)
	case KindExtension:
		return d.extID == other.extID && d.extStore.IsAssignableFrom(other.extStore)
	default:
		return true
	}
}

// widensTo reports whether a value of width `from` can be assigned to a
// slot of width `to` without precision loss or an explicit cast.
func widensTo(from, to PrimitiveWidth) bool {
	if from == to {
		return true
	}
	if from.IsFloat() != to.IsFloat() {
		return false
	}
	if from.IsFloat() {
		return from == F32 && to == F64
	}
	if from.IsSigned() != to.IsSigned() {
		return false
	}
	return to.Bits() >= from.Bits() && from.Bits() <= to.Bits()
}

// String renders a human-readable type expression, e.g.
// "struct<a: i32, b: bool?>".
func (d *DType) String() string {
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d *DType) write(b *strings.Builder) {
	switch d.kind {
	case KindStruct:
		b.WriteString("struct<")
		for i, f := range d.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteString(": ")
			f.Type.write(b)
		}
		b.WriteString(">")
	case KindList:
		b.WriteString("list<")
		d.elem.write(b)
		b.WriteString(">")
	case KindExtension:
		b.WriteString("ext[")
		b.WriteString(d.extID)
		b.WriteString("]<")
		d.extStore.write(b)
		b.WriteString(">")
	case KindPrimitive:
		b.WriteString(d.width.String())
	default:
		b.WriteString(d.kind.String())
	}
	if d.nullable {
		b.WriteString("?")
	}
}
