package fileformat

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/vortexdb/vortex/internal/dtype"
)

// DType wire layout. No flatc schema compiler is available in this
// module, so the tables below are built and read directly against the
// flatbuffers.Builder/Table primitives, the way the teacher hand-rolls
// its own wire formats in internal/message rather than reaching for a
// schema compiler for an in-repo-only shape. Field indices are fixed by
// the constants below and must not be reordered once a file exists.
const (
	dtFieldKind     = 0 // uint8
	dtFieldNullable = 1 // uint8 (bool)
	dtFieldWidth    = 2 // uint8
	dtFieldElem     = 3 // DType table offset, KindList only
	dtFieldFields   = 4 // vector<FieldEntry> offset, KindStruct only
	dtFieldExtID    = 5 // string offset, KindExtension only
	dtFieldExtStore = 6 // DType table offset, KindExtension only
	dtFieldExtMeta  = 7 // ubyte vector offset, KindExtension only
	dtFieldCount    = 8

	feFieldName  = 0 // string offset
	feFieldDType = 1 // DType table offset
	feFieldCount = 2
)

// MarshalDType encodes d as a standalone flatbuffer.
func MarshalDType(d *dtype.DType) []byte {
	b := flatbuffers.NewBuilder(256)
	root := buildDType(b, d)
	b.Finish(root)
	return b.FinishedBytes()
}

// UnmarshalDType decodes a flatbuffer produced by MarshalDType.
func UnmarshalDType(data []byte) (*dtype.DType, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("fileformat: UnmarshalDType: %w", ErrInvalidFooter)
	}
	n := flatbuffers.GetUOffsetT(data)
	t := &flatbuffers.Table{Bytes: data, Pos: n}
	return readDType(t)
}

func buildDType(b *flatbuffers.Builder, d *dtype.DType) flatbuffers.UOffsetT {
	var elemOff, fieldsOff, extIDOff, extStoreOff, extMetaOff flatbuffers.UOffsetT

	switch d.Kind() {
	case dtype.KindList:
		elemOff = buildDType(b, d.Elem())
	case dtype.KindStruct:
		entryOffs := make([]flatbuffers.UOffsetT, len(d.Fields()))
		for i, f := range d.Fields() {
			nameOff := b.CreateString(f.Name)
			typeOff := buildDType(b, f.Type)
			b.StartObject(feFieldCount)
			b.PrependUOffsetTSlot(feFieldDType, typeOff, 0)
			b.PrependUOffsetTSlot(feFieldName, nameOff, 0)
			entryOffs[i] = b.EndObject()
		}
		b.StartVector(4, len(entryOffs), 4)
		for i := len(entryOffs) - 1; i >= 0; i-- {
			b.PrependUOffsetT(entryOffs[i])
		}
		fieldsOff = b.EndVector(len(entryOffs))
	case dtype.KindExtension:
		extIDOff = b.CreateString(d.ExtensionID())
		extStoreOff = buildDType(b, d.ExtensionStorage())
		extMetaOff = b.CreateByteVector(d.ExtensionMetadata())
	}

	b.StartObject(dtFieldCount)
	if extMetaOff != 0 {
		b.PrependUOffsetTSlot(dtFieldExtMeta, extMetaOff, 0)
	}
	if extStoreOff != 0 {
		b.PrependUOffsetTSlot(dtFieldExtStore, extStoreOff, 0)
	}
	if extIDOff != 0 {
		b.PrependUOffsetTSlot(dtFieldExtID, extIDOff, 0)
	}
	if fieldsOff != 0 {
		b.PrependUOffsetTSlot(dtFieldFields, fieldsOff, 0)
	}
	if elemOff != 0 {
		b.PrependUOffsetTSlot(dtFieldElem, elemOff, 0)
	}
	b.PrependUint8Slot(dtFieldWidth, uint8(d.Width()), 0)
	b.PrependUint8Slot(dtFieldNullable, boolToByte(d.Nullable()), 0)
	b.PrependUint8Slot(dtFieldKind, uint8(d.Kind()), 0)
	return b.EndObject()
}

func readDType(t *flatbuffers.Table) (*dtype.DType, error) {
	kind := dtype.Kind(readUint8Field(t, dtFieldKind))
	nullable := readUint8Field(t, dtFieldNullable) != 0
	width := dtype.PrimitiveWidth(readUint8Field(t, dtFieldWidth))

	switch kind {
	case dtype.KindNull:
		return dtype.Null(nullable), nil
	case dtype.KindBool:
		return dtype.Bool(nullable), nil
	case dtype.KindPrimitive:
		return dtype.Primitive(width, nullable), nil
	case dtype.KindUtf8:
		return dtype.Utf8(nullable), nil
	case dtype.KindBinary:
		return dtype.Binary(nullable), nil
	case dtype.KindList:
		childTable, ok := readTableField(t, dtFieldElem)
		if !ok {
			return nil, fmt.Errorf("fileformat: readDType: list missing element type: %w", ErrInvalidFooter)
		}
		elem, err := readDType(childTable)
		if err != nil {
			return nil, err
		}
		return dtype.List(elem, nullable), nil
	case dtype.KindStruct:
		fields, err := readStructFields(t)
		if err != nil {
			return nil, err
		}
		return dtype.Struct(nullable, fields...), nil
	case dtype.KindExtension:
		id := readStringField(t, dtFieldExtID)
		storeTable, ok := readTableField(t, dtFieldExtStore)
		if !ok {
			return nil, fmt.Errorf("fileformat: readDType: extension missing storage type: %w", ErrInvalidFooter)
		}
		store, err := readDType(storeTable)
		if err != nil {
			return nil, err
		}
		meta := readByteVectorField(t, dtFieldExtMeta)
		return dtype.Extension(id, store, meta, nullable), nil
	default:
		return nil, fmt.Errorf("fileformat: readDType: unknown kind %d: %w", kind, ErrInvalidFooter)
	}
}

func readStructFields(t *flatbuffers.Table) ([]dtype.Field, error) {
	o := t.Offset(flatbuffers.VOffsetT((dtFieldFields + 2) * 2))
	if o == 0 {
		return nil, nil
	}
	vecPos := t.Vector(flatbuffers.UOffsetT(o))
	n := t.VectorLen(flatbuffers.UOffsetT(o))
	fields := make([]dtype.Field, n)
	for i := 0; i < n; i++ {
		slotPos := vecPos + flatbuffers.UOffsetT(i)*4
		entry := &flatbuffers.Table{Bytes: t.Bytes, Pos: t.Indirect(slotPos)}

		name := readStringField(entry, feFieldName)
		typeTable, ok := readTableField(entry, feFieldDType)
		if !ok {
			return nil, fmt.Errorf("fileformat: readStructFields: field %q missing type: %w", name, ErrInvalidFooter)
		}
		typ, err := readDType(typeTable)
		if err != nil {
			return nil, err
		}
		fields[i] = dtype.Field{Name: name, Type: typ}
	}
	return fields, nil
}

func readUint8Field(t *flatbuffers.Table, field int) uint8 {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return 0
	}
	return t.GetUint8(t.Pos + o)
}

func readStringField(t *flatbuffers.Table, field int) string {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return ""
	}
	return string(t.ByteVector(o + t.Pos))
}

func readByteVectorField(t *flatbuffers.Table, field int) []byte {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return nil
	}
	return t.ByteVector(o + t.Pos)
}

func readTableField(t *flatbuffers.Table, field int) (*flatbuffers.Table, bool) {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return nil, false
	}
	pos := t.Indirect(o + t.Pos)
	return &flatbuffers.Table{Bytes: t.Bytes, Pos: pos}, true
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
