package expr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vortexdb/vortex/internal/dtype"
)

// exprFormatVersion is bumped whenever the wire shape of a node changes;
// Unmarshal rejects any other version outright rather than guessing at
// forward compatibility (spec.md §4.5's "stable across readers").
const exprFormatVersion = 1

// Marshal encodes e into Vortex's versioned expression wire format: a
// one-byte version, then a depth-first preorder walk of the tree with a
// one-byte tag per node.
func Marshal(e *Expr) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(exprFormatVersion)
	if err := marshalNode(&buf, e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalNode(buf *bytes.Buffer, e *Expr) error {
	buf.WriteByte(byte(e.kind))
	switch e.kind {
	case KindIdentity:
		// no payload

	case KindLiteral:
		return marshalScalar(buf, e.literal)

	case KindGetItem:
		if err := marshalString(buf, joinPath(e.path)); err != nil {
			return err
		}
		return marshalNode(buf, e.child)

	case KindNot:
		return marshalNode(buf, e.child)

	case KindBinary:
		buf.WriteByte(byte(e.op))
		if err := marshalNode(buf, e.lhs); err != nil {
			return err
		}
		return marshalNode(buf, e.rhs)

	default:
		return fmt.Errorf("expr: Marshal: invalid expression kind %d", e.kind)
	}
	return nil
}

// Unmarshal decodes the output of Marshal. An unrecognized version is
// rejected rather than parsed speculatively.
func Unmarshal(data []byte) (*Expr, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("expr: Unmarshal: empty input")
	}
	if data[0] != exprFormatVersion {
		return nil, fmt.Errorf("expr: Unmarshal: unsupported format version %d", data[0])
	}
	r := bytes.NewReader(data[1:])
	e, err := unmarshalNode(r)
	if err != nil {
		return nil, err
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("expr: Unmarshal: %d trailing bytes", r.Len())
	}
	return e, nil
}

func unmarshalNode(r *bytes.Reader) (*Expr, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch Kind(kindByte) {
	case KindIdentity:
		return Identity(), nil

	case KindLiteral:
		s, err := unmarshalScalar(r)
		if err != nil {
			return nil, err
		}
		return Literal(s), nil

	case KindGetItem:
		path, err := unmarshalString(r)
		if err != nil {
			return nil, err
		}
		child, err := unmarshalNode(r)
		if err != nil {
			return nil, err
		}
		return GetItem(child, path), nil

	case KindNot:
		child, err := unmarshalNode(r)
		if err != nil {
			return nil, err
		}
		return Not(child), nil

	case KindBinary:
		opByte, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		lhs, err := unmarshalNode(r)
		if err != nil {
			return nil, err
		}
		rhs, err := unmarshalNode(r)
		if err != nil {
			return nil, err
		}
		return Binary(BinaryOp(opByte), lhs, rhs), nil

	default:
		return nil, fmt.Errorf("expr: Unmarshal: unknown node kind %d", kindByte)
	}
}

func joinPath(path []string) string {
	out := path[0]
	for _, p := range path[1:] {
		out += "." + p
	}
	return out
}

func marshalString(buf *bytes.Buffer, s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("expr: Marshal: string too long: %d bytes", len(s))
	}
	var lenBuf [2]byte
	binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(s)))
	buf.Write(lenBuf[:])
	buf.WriteString(s)
	return nil
}

func unmarshalString(r *bytes.Reader) (string, error) {
	var lenBuf [2]byte
	if _, err := r.Read(lenBuf[:]); err != nil {
		return "", err
	}
	n := binary.LittleEndian.Uint16(lenBuf[:])
	out := make([]byte, n)
	if _, err := r.Read(out); err != nil {
		return "", err
	}
	return string(out), nil
}

// scalar wire tags. Distinct from dtype.Kind so the expression codec can
// evolve independently of the in-memory DType representation.
const (
	scalarTagNull uint8 = iota
	scalarTagBool
	scalarTagInt
	scalarTagUint
	scalarTagFloat
	scalarTagUtf8
	scalarTagBinary
)

func marshalScalar(buf *bytes.Buffer, s *dtype.Scalar) error {
	dt := s.DType()
	buf.WriteByte(byte(dt.Kind()))
	buf.WriteByte(boolByte(dt.Nullable()))
	if dt.Kind() == dtype.KindPrimitive {
		buf.WriteByte(byte(dt.Width()))
	}
	if s.IsNull() {
		buf.WriteByte(1)
		return nil
	}
	buf.WriteByte(0)
	switch dt.Kind() {
	case dtype.KindBool:
		buf.WriteByte(boolByte(s.Bool()))
	case dtype.KindPrimitive:
		var v [8]byte
		if dt.Width().IsFloat() {
			binary.LittleEndian.PutUint64(v[:], math.Float64bits(s.Float()))
		} else if dt.Width().IsSigned() {
			binary.LittleEndian.PutUint64(v[:], uint64(s.Int()))
		} else {
			binary.LittleEndian.PutUint64(v[:], s.Uint())
		}
		buf.Write(v[:])
	case dtype.KindUtf8:
		return marshalString(buf, s.Utf8())
	case dtype.KindBinary:
		if len(s.Binary()) > 0xFFFF {
			return fmt.Errorf("expr: Marshal: binary scalar too long")
		}
		var lenBuf [2]byte
		binary.LittleEndian.PutUint16(lenBuf[:], uint16(len(s.Binary())))
		buf.Write(lenBuf[:])
		buf.Write(s.Binary())
	default:
		return fmt.Errorf("expr: Marshal: unsupported literal dtype kind %s", dt.Kind())
	}
	return nil
}

func unmarshalScalar(r *bytes.Reader) (*dtype.Scalar, error) {
	kindByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	nullableByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	nullable := nullableByte != 0
	kind := dtype.Kind(kindByte)

	var width dtype.PrimitiveWidth
	if kind == dtype.KindPrimitive {
		wb, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		width = dtype.PrimitiveWidth(wb)
	}

	isNullByte, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if isNullByte != 0 {
		return dtype.NewNull(scalarDType(kind, width, nullable)), nil
	}

	switch kind {
	case dtype.KindBool:
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return dtype.NewBool(b != 0, nullable), nil
	case dtype.KindPrimitive:
		var v [8]byte
		if _, err := r.Read(v[:]); err != nil {
			return nil, err
		}
		raw := binary.LittleEndian.Uint64(v[:])
		switch {
		case width.IsFloat():
			return dtype.NewFloat(math.Float64frombits(raw), width, nullable), nil
		case width.IsSigned():
			return dtype.NewInt(int64(raw), width, nullable), nil
		default:
			return dtype.NewUint(raw, width, nullable), nil
		}
	case dtype.KindUtf8:
		s, err := unmarshalString(r)
		if err != nil {
			return nil, err
		}
		return dtype.NewUtf8(s, nullable), nil
	case dtype.KindBinary:
		var lenBuf [2]byte
		if _, err := r.Read(lenBuf[:]); err != nil {
			return nil, err
		}
		n := binary.LittleEndian.Uint16(lenBuf[:])
		b := make([]byte, n)
		if _, err := r.Read(b); err != nil {
			return nil, err
		}
		return dtype.NewBinary(b, nullable), nil
	default:
		return nil, fmt.Errorf("expr: Unmarshal: unsupported literal dtype kind %d", kindByte)
	}
}

func scalarDType(kind dtype.Kind, width dtype.PrimitiveWidth, nullable bool) *dtype.DType {
	switch kind {
	case dtype.KindBool:
		return dtype.Bool(nullable)
	case dtype.KindPrimitive:
		return dtype.Primitive(width, nullable)
	case dtype.KindUtf8:
		return dtype.Utf8(nullable)
	case dtype.KindBinary:
		return dtype.Binary(nullable)
	default:
		return dtype.Null(nullable)
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
