package layout

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/fileformat"
	"github.com/vortexdb/vortex/internal/segment"
)

// Layout wire layout, same hand-rolled flatbuffers convention as
// internal/fileformat's DType/SegmentMap codecs (no flatc in this
// module). This is what internal/fileformat.FileLayout.RootLayout
// carries opaquely — MarshalLayout/UnmarshalLayout give it meaning.
//
// Every node's dtype is re-derived at decode time from the root dtype
// plus the vtable structure (Struct fields, Chunked row dtype) instead
// of being carried per node, the same out-of-band convention
// array.DecodeArrayParts uses for its children. The one exception is a
// ChunkedLayout's statistics child: its dtype has no fixed relation to
// the parent's, so it is carried explicitly as an embedded DType
// flatbuffer (via internal/fileformat.MarshalDType/UnmarshalDType) in
// lFieldStatsDType.
const (
	lFieldVTable     = 0 // uint16
	lFieldLength     = 1 // uint64
	lFieldMetadata   = 2 // ubyte vector
	lFieldChildren   = 3 // vector<Layout>
	lFieldSegments   = 4 // vector<uint32>
	lFieldStatsDType = 5 // ubyte vector, embedded DType flatbuffer; Chunked only
	lFieldCount      = 6
)

// MarshalLayout encodes l as a standalone flatbuffer.
func MarshalLayout(l *Layout) []byte {
	b := flatbuffers.NewBuilder(512)
	root := buildLayout(b, l)
	b.Finish(root)
	return b.FinishedBytes()
}

func buildLayout(b *flatbuffers.Builder, l *Layout) flatbuffers.UOffsetT {
	childOffs := make([]flatbuffers.UOffsetT, len(l.children))
	for i, c := range l.children {
		childOffs[i] = buildLayout(b, c)
	}

	var statsDTypeOff flatbuffers.UOffsetT
	if sc := l.statsChild(); sc != nil {
		statsDTypeOff = b.CreateByteVector(fileformat.MarshalDType(sc.dt))
	}

	metaOff := b.CreateByteVector(l.metadata)

	b.StartVector(4, len(childOffs), 4)
	for i := len(childOffs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(childOffs[i])
	}
	childrenOff := b.EndVector(len(childOffs))

	b.StartVector(4, len(l.segments), 4)
	for i := len(l.segments) - 1; i >= 0; i-- {
		b.PrependUint32(uint32(l.segments[i]))
	}
	segmentsOff := b.EndVector(len(l.segments))

	b.StartObject(lFieldCount)
	if statsDTypeOff != 0 {
		b.PrependUOffsetTSlot(lFieldStatsDType, statsDTypeOff, 0)
	}
	b.PrependUOffsetTSlot(lFieldSegments, segmentsOff, 0)
	b.PrependUOffsetTSlot(lFieldChildren, childrenOff, 0)
	b.PrependUOffsetTSlot(lFieldMetadata, metaOff, 0)
	b.PrependUint64Slot(lFieldLength, l.length, 0)
	b.PrependUint16Slot(lFieldVTable, uint16(l.vtable), 0)
	return b.EndObject()
}

// UnmarshalLayout decodes a flatbuffer produced by MarshalLayout, given
// the file's root dtype (from the footer's DType flatbuffer).
func UnmarshalLayout(data []byte, rootDType *dtype.DType) (*Layout, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("layout: UnmarshalLayout: truncated input: %w", ErrInvalidLayout)
	}
	n := flatbuffers.GetUOffsetT(data)
	t := &flatbuffers.Table{Bytes: data, Pos: n}
	return readLayout(t, rootDType)
}

func readLayout(t *flatbuffers.Table, dt *dtype.DType) (*Layout, error) {
	vtable := VTableID(readUint16FieldL(t, lFieldVTable))
	length := readUint64FieldL(t, lFieldLength)
	metadata := readByteVectorFieldL(t, lFieldMetadata)
	segments := readSegmentsFieldL(t, lFieldSegments)

	l := &Layout{vtable: vtable, dt: dt, length: length, metadata: metadata, segments: segments}

	var statsDType *dtype.DType
	if raw := readByteVectorFieldL(t, lFieldStatsDType); raw != nil {
		sd, err := fileformat.UnmarshalDType(raw)
		if err != nil {
			return nil, fmt.Errorf("layout: UnmarshalLayout: statistics dtype: %w", err)
		}
		statsDType = sd
	}

	children, err := readChildrenFieldL(t, l, dt, statsDType)
	if err != nil {
		return nil, err
	}
	l.children = children
	return l, nil
}

func readChildrenFieldL(t *flatbuffers.Table, l *Layout, dt, statsDType *dtype.DType) ([]*Layout, error) {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((lFieldChildren + 2) * 2)))
	if o == 0 {
		return nil, nil
	}
	vecPos := t.Vector(o)
	n := t.VectorLen(o)

	childDTypes := childDTypesFor(l.vtable, dt, statsDType, n)
	children := make([]*Layout, n)
	for i := 0; i < n; i++ {
		slotPos := vecPos + flatbuffers.UOffsetT(i)*4
		childTable := &flatbuffers.Table{Bytes: t.Bytes, Pos: t.Indirect(slotPos)}
		child, err := readLayout(childTable, childDTypes[i])
		if err != nil {
			return nil, err
		}
		children[i] = child
	}
	return children, nil
}

// childDTypesFor derives every child's dtype from the parent's, matching
// the constructors' own invariants: Struct children follow field order;
// Chunked row children all share the parent dtype, and its trailing
// statistics child (if statsDType is non-nil) gets that embedded dtype
// instead.
func childDTypesFor(vtable VTableID, dt, statsDType *dtype.DType, n int) []*dtype.DType {
	out := make([]*dtype.DType, n)
	switch vtable {
	case VTableStruct:
		fields := dt.PhysicalDType().Fields()
		for i := range out {
			if i < len(fields) {
				out[i] = fields[i].Type
			}
		}
	case VTableChunked:
		for i := range out {
			out[i] = dt
		}
		if statsDType != nil && n > 0 {
			out[n-1] = statsDType
		}
	default:
		for i := range out {
			out[i] = dt
		}
	}
	return out
}

func readUint16FieldL(t *flatbuffers.Table, field int) uint16 {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return 0
	}
	return t.GetUint16(t.Pos + o)
}

func readUint64FieldL(t *flatbuffers.Table, field int) uint64 {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return 0
	}
	return t.GetUint64(t.Pos + o)
}

func readByteVectorFieldL(t *flatbuffers.Table, field int) []byte {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return nil
	}
	return t.ByteVector(o + t.Pos)
}

func readSegmentsFieldL(t *flatbuffers.Table, field int) []segment.ID {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return nil
	}
	vecPos := t.Vector(o)
	n := t.VectorLen(o)
	out := make([]segment.ID, n)
	for i := 0; i < n; i++ {
		out[i] = segment.ID(t.GetUint32(vecPos + flatbuffers.UOffsetT(i)*4))
	}
	return out
}
