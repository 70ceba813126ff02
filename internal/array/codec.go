package array

import (
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/vortexdb/vortex/internal/buffer"
	"github.com/vortexdb/vortex/internal/dtype"
)

// ArrayParts is the wire shape named in spec.md §6's IPC surface: a
// single Array serialized as `(DType flatbuffer, ArrayParts flatbuffer,
// buffers concatenated)`. This file implements the ArrayParts half —
// encoding id, metadata, recursive children, and each buffer's length so
// a reader can split the separately-concatenated buffer bytes back
// apart. DType itself is encoded by internal/fileformat.MarshalDType;
// ArrayParts only ever carries a dtype for its root, passed in
// separately by the caller, matching the IPC surface's three-part split.
//
// Hand-built against flatbuffers.Builder/Table directly, no flatc
// available in this module, following the same convention as
// internal/fileformat's DType/SegmentMap codecs.
const (
	apFieldEncodingName = 0 // string
	apFieldEncodingCode = 1 // uint16
	apFieldMetadata     = 2 // ubyte vector
	apFieldChildren     = 3 // vector<ArrayParts>
	apFieldBufferLens   = 4 // vector<uint32>
	apFieldLength       = 5 // uint32, element count
	apFieldCount        = 6
)

// EncodeArrayParts serializes a's parts tree (not its buffer bytes) into
// a standalone flatbuffer, alongside the concatenated buffer bytes in
// depth-first, pre-order traversal order matching the children encoding
// order (the same order DecodeArrayParts expects to consume them in).
func EncodeArrayParts(a *Array) (partsBytes []byte, buffers [][]byte) {
	b := flatbuffers.NewBuilder(512)
	root, bufs := buildArrayParts(b, a, nil)
	b.Finish(root)
	return b.FinishedBytes(), bufs
}

func buildArrayParts(b *flatbuffers.Builder, a *Array, bufs [][]byte) (flatbuffers.UOffsetT, [][]byte) {
	childOffs := make([]flatbuffers.UOffsetT, len(a.Children()))
	for i, c := range a.Children() {
		childOffs[i], bufs = buildArrayParts(b, c, bufs)
	}

	bufLens := make([]uint32, len(a.Buffers()))
	for i, buf := range a.Buffers() {
		bufLens[i] = uint32(buf.Len())
		bufs = append(bufs, buf.Bytes())
	}

	nameOff := b.CreateString(a.EncodingID().Name)
	metaOff := b.CreateByteVector(a.Metadata())

	b.StartVector(4, len(childOffs), 4)
	for i := len(childOffs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(childOffs[i])
	}
	childrenOff := b.EndVector(len(childOffs))

	b.StartVector(4, len(bufLens), 4)
	for i := len(bufLens) - 1; i >= 0; i-- {
		b.PrependUint32(bufLens[i])
	}
	bufLensOff := b.EndVector(len(bufLens))

	b.StartObject(apFieldCount)
	b.PrependUint32Slot(apFieldLength, uint32(a.Length()), 0)
	b.PrependUOffsetTSlot(apFieldBufferLens, bufLensOff, 0)
	b.PrependUOffsetTSlot(apFieldChildren, childrenOff, 0)
	b.PrependUOffsetTSlot(apFieldMetadata, metaOff, 0)
	b.PrependUint16Slot(apFieldEncodingCode, a.EncodingID().Code, 0)
	b.PrependUOffsetTSlot(apFieldEncodingName, nameOff, 0)
	off := b.EndObject()
	return off, bufs
}

// DecodeArrayParts reconstructs an Array tree from partsBytes (produced
// by EncodeArrayParts) and dt (the root DType, carried separately per the
// IPC surface's three-part split), consuming buffers in the same
// depth-first pre-order EncodeArrayParts produced them in. Every node is
// validated against the Registry via New, satisfying invariant I1 on
// load.
func DecodeArrayParts(partsBytes []byte, dt *dtype.DType, buffers [][]byte) (*Array, error) {
	if len(partsBytes) < 4 {
		return nil, fmt.Errorf("array: DecodeArrayParts: truncated input")
	}
	n := flatbuffers.GetUOffsetT(partsBytes)
	t := &flatbuffers.Table{Bytes: partsBytes, Pos: n}
	a, _, err := readArrayParts(t, dt, buffers)
	return a, err
}

func readArrayParts(t *flatbuffers.Table, dt *dtype.DType, buffers [][]byte) (*Array, [][]byte, error) {
	name := readStringFieldAP(t, apFieldEncodingName)
	code := readUint16FieldAP(t, apFieldEncodingCode)
	metadata := readByteVectorFieldAP(t, apFieldMetadata)
	length := readUint32FieldAP(t, apFieldLength)

	children, err := readChildrenAP(t, dt, buffers)
	if err != nil {
		return nil, buffers, err
	}
	// children consumed some buffers; recompute how many by re-walking
	// is wasteful, so readChildrenAP returns the remaining slice directly.
	remaining := children.remaining

	bufLens := readUint32VectorAP(t, apFieldBufferLens)
	ownBuffers := make([]*buffer.Buffer, len(bufLens))
	for i, l := range bufLens {
		if len(remaining) == 0 {
			return nil, remaining, fmt.Errorf("array: DecodeArrayParts: buffer underflow")
		}
		raw := remaining[0]
		remaining = remaining[1:]
		if uint32(len(raw)) != l {
			return nil, remaining, fmt.Errorf("array: DecodeArrayParts: buffer length mismatch: got %d want %d", len(raw), l)
		}
		ownBuffers[i] = buffer.FromSlice(raw)
	}

	id := EncodingID{Name: name, Code: code}
	a, err := New(id, dt, length, metadata, children.arrays, ownBuffers)
	if err != nil {
		return nil, remaining, err
	}
	return a, remaining, nil
}

type childResult struct {
	arrays    []*Array
	remaining [][]byte
}

func readChildrenAP(t *flatbuffers.Table, dt *dtype.DType, buffers [][]byte) (childResult, error) {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((apFieldChildren + 2) * 2)))
	if o == 0 {
		return childResult{remaining: buffers}, nil
	}
	vecPos := t.Vector(o)
	n := t.VectorLen(o)

	children := make([]*Array, n)
	remaining := buffers
	for i := 0; i < n; i++ {
		slotPos := vecPos + flatbuffers.UOffsetT(i)*4
		childTable := &flatbuffers.Table{Bytes: t.Bytes, Pos: t.Indirect(slotPos)}
		// Child DType is not separately carried in this simplified IPC
		// encoding: children of Struct/List/Chunked arrays derive their
		// DType from the parent's DType tree (Struct fields, List elem),
		// which the caller is expected to resolve; for the common case of
		// a flat/primitive root this is simply dt's own child structure.
		childDType := childDTypeFor(dt, i)
		child, rest, err := readArrayParts(childTable, childDType, remaining)
		if err != nil {
			return childResult{}, err
		}
		children[i] = child
		remaining = rest
	}
	return childResult{arrays: children, remaining: remaining}, nil
}

// childDTypeFor derives the i-th child's DType from its parent's DType,
// matching the physical nesting invariant every canonical encoding
// already follows (Struct children by field index, List child is the
// element type repeated, other encodings' children share the parent's
// DType as with Dict's codes/values split).
func childDTypeFor(dt *dtype.DType, i int) *dtype.DType {
	phys := dt.PhysicalDType()
	switch phys.Kind() {
	case dtype.KindStruct:
		if i < len(phys.Fields()) {
			return phys.Fields()[i].Type
		}
	case dtype.KindList:
		return phys.Elem()
	}
	return dt
}

func readStringFieldAP(t *flatbuffers.Table, field int) string {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return ""
	}
	return string(t.ByteVector(o + t.Pos))
}

func readByteVectorFieldAP(t *flatbuffers.Table, field int) []byte {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return nil
	}
	return t.ByteVector(o + t.Pos)
}

func readUint16FieldAP(t *flatbuffers.Table, field int) uint16 {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return 0
	}
	return t.GetUint16(t.Pos + o)
}

func readUint32FieldAP(t *flatbuffers.Table, field int) uint32 {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return 0
	}
	return t.GetUint32(t.Pos + o)
}

func readUint32VectorAP(t *flatbuffers.Table, field int) []uint32 {
	o := flatbuffers.UOffsetT(t.Offset(flatbuffers.VOffsetT((field + 2) * 2)))
	if o == 0 {
		return nil
	}
	vecPos := t.Vector(o)
	n := t.VectorLen(o)
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = t.GetUint32(vecPos + flatbuffers.UOffsetT(i)*4)
	}
	return out
}
