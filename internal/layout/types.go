package layout

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/segment"
)

// VTableID identifies a Layout's vtable, the layout-side counterpart to
// array.EncodingID (spec.md §4.6 treats both under one Registry).
type VTableID uint16

const (
	VTableFlat VTableID = iota + 1
	VTableStruct
	VTableChunked
)

func (id VTableID) String() string {
	switch id {
	case VTableFlat:
		return "vortex.layout.flat"
	case VTableStruct:
		return "vortex.layout.struct"
	case VTableChunked:
		return "vortex.layout.chunked"
	default:
		return fmt.Sprintf("vortex.layout.unknown(%d)", uint16(id))
	}
}

// Layout is the tuple named in spec.md §4.7: (vtable_id, dtype, length,
// metadata, children, segments). It is an inert description of where
// data lives, not a reader — [NewReader] binds one to a SegmentSource.
type Layout struct {
	vtable   VTableID
	dt       *dtype.DType
	length   uint64
	metadata []byte
	children []*Layout
	segments []segment.ID
}

func (l *Layout) VTable() VTableID      { return l.vtable }
func (l *Layout) DType() *dtype.DType   { return l.dt }
func (l *Layout) Length() uint64        { return l.length }
func (l *Layout) Metadata() []byte      { return l.metadata }
func (l *Layout) Children() []*Layout   { return l.children }
func (l *Layout) Segments() []segment.ID { return l.segments }

// NewFlatLayout builds a FlatLayout: a serialized Array spread across
// segments, in the encoding produced by array.EncodeArrayParts — segments[0]
// holds the ArrayParts flatbuffer, segments[1:] hold the buffers in the
// same pre-order EncodeArrayParts emitted them.
func NewFlatLayout(dt *dtype.DType, length uint64, segments []segment.ID) *Layout {
	return &Layout{vtable: VTableFlat, dt: dt, length: length, segments: segments}
}

// NewStructLayout builds a StructLayout. dt's physical kind must be
// Struct and children must align 1:1 with its fields, each sharing the
// same length (spec.md §4.7 tuple definition).
func NewStructLayout(dt *dtype.DType, children []*Layout) (*Layout, error) {
	phys := dt.PhysicalDType()
	if phys.Kind() != dtype.KindStruct {
		return nil, fmt.Errorf("layout: NewStructLayout: %w: dtype %s is not a struct", ErrInvalidLayout, dt)
	}
	fields := phys.Fields()
	if len(children) != len(fields) {
		return nil, fmt.Errorf("layout: NewStructLayout: %w: %d children, %d fields", ErrInvalidLayout, len(children), len(fields))
	}
	var length uint64
	if len(children) > 0 {
		length = children[0].length
	}
	for i, c := range children {
		if !c.dt.Equal(fields[i].Type) {
			return nil, fmt.Errorf("layout: NewStructLayout: %w: field %q dtype %s, child dtype %s", ErrInvalidLayout, fields[i].Name, fields[i].Type, c.dt)
		}
		if c.length != length {
			return nil, fmt.Errorf("layout: NewStructLayout: %w: field %q length %d, expected %d", ErrInvalidLayout, fields[i].Name, c.length, length)
		}
	}
	return &Layout{vtable: VTableStruct, dt: dt, length: length, children: children}, nil
}

// NewChunkedLayout builds a ChunkedLayout from N row chunks, each sharing
// dt, plus an optional (N+1)-th statistics child: a FlatLayout whose dtype
// is a Struct keyed by dotted field path, each value itself a Struct of
// optional min/max/null_count/true_count/is_sorted/is_constant columns
// (spec.md §4.7). The presence of a statistics child is recorded in
// metadata rather than inferred structurally, since a row chunk's own
// dtype could coincidentally look like a stats struct.
func NewChunkedLayout(dt *dtype.DType, chunks []*Layout, stats *Layout) (*Layout, error) {
	var length uint64
	for i, c := range chunks {
		if !c.dt.Equal(dt) {
			return nil, fmt.Errorf("layout: NewChunkedLayout: %w: chunk %d dtype %s, expected %s", ErrInvalidLayout, i, c.dt, dt)
		}
		length += c.length
	}
	children := make([]*Layout, len(chunks), len(chunks)+1)
	copy(children, chunks)
	meta := []byte{0}
	if stats != nil {
		if stats.vtable != VTableFlat {
			return nil, fmt.Errorf("layout: NewChunkedLayout: %w: statistics child must be a FlatLayout", ErrInvalidLayout)
		}
		if stats.dt.PhysicalDType().Kind() != dtype.KindStruct {
			return nil, fmt.Errorf("layout: NewChunkedLayout: %w: statistics child dtype must be a struct", ErrInvalidLayout)
		}
		if int(stats.length) != len(chunks) {
			return nil, fmt.Errorf("layout: NewChunkedLayout: %w: statistics child has %d rows, expected %d chunks", ErrInvalidLayout, stats.length, len(chunks))
		}
		children = append(children, stats)
		meta = []byte{1}
	}
	return &Layout{vtable: VTableChunked, dt: dt, length: length, metadata: meta, children: children}, nil
}

func (l *Layout) hasStatsChild() bool {
	return len(l.metadata) > 0 && l.metadata[0] == 1
}

func (l *Layout) rowChunks() []*Layout {
	if l.hasStatsChild() {
		return l.children[:len(l.children)-1]
	}
	return l.children
}

func (l *Layout) statsChild() *Layout {
	if l.hasStatsChild() {
		return l.children[len(l.children)-1]
	}
	return nil
}

// RowRange is a closed-open row interval [Lo, Hi) in a layout's own row
// space (spec.md §4.7).
type RowRange struct {
	Lo, Hi uint64
}

func (r RowRange) Len() uint64 {
	if r.Hi < r.Lo {
		return 0
	}
	return r.Hi - r.Lo
}

func (r RowRange) IsEmpty() bool { return r.Hi <= r.Lo }

// Intersect returns the overlap of r and other, or ok=false if they do
// not overlap.
func (r RowRange) Intersect(other RowRange) (RowRange, bool) {
	lo, hi := r.Lo, r.Hi
	if other.Lo > lo {
		lo = other.Lo
	}
	if other.Hi < hi {
		hi = other.Hi
	}
	if hi <= lo {
		return RowRange{}, false
	}
	return RowRange{lo, hi}, true
}
