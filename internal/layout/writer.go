package layout

import (
	"fmt"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/segment"
)

// SegmentAllocator assigns monotonically increasing segment ids while
// writing a Layout tree, collecting their bytes into a map shaped the
// way segment.NewMemorySource (tests) or a real file writer (production)
// both expect.
type SegmentAllocator struct {
	next segment.ID
	data map[segment.ID][]byte
}

// NewSegmentAllocator returns an empty allocator.
func NewSegmentAllocator() *SegmentAllocator {
	return &SegmentAllocator{data: make(map[segment.ID][]byte)}
}

// Put records b under a freshly allocated id.
func (a *SegmentAllocator) Put(b []byte) segment.ID {
	a.next++
	a.data[a.next] = b
	return a.next
}

// Data returns the accumulated segment bytes, keyed by id.
func (a *SegmentAllocator) Data() map[segment.ID][]byte {
	return a.data
}

// WriteFlatArray serializes a into alloc and returns the FlatLayout
// referencing its segments, in the order array.EncodeArrayParts lays
// buffers out: the ArrayParts flatbuffer first, then each buffer in
// depth-first pre-order.
func WriteFlatArray(alloc *SegmentAllocator, a *array.Array) *Layout {
	partsBytes, buffers := array.EncodeArrayParts(a)
	ids := make([]segment.ID, 0, 1+len(buffers))
	ids = append(ids, alloc.Put(partsBytes))
	for _, b := range buffers {
		ids = append(ids, alloc.Put(b))
	}
	return NewFlatLayout(a.DType(), uint64(a.Length()), ids)
}

// WriteChunkedLayout builds a ChunkedLayout from row-wise Arrays sharing
// dt, writing each chunk as a FlatLayout via WriteFlatArray. When
// fieldDTypes/perFieldStats are non-nil, a statistics child is built via
// BuildStatisticsArray and written the same way.
func WriteChunkedLayout(alloc *SegmentAllocator, dt *dtype.DType, chunks []*array.Array, fieldDTypes map[string]*dtype.DType, perFieldStats map[string][]*array.Statistics) (*Layout, error) {
	chunkLayouts := make([]*Layout, len(chunks))
	for i, c := range chunks {
		if !c.DType().Equal(dt) {
			return nil, fmt.Errorf("layout: WriteChunkedLayout: %w: chunk %d dtype %s, expected %s", ErrInvalidLayout, i, c.DType(), dt)
		}
		chunkLayouts[i] = WriteFlatArray(alloc, c)
	}

	var statsLayout *Layout
	if perFieldStats != nil {
		statsArr, err := BuildStatisticsArray(fieldDTypes, perFieldStats)
		if err != nil {
			return nil, err
		}
		statsLayout = WriteFlatArray(alloc, statsArr)
	}

	return NewChunkedLayout(dt, chunkLayouts, statsLayout)
}
