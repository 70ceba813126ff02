package layout

import (
	"context"
	"fmt"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/expr"
	"github.com/vortexdb/vortex/internal/segment"
)

// flatReader is the FlatLayout LayoutReader, grounded on the teacher's
// Contiguous layout handler: a single block read, generalized from a raw
// file offset to one or more segment ids resolved through a
// segment.Source.
type flatReader struct {
	l   *Layout
	src segment.Source
}

func newFlatReader(l *Layout, src segment.Source) *flatReader {
	return &flatReader{l: l, src: src}
}

func (r *flatReader) DType() *dtype.DType { return r.l.dt }
func (r *flatReader) Length() uint64      { return r.l.length }

// Project is a no-op at a FlatLayout: it has no named children to prune
// segments from. Sub-field projection of its materialized Array (e.g.
// selecting one Struct field out of a flat array) is the caller's
// concern once the Array is in hand.
func (r *flatReader) Project(paths [][]string) (Reader, error) {
	return r, nil
}

func (r *flatReader) Evaluate(ctx context.Context, rows RowRange, filter *expr.Expr) Seq {
	return func(yield func(Chunk, error) bool) {
		clipped, ok := rows.Intersect(RowRange{0, r.l.length})
		if !ok {
			return
		}
		a, err := r.fetch(ctx)
		if err != nil {
			yield(Chunk{}, err)
			return
		}
		sliced, err := a.Slice(int(clipped.Lo), int(clipped.Hi))
		if err != nil {
			yield(Chunk{}, err)
			return
		}
		yield(Chunk{Range: clipped, Array: sliced}, nil)
	}
}

func (r *flatReader) fetch(ctx context.Context) (*array.Array, error) {
	if len(r.l.segments) == 0 {
		return nil, fmt.Errorf("layout: flatReader: %w: no segments", ErrInvalidLayout)
	}
	fetched, err := r.src.Fetch(ctx, r.l.segments)
	if err != nil {
		return nil, err
	}
	partsBytes, ok := fetched[r.l.segments[0]]
	if !ok {
		return nil, fmt.Errorf("layout: flatReader: %w: missing parts segment %d", segment.ErrNotFound, r.l.segments[0])
	}
	buffers := make([][]byte, 0, len(r.l.segments)-1)
	for _, id := range r.l.segments[1:] {
		b, ok := fetched[id]
		if !ok {
			return nil, fmt.Errorf("layout: flatReader: %w: missing buffer segment %d", segment.ErrNotFound, id)
		}
		buffers = append(buffers, b)
	}
	return array.DecodeArrayParts(partsBytes, r.l.dt, buffers)
}
