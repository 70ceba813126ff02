package layout

import (
	"context"
	"fmt"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/expr"
	"github.com/vortexdb/vortex/internal/segment"
)

// structReader is the StructLayout LayoutReader: one child Reader per
// field, zipped back into a Struct Array at Evaluate time. Grounded on
// the teacher's hdf5/group.go child-collection iteration, generalized
// from named group members to named struct fields.
type structReader struct {
	dt       *dtype.DType
	length   uint64
	fields   []dtype.Field
	children []Reader
}

func newStructReader(l *Layout, src segment.Source) (*structReader, error) {
	phys := l.dt.PhysicalDType()
	if phys.Kind() != dtype.KindStruct {
		return nil, fmt.Errorf("layout: newStructReader: %w: dtype %s is not a struct", ErrInvalidLayout, l.dt)
	}
	fields := phys.Fields()
	if len(l.children) != len(fields) {
		return nil, fmt.Errorf("layout: newStructReader: %w: %d children, %d fields", ErrInvalidLayout, len(l.children), len(fields))
	}
	children := make([]Reader, len(l.children))
	for i, c := range l.children {
		cr, err := NewReader(c, src)
		if err != nil {
			return nil, err
		}
		children[i] = cr
	}
	return &structReader{dt: l.dt, length: l.length, fields: fields, children: children}, nil
}

func (r *structReader) DType() *dtype.DType { return r.dt }
func (r *structReader) Length() uint64      { return r.length }

// Project descends into named children per spec.md §4.7 ("For
// StructLayout, recursively descend into named children"). An empty
// paths list keeps every field.
func (r *structReader) Project(paths [][]string) (Reader, error) {
	if len(paths) == 0 {
		return r, nil
	}

	var order []string
	byField := make(map[string][][]string)
	seen := make(map[string]bool)
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		head, rest := p[0], p[1:]
		if !seen[head] {
			seen[head] = true
			order = append(order, head)
		}
		if len(rest) > 0 {
			byField[head] = append(byField[head], rest)
		}
	}

	selFields := make([]dtype.Field, 0, len(order))
	selChildren := make([]Reader, 0, len(order))
	for _, name := range order {
		idx := -1
		for i, f := range r.fields {
			if f.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("layout: structReader.Project: %w: no field %q", ErrInvalidLayout, name)
		}
		pr, err := r.children[idx].Project(byField[name])
		if err != nil {
			return nil, err
		}
		selFields = append(selFields, r.fields[idx])
		selChildren = append(selChildren, pr)
	}

	return &structReader{
		dt:       dtype.Struct(r.dt.Nullable(), selFields...),
		length:   r.length,
		fields:   selFields,
		children: selChildren,
	}, nil
}

func (r *structReader) Evaluate(ctx context.Context, rows RowRange, filter *expr.Expr) Seq {
	return func(yield func(Chunk, error) bool) {
		clipped, ok := rows.Intersect(RowRange{0, r.length})
		if !ok {
			return
		}

		childArrays := make([]*array.Array, len(r.children))
		for i, c := range r.children {
			combined, err := materializeRange(ctx, c, clipped, filter)
			if err != nil {
				yield(Chunk{}, err)
				return
			}
			childArrays[i] = combined
		}

		structArr, err := array.NewStruct(r.fields, childArrays, nil, r.dt.Nullable())
		if err != nil {
			yield(Chunk{}, err)
			return
		}
		yield(Chunk{Range: clipped, Array: structArr}, nil)
	}
}

// materializeRange fully realizes r's chunks over rows into one Array,
// concatenating via array.NewChunked when the reader yields more than
// one piece. Struct assembly needs every field's Array to cover exactly
// the same range, so the chunk-level laziness a ChunkedLayout child
// offers below this point is collapsed here rather than threaded
// through as a per-field, independently-paced sequence.
func materializeRange(ctx context.Context, r Reader, rows RowRange, filter *expr.Expr) (*array.Array, error) {
	var pieces []*array.Array
	for chunk, err := range r.Evaluate(ctx, rows, filter) {
		if err != nil {
			return nil, err
		}
		pieces = append(pieces, chunk.Array)
	}
	switch len(pieces) {
	case 0:
		return nil, fmt.Errorf("layout: materializeRange: %w: no data for range [%d,%d)", ErrOutOfRange, rows.Lo, rows.Hi)
	case 1:
		return pieces[0], nil
	default:
		return array.NewChunked(r.DType(), pieces)
	}
}
