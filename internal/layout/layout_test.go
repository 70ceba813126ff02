package layout

import (
	"context"
	"testing"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/expr"
	"github.com/vortexdb/vortex/internal/segment"
)

func TestFlatLayoutRoundTrip(t *testing.T) {
	want, err := array.NewPrimitiveInts([]int64{10, 20, 30, 40}, dtype.I64, nil, false)
	if err != nil {
		t.Fatalf("NewPrimitiveInts: %v", err)
	}

	alloc := NewSegmentAllocator()
	l := WriteFlatArray(alloc, want)
	src := segment.NewMemorySource(alloc.Data())

	r, err := NewReader(l, src)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	if r.Length() != 4 {
		t.Fatalf("Length() = %d, want 4", r.Length())
	}

	var got *array.Array
	n := 0
	for chunk, err := range r.Evaluate(context.Background(), RowRange{0, 4}, nil) {
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		got = chunk.Array
		n++
	}
	if n != 1 {
		t.Fatalf("expected 1 chunk, got %d", n)
	}
	for i := 0; i < 4; i++ {
		s, err := array.ScalarAt(got, i)
		if err != nil {
			t.Fatalf("ScalarAt(%d): %v", i, err)
		}
		want := int64(10 * (i + 1))
		if s.Int() != want {
			t.Fatalf("row %d = %d, want %d", i, s.Int(), want)
		}
	}
}

// recordingSource wraps a segment.Source and records every id fetched,
// mirroring internal/segment's own test double.
type recordingSource struct {
	inner   segment.Source
	fetched map[segment.ID]bool
}

func newRecordingSource(data map[segment.ID][]byte) *recordingSource {
	return &recordingSource{inner: segment.NewMemorySource(data), fetched: make(map[segment.ID]bool)}
}

func (r *recordingSource) Fetch(ctx context.Context, ids []segment.ID) (map[segment.ID][]byte, error) {
	for _, id := range ids {
		r.fetched[id] = true
	}
	return r.inner.Fetch(ctx, ids)
}

func (r *recordingSource) Close() error { return r.inner.Close() }

func TestStructLayoutProjectionOnlyFetchesSelectedFields(t *testing.T) {
	colA, err := array.NewPrimitiveInts([]int64{1, 2, 3}, dtype.I64, nil, false)
	if err != nil {
		t.Fatalf("colA: %v", err)
	}
	colB, err := array.NewPrimitiveInts([]int64{4, 5, 6}, dtype.I64, nil, false)
	if err != nil {
		t.Fatalf("colB: %v", err)
	}
	colC, err := array.NewPrimitiveInts([]int64{7, 8, 9}, dtype.I64, nil, false)
	if err != nil {
		t.Fatalf("colC: %v", err)
	}

	alloc := NewSegmentAllocator()
	aLayout := WriteFlatArray(alloc, colA)
	bLayout := WriteFlatArray(alloc, colB)
	cLayout := WriteFlatArray(alloc, colC)

	fields := []dtype.Field{
		{Name: "a", Type: dtype.Primitive(dtype.I64, false)},
		{Name: "b", Type: dtype.Primitive(dtype.I64, false)},
		{Name: "c", Type: dtype.Primitive(dtype.I64, false)},
	}
	structDType := dtype.Struct(false, fields...)
	sl, err := NewStructLayout(structDType, []*Layout{aLayout, bLayout, cLayout})
	if err != nil {
		t.Fatalf("NewStructLayout: %v", err)
	}

	rec := newRecordingSource(alloc.Data())
	r, err := NewReader(sl, rec)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	proj, err := r.Project([][]string{{"b"}})
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	for chunk, err := range proj.Evaluate(context.Background(), RowRange{0, 3}, nil) {
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		if chunk.Array.NumChildren() != 1 {
			t.Fatalf("expected 1 projected field, got %d", chunk.Array.NumChildren())
		}
	}

	// Only b's segment (plus its single ArrayParts blob) should have been
	// fetched; a and c's segments must never be touched.
	bSegments := bLayout.Segments()
	for _, id := range bSegments {
		if !rec.fetched[id] {
			t.Fatalf("expected b segment %d to be fetched", id)
		}
	}
	for _, id := range aLayout.Segments() {
		if rec.fetched[id] {
			t.Fatalf("unexpected fetch of a's segment %d", id)
		}
	}
	for _, id := range cLayout.Segments() {
		if rec.fetched[id] {
			t.Fatalf("unexpected fetch of c's segment %d", id)
		}
	}
}

func TestChunkedLayoutStatisticsPruning(t *testing.T) {
	xDType := dtype.Primitive(dtype.I64, false)

	makeChunk := func(lo int64) *array.Array {
		vals := make([]int64, 10)
		for i := range vals {
			vals[i] = lo + int64(i)
		}
		a, err := array.NewPrimitiveInts(vals, dtype.I64, nil, false)
		if err != nil {
			t.Fatalf("NewPrimitiveInts: %v", err)
		}
		return a
	}

	chunks := []*array.Array{
		makeChunk(0),  // [0,9]
		makeChunk(10), // [10,19]
		makeChunk(20), // [20,29]
		makeChunk(30), // [30,39]
	}

	ranges := [][2]int64{{0, 9}, {10, 19}, {20, 29}, {30, 39}}
	stats := make([]*array.Statistics, len(chunks))
	for i, rng := range ranges {
		st := array.NewStatistics()
		st.Set(array.StatMin, dtype.NewInt(rng[0], dtype.I64, false))
		st.Set(array.StatMax, dtype.NewInt(rng[1], dtype.I64, false))
		stats[i] = st
	}

	alloc := NewSegmentAllocator()
	cl, err := WriteChunkedLayout(alloc, xDType, chunks,
		map[string]*dtype.DType{"x": xDType},
		map[string][]*array.Statistics{"x": stats})
	if err != nil {
		t.Fatalf("WriteChunkedLayout: %v", err)
	}

	rec := newRecordingSource(alloc.Data())
	r, err := NewReader(cl, rec)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	filter := expr.And(
		expr.Gt(expr.GetItem(expr.Identity(), "x"), expr.Literal(dtype.NewInt(25, dtype.I64, false))),
		expr.Lt(expr.GetItem(expr.Identity(), "x"), expr.Literal(dtype.NewInt(35, dtype.I64, false))),
	)

	var rows []int64
	for chunk, err := range r.Evaluate(context.Background(), RowRange{0, 40}, filter) {
		if err != nil {
			t.Fatalf("Evaluate: %v", err)
		}
		filtered, err := expr.Evaluate(filter, chunk.Array)
		if err != nil {
			t.Fatalf("expr.Evaluate: %v", err)
		}
		for i := 0; i < int(chunk.Array.Length()); i++ {
			valid, err := filtered.IsValid(i)
			if err != nil {
				t.Fatalf("IsValid: %v", err)
			}
			if !valid {
				continue
			}
			keep, err := array.ScalarAt(filtered, i)
			if err != nil {
				t.Fatalf("ScalarAt: %v", err)
			}
			if !keep.Bool() {
				continue
			}
			s, err := array.ScalarAt(chunk.Array, i)
			if err != nil {
				t.Fatalf("ScalarAt: %v", err)
			}
			rows = append(rows, s.Int())
		}
	}

	// Chunks 0,1 must never have had their data segments fetched: only
	// chunks 2,3 overlap x in (25,35).
	chunk0Segs := cl.rowChunks()[0].Segments()
	for _, id := range chunk0Segs {
		if rec.fetched[id] {
			t.Fatalf("chunk 0 should have been pruned, but segment %d was fetched", id)
		}
	}
	chunk1Segs := cl.rowChunks()[1].Segments()
	for _, id := range chunk1Segs {
		if rec.fetched[id] {
			t.Fatalf("chunk 1 should have been pruned, but segment %d was fetched", id)
		}
	}

	if len(rows) != 9 {
		t.Fatalf("expected 9 rows (26..34), got %d: %v", len(rows), rows)
	}
	for i, v := range rows {
		want := int64(26 + i)
		if v != want {
			t.Fatalf("row %d = %d, want %d", i, v, want)
		}
	}
}
