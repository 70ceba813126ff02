package vortex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/expr"
	"github.com/vortexdb/vortex/internal/layout"
)

// writeTestFile assembles a minimal single-chunk Vortex file on disk: a
// FlatLayout over an int64 column, laid out as [segments][footer]
// [postscript], mirroring spec.md §4.8's on-disk shape. It exercises the
// same WriteFile path production callers use, with 8-byte segment
// alignment to also cover the alloc.Allocator padding it inserts.
func writeTestFile(t *testing.T, path string, values []int64) *dtype.DType {
	t.Helper()

	arr, err := array.NewPrimitiveInts(values, dtype.I64, nil, false)
	if err != nil {
		t.Fatalf("array.NewPrimitiveInts: %v", err)
	}
	dt := arr.DType()

	alloc := layout.NewSegmentAllocator()
	root := layout.WriteFlatArray(alloc, arr)

	if err := WriteFile(path, dt, root, alloc.Data(), 8); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return dt
}

func TestOpenAndScanLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vtx")
	dt := writeTestFile(t, path, []int64{10, 20, 30, 40})

	ctx := context.Background()
	f, err := Open(ctx, "file://"+path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	if !f.DType().Equal(dt) {
		t.Fatalf("DType mismatch: got %s, want %s", f.DType(), dt)
	}

	stream, err := f.Scan(ctx, ScanOptions{})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var got []int64
	for chunk, err := range stream {
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
		for i := 0; i < chunk.Array.Length(); i++ {
			s, err := array.ScalarAt(chunk.Array, i)
			if err != nil {
				t.Fatalf("ScalarAt: %v", err)
			}
			got = append(got, s.Int())
		}
	}

	want := []int64{10, 20, 30, 40}
	if len(got) != len(want) {
		t.Fatalf("row count: got %d, want %d", len(got), len(want))
	}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("row %d: got %d, want %d", i, got[i], v)
		}
	}
}

func TestScanWithRowIndices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vtx")
	writeTestFile(t, path, []int64{10, 20, 30, 40})

	ctx := context.Background()
	f, err := Open(ctx, "file://"+path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	stream, err := f.Scan(ctx, ScanOptions{RowIndices: []uint64{0, 2}})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var got []int64
	for chunk, err := range stream {
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
		for i := 0; i < chunk.Array.Length(); i++ {
			s, err := array.ScalarAt(chunk.Array, i)
			if err != nil {
				t.Fatalf("ScalarAt: %v", err)
			}
			got = append(got, s.Int())
		}
	}

	want := []int64{10, 30}
	if len(got) != len(want) {
		t.Fatalf("row count: got %d, want %d", len(got), len(want))
	}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("row %d: got %d, want %d", i, got[i], v)
		}
	}
}

func TestScanWithPredicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.vtx")
	writeTestFile(t, path, []int64{10, 20, 30, 40})

	ctx := context.Background()
	f, err := Open(ctx, "file://"+path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer f.Close()

	threshold := dtype.NewInt(25, dtype.I64, false)
	filter := expr.Gt(expr.Identity(), expr.Literal(threshold))

	stream, err := f.Scan(ctx, ScanOptions{Predicate: filter})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}

	var got []int64
	for chunk, err := range stream {
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
		for i := 0; i < chunk.Array.Length(); i++ {
			s, err := array.ScalarAt(chunk.Array, i)
			if err != nil {
				t.Fatalf("ScalarAt: %v", err)
			}
			got = append(got, s.Int())
		}
	}

	want := []int64{30, 40}
	if len(got) != len(want) {
		t.Fatalf("row count: got %d, want %d", len(got), len(want))
	}
	for i, v := range want {
		if got[i] != v {
			t.Fatalf("row %d: got %d, want %d", i, got[i], v)
		}
	}
}
