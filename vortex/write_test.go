package vortex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vortexdb/vortex/internal/array"
	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/fileformat"
	"github.com/vortexdb/vortex/internal/layout"
)

// TestWriteFileAlignment checks that WriteFile pads each segment's offset
// up to a multiple of alignment and records that alignment on every entry.
func TestWriteFileAlignment(t *testing.T) {
	arr, err := array.NewPrimitiveInts([]int64{1, 2, 3}, dtype.I64, nil, false)
	if err != nil {
		t.Fatalf("array.NewPrimitiveInts: %v", err)
	}

	alloc := layout.NewSegmentAllocator()
	root := layout.WriteFlatArray(alloc, arr)

	path := filepath.Join(t.TempDir(), "aligned.vtx")
	const alignment = 16
	if err := WriteFile(path, arr.DType(), root, alloc.Data(), alignment); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	buf, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	footer, err := fileformat.ReadFooter(readerAt(buf), int64(len(buf)))
	if err != nil {
		t.Fatalf("ReadFooter: %v", err)
	}

	for _, e := range footer.FileLayout.SegmentMap.Entries() {
		if e.Offset%alignment != 0 {
			t.Errorf("segment %d offset %d is not %d-aligned", e.ID, e.Offset, alignment)
		}
		if e.Alignment != alignment {
			t.Errorf("segment %d alignment: got %d, want %d", e.ID, e.Alignment, alignment)
		}
	}
}

type readerAt []byte

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	n := copy(p, r[off:])
	return n, nil
}
