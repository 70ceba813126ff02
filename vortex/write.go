package vortex

import (
	"os"
	"sort"

	"github.com/vortexdb/vortex/internal/alloc"
	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/fileformat"
	"github.com/vortexdb/vortex/internal/layout"
	"github.com/vortexdb/vortex/internal/segment"
)

// WriteFile materializes dt/root/segments as a single local Vortex file at
// path, in the on-disk shape spec.md §4.8 fixes: the 4-byte magic, a
// segment area, then the footer, then the 8-byte postscript.
//
// Segment byte offsets within the segment area are assigned by an
// internal/alloc.Allocator, the same append-only/aligned space-management
// the pack uses when it must place file-format structures at concrete file
// offsets — here placing segments instead of object headers. alignment
// rounds each segment's starting offset up to a multiple of itself (0 or 1
// disables alignment, packing segments back to back).
func WriteFile(path string, dt *dtype.DType, root *layout.Layout, segments map[segment.ID][]byte, alignment uint64) error {
	if alignment > 0xFFFF {
		return newError(UnsupportedOperation, nil, "alignment %d exceeds uint16 range", alignment)
	}

	ids := make([]segment.ID, 0, len(segments))
	for id := range segments {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	a := alloc.New(uint64(len(fileformat.Magic)))
	entries := make([]fileformat.SegmentEntry, 0, len(ids))
	buf := append([]byte(nil), fileformat.Magic[:]...)
	for _, id := range ids {
		data := segments[id]
		addr := a.AllocAligned(uint64(len(data)), alignment)
		if gap := int64(addr) - int64(len(buf)); gap > 0 {
			buf = append(buf, make([]byte, gap)...)
		}
		entries = append(entries, fileformat.SegmentEntry{
			ID:        id,
			Offset:    int64(addr),
			Length:    int64(len(data)),
			Alignment: uint16(alignment),
		})
		buf = append(buf, data...)
	}
	if err := a.Validate(); err != nil {
		return newError(InvalidLayout, err, "validating segment allocation for %q", path)
	}

	fl := &fileformat.FileLayout{
		RootLayout: layout.MarshalLayout(root),
		SegmentMap: fileformat.NewSegmentMap(entries),
		Alignment:  uint32(alignment),
	}
	footerBytes, err := fileformat.BuildFooterBytes(dt, fl)
	if err != nil {
		return newError(InvalidLayout, err, "building footer for %q", path)
	}
	buf = append(buf, footerBytes...)

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return newError(IoError, err, "writing %q", path)
	}
	return nil
}
