package segment

import (
	"context"
	"fmt"
	"os"
)

// FileSource serves segments as ranged reads from a local file, via a
// Locator that resolves each ID to its (offset, length). Grounded on the
// teacher's io.ReaderAt-based internal/binary.Reader cursor, generalized
// from a single superblock-relative cursor to concurrent random-access
// ranged reads keyed by segment id.
type FileSource struct {
	f   *os.File
	loc Locator
}

// OpenFileSource opens path for reading and pairs it with loc.
func OpenFileSource(path string, loc Locator) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("segment: OpenFileSource: %w", err)
	}
	return &FileSource{f: f, loc: loc}, nil
}

func (s *FileSource) Fetch(ctx context.Context, ids []ID) (map[ID][]byte, error) {
	out := make(map[ID][]byte, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		offset, length, ok := s.loc.Locate(id)
		if !ok {
			return nil, fmtNotFound(id)
		}
		buf := make([]byte, length)
		if _, err := s.f.ReadAt(buf, offset); err != nil {
			return nil, fmt.Errorf("segment: FileSource: reading segment %d: %w", id, err)
		}
		out[id] = buf
	}
	return out, nil
}

func (s *FileSource) Close() error { return s.f.Close() }

// Size returns the file's total byte length, used by callers bootstrapping
// from a trailing postscript before any SegmentMap is known.
func (s *FileSource) Size() (int64, error) {
	fi, err := s.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("segment: FileSource: stat: %w", err)
	}
	return fi.Size(), nil
}

// ReadAt exposes the underlying file directly, letting callers that need
// to bootstrap a footer read (before any Locator/SegmentMap exists) reuse
// fileformat.ReadFooter's io.ReaderAt-based decoding unchanged.
func (s *FileSource) ReadAt(p []byte, off int64) (int, error) {
	return s.f.ReadAt(p, off)
}
