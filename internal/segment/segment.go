// Package segment implements Vortex's SegmentSource: an async provider
// mapping opaque SegmentIds to bytes (spec.md glossary, §5, §6). Segments
// are fetched in bounded-concurrency batches and may carry a per-segment
// compression/encryption codec, grounded on the teacher's filter pipeline
// (internal/filter) generalized from a fixed HDF5 filter chain to an
// arbitrary per-segment codec pair.
package segment

import (
	"context"
	"errors"
	"fmt"
)

// ID identifies a contiguous byte range on the backing store, opaque to
// every caller except the SegmentMap that resolves it (spec.md §3).
type ID uint32

var (
	// ErrNotFound is returned when a requested ID has no known location.
	ErrNotFound = errors.New("segment: not found")
	// ErrTimeout reports that a per-request timeout elapsed.
	ErrTimeout = errors.New("segment: request timed out")
)

// Source is the async provider every backing-store implementation
// satisfies: file, memory, or an object-store scheme (s3, gs, az, http).
// Fetch may issue concurrent outstanding requests internally up to its
// own bounded limit; callers needing a shared cap across many Fetch
// calls should wrap a Source in Bounded.
type Source interface {
	// Fetch resolves every id in ids to its bytes, returning an error if
	// any one of them fails — spec.md §7: "per-chunk decode errors fail
	// the entire scan", which this mirrors one level down at fetch time.
	Fetch(ctx context.Context, ids []ID) (map[ID][]byte, error)

	// Close releases any resources (connections, file handles) held by
	// the source.
	Close() error
}

// Locator resolves a segment id to its (offset, length) on a backing
// store, independent of which Source implementation reads the bytes.
// It is the segment-package-local view of fileformat's SegmentMap.
type Locator interface {
	Locate(id ID) (offset int64, length int64, ok bool)
}

func fmtNotFound(id ID) error { return fmt.Errorf("%w: segment %d", ErrNotFound, id) }
