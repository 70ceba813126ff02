package segment

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/sync/singleflight"
)

// Cached wraps a Source with a shared, reference-counted,
// internally-synchronized cache (spec.md §5: "SegmentSource caches:
// shared by reference, internally synchronised"). A singleflight.Group
// gives at-most-once fetch semantics for a segment requested
// concurrently by multiple readers — "a one-shot completion primitive,
// not a mutex held during I/O" per spec.md §5's locking discipline.
type Cached struct {
	inner Source
	cache *ristretto.Cache
	group singleflight.Group
}

// NewCached wraps inner with an LRU-ish cache capped at roughly
// maxCostBytes of cached segment bytes.
func NewCached(inner Source, maxCostBytes int64) (*Cached, error) {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxCostBytes / 100 * 10, // ~10x entries estimate, ristretto's own sizing convention
		MaxCost:     maxCostBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("segment: NewCached: %w", err)
	}
	return &Cached{inner: inner, cache: c}, nil
}

func (c *Cached) Fetch(ctx context.Context, ids []ID) (map[ID][]byte, error) {
	out := make(map[ID][]byte, len(ids))
	var miss []ID
	for _, id := range ids {
		if v, ok := c.cache.Get(id); ok {
			out[id] = v.([]byte)
			continue
		}
		miss = append(miss, id)
	}
	if len(miss) == 0 {
		return out, nil
	}

	key := fetchKey(miss)
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.inner.Fetch(ctx, miss)
	})
	if err != nil {
		return nil, err
	}
	fetched := v.(map[ID][]byte)
	for id, b := range fetched {
		c.cache.Set(id, b, int64(len(b)))
		out[id] = b
	}
	return out, nil
}

func (c *Cached) Close() error {
	c.cache.Close()
	return c.inner.Close()
}

func fetchKey(ids []ID) string {
	s := make([]byte, 0, len(ids)*8)
	for _, id := range ids {
		s = append(s, byte(id), byte(id>>8), byte(id>>16), byte(id>>24))
	}
	return string(s)
}
