package segment

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Bounded wraps a Source so that no more than maxInFlight segment fetches
// are outstanding at once, matching spec.md §5's "SegmentSource is
// parallel: it may issue concurrent outstanding requests up to a bounded
// limit." Grounded on the pack's bucket_chunk_reader.go, which fans a
// batch of loads out across an errgroup and collects results under a
// mutex rather than over a channel.
type Bounded struct {
	inner        Source
	sem          *semaphore.Weighted
	maxInFlight  int64
}

// NewBounded wraps inner with a cap of maxInFlight concurrent per-id
// fetches. maxInFlight <= 0 means unbounded (inner.Fetch is called once
// with the full id list).
func NewBounded(inner Source, maxInFlight int) *Bounded {
	if maxInFlight <= 0 {
		return &Bounded{inner: inner}
	}
	return &Bounded{inner: inner, sem: semaphore.NewWeighted(int64(maxInFlight)), maxInFlight: int64(maxInFlight)}
}

func (b *Bounded) Fetch(ctx context.Context, ids []ID) (map[ID][]byte, error) {
	if b.sem == nil || len(ids) <= 1 {
		return b.inner.Fetch(ctx, ids)
	}

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	out := make(map[ID][]byte, len(ids))

	for _, id := range ids {
		id := id
		if err := b.sem.Acquire(gctx, 1); err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer b.sem.Release(1)
			res, err := b.inner.Fetch(gctx, []ID{id})
			if err != nil {
				return err
			}
			mu.Lock()
			for k, v := range res {
				out[k] = v
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bounded) Close() error { return b.inner.Close() }
