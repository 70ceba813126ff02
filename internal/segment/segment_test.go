package segment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/vortexdb/vortex/internal/binary"
)

// recordingSource wraps a Source and counts calls and fetched ids, used
// to assert caching/batching behavior without a real backend.
type recordingSource struct {
	inner   Source
	calls   int32
	fetched int32
}

func (r *recordingSource) Fetch(ctx context.Context, ids []ID) (map[ID][]byte, error) {
	atomic.AddInt32(&r.calls, 1)
	atomic.AddInt32(&r.fetched, int32(len(ids)))
	return r.inner.Fetch(ctx, ids)
}

func (r *recordingSource) Close() error { return r.inner.Close() }

func TestMemorySourceFetch(t *testing.T) {
	src := NewMemorySource(map[ID][]byte{
		1: []byte("hello"),
		2: []byte("world"),
	})
	got, err := src.Fetch(context.Background(), []ID{1, 2})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got[1]) != "hello" || string(got[2]) != "world" {
		t.Fatalf("unexpected fetch result: %v", got)
	}
}

func TestMemorySourceNotFound(t *testing.T) {
	src := NewMemorySource(map[ID][]byte{1: []byte("x")})
	_, err := src.Fetch(context.Background(), []ID{99})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBoundedPassthroughWhenUnbounded(t *testing.T) {
	rec := &recordingSource{inner: NewMemorySource(map[ID][]byte{1: {1}, 2: {2}, 3: {3}})}
	b := NewBounded(rec, 0)
	got, err := b.Fetch(context.Background(), []ID{1, 2, 3})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got))
	}
	if atomic.LoadInt32(&rec.calls) != 1 {
		t.Fatalf("expected single batched call when unbounded, got %d calls", rec.calls)
	}
}

func TestBoundedFansOutPerID(t *testing.T) {
	rec := &recordingSource{inner: NewMemorySource(map[ID][]byte{1: {1}, 2: {2}, 3: {3}})}
	b := NewBounded(rec, 2)
	got, err := b.Fetch(context.Background(), []ID{1, 2, 3})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(got))
	}
	if atomic.LoadInt32(&rec.calls) != 3 {
		t.Fatalf("expected one call per id, got %d calls", rec.calls)
	}
}

func TestCachedServesRepeatFromCache(t *testing.T) {
	rec := &recordingSource{inner: NewMemorySource(map[ID][]byte{1: []byte("a"), 2: []byte("b")})}
	c, err := NewCached(rec, 1<<20)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	defer c.Close()

	if _, err := c.Fetch(context.Background(), []ID{1, 2}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	c.cache.Wait()

	if _, err := c.Fetch(context.Background(), []ID{1}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if got := atomic.LoadInt32(&rec.fetched); got != 2 {
		t.Fatalf("expected only the first miss-set (2 segments) to reach inner, got %d", got)
	}
}

func TestCachedConcurrentMissesSingleflight(t *testing.T) {
	rec := &recordingSource{inner: NewMemorySource(map[ID][]byte{1: []byte("a")})}
	c, err := NewCached(rec, 1<<20)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	defer c.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Fetch(context.Background(), []ID{1}); err != nil {
				t.Errorf("Fetch: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&rec.calls); got > 2 {
		t.Fatalf("expected singleflight to collapse concurrent misses, got %d inner calls", got)
	}
}

func TestEncodeDecodeSegmentRoundTrip(t *testing.T) {
	plain := []byte("a vortex segment's worth of bytes")
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	encoded, err := EncodeSegment(plain, CompressionZstd, EncryptionChaCha20Poly1305, key)
	if err != nil {
		t.Fatalf("EncodeSegment: %v", err)
	}
	decoded, err := DecodeSegment(encoded, CompressionZstd, EncryptionChaCha20Poly1305, key)
	if err != nil {
		t.Fatalf("DecodeSegment: %v", err)
	}
	if string(decoded) != string(plain) {
		t.Fatalf("round trip mismatch: got %q, want %q", decoded, plain)
	}
}

func TestEncodeDecodeSegmentNoCodec(t *testing.T) {
	plain := []byte("uncompressed, unencrypted")
	encoded, err := EncodeSegment(plain, CompressionNone, EncryptionNone, nil)
	if err != nil {
		t.Fatalf("EncodeSegment: %v", err)
	}
	if string(encoded) != string(plain) {
		t.Fatalf("expected passthrough, got %q", encoded)
	}
	decoded, err := DecodeSegment(encoded, CompressionNone, EncryptionNone, nil)
	if err != nil {
		t.Fatalf("DecodeSegment: %v", err)
	}
	if string(decoded) != string(plain) {
		t.Fatalf("round trip mismatch: got %q, want %q", decoded, plain)
	}
}

func TestVerifyChecksumDetectsCorruption(t *testing.T) {
	data := []byte("segment payload")
	sum := binary.Fletcher32(data)
	sumLE := []byte{byte(sum), byte(sum >> 8), byte(sum >> 16), byte(sum >> 24)}
	good := append(append([]byte{}, data...), sumLE...)

	back, err := VerifyChecksum(good)
	if err != nil {
		t.Fatalf("VerifyChecksum: %v", err)
	}
	if string(back) != string(data) {
		t.Fatalf("unexpected payload: %q", back)
	}

	corrupt := append([]byte{}, good...)
	corrupt[0] ^= 0xff
	if _, err := VerifyChecksum(corrupt); err == nil {
		t.Fatalf("expected checksum mismatch to be detected")
	}
}
