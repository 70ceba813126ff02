package vortex

import (
	"context"
	"fmt"

	"github.com/vortexdb/vortex/internal/fileformat"
	"github.com/vortexdb/vortex/internal/segment"
)

// codecSource decodes each fetched segment per its own entry in a
// SegmentMap (compression then decryption reversed, spec.md §5): every
// backend's Fetch returns the raw on-disk bytes, and nothing upstream of
// this wrapper otherwise calls segment.DecodeSegment.
type codecSource struct {
	inner segment.Source
	smap  *fileformat.SegmentMap
	key   []byte
}

func newCodecSource(inner segment.Source, smap *fileformat.SegmentMap, key []byte) *codecSource {
	return &codecSource{inner: inner, smap: smap, key: key}
}

func (c *codecSource) Fetch(ctx context.Context, ids []segment.ID) (map[segment.ID][]byte, error) {
	raw, err := c.inner.Fetch(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[segment.ID][]byte, len(raw))
	for id, data := range raw {
		entry, ok := c.smap.Entry(id)
		if !ok {
			return nil, fmt.Errorf("vortex: codecSource: no SegmentMap entry for segment %d", id)
		}
		decoded, err := segment.DecodeSegment(data, entry.Compression, entry.Encryption, c.key)
		if err != nil {
			return nil, fmt.Errorf("vortex: codecSource: decoding segment %d: %w", id, err)
		}
		out[id] = decoded
	}
	return out, nil
}

func (c *codecSource) Close() error { return c.inner.Close() }
