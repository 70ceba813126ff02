package vortex

import (
	"context"

	"go.uber.org/zap"

	"github.com/vortexdb/vortex/internal/dtype"
	"github.com/vortexdb/vortex/internal/fileformat"
	"github.com/vortexdb/vortex/internal/layout"
	"github.com/vortexdb/vortex/internal/segment"
)

// File is an opened Vortex file: its dtype, its root LayoutReader, and
// the Source chain feeding it (spec.md §6's open/scan lifecycle).
type File struct {
	dt     *dtype.DType
	root   layout.Reader
	src    segment.Source
	logger *zap.Logger
}

// Open resolves uri's scheme (spec.md §6: file://, s3://, s3a://, gs://,
// az://), reads its footer, and builds the Source chain (bounded
// concurrency, cache, codec decoding, metrics) used by every subsequent
// Scan. Grounded on the teacher's hdf5.Open: open → parse trailing
// metadata → build the root reader, generalized from a single local file
// handle to any of the backend schemes in internal/segment.
func Open(ctx context.Context, uri string, opts ...Option) (*File, error) {
	p := defaultProperties()
	for _, opt := range opts {
		opt(p)
	}

	footer, backend, err := openBackend(ctx, uri, p)
	if err != nil {
		return nil, err
	}

	src, err := buildSourceChain(backend, footer.FileLayout.SegmentMap, p)
	if err != nil {
		backend.Close()
		return nil, err
	}

	rootLayout, err := layout.UnmarshalLayout(footer.FileLayout.RootLayout, footer.DType)
	if err != nil {
		src.Close()
		return nil, newError(InvalidLayout, err, "decoding root layout of %q", uri)
	}

	root, err := p.registry.NewLayoutReader(rootLayout, src)
	if err != nil {
		src.Close()
		return nil, newError(UnknownLayout, err, "building root reader for %q", uri)
	}

	return &File{dt: footer.DType, root: root, src: src, logger: p.logger}, nil
}

// buildSourceChain wraps backend in the order a fetch actually happens:
// bounded concurrency limits outstanding requests, the cache sits above
// that (hits never reach the network), codec decoding turns raw bytes
// into the plain segment payloads every LayoutReader expects, and
// Instrumented is outermost so its histograms measure what a caller of
// Fetch actually experiences.
func buildSourceChain(backend segment.Source, smap *fileformat.SegmentMap, p *properties) (segment.Source, error) {
	var src segment.Source = segment.NewBounded(backend, p.maxInFlight)
	if p.cacheBytes > 0 {
		cached, err := segment.NewCached(src, p.cacheBytes)
		if err != nil {
			return nil, newError(IoError, err, "building segment cache")
		}
		src = cached
	}
	src = newCodecSource(src, smap, p.codecKey)
	if p.metrics != nil {
		src = segment.NewInstrumented(src, p.metrics, "vortex")
	}
	return src, nil
}

func (f *File) DType() *dtype.DType { return f.dt }

func (f *File) Close() error { return f.src.Close() }
