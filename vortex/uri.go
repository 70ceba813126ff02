package vortex

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/vortexdb/vortex/internal/fileformat"
	"github.com/vortexdb/vortex/internal/segment"
)

// maxTailBytes bounds a remote bootstrap read: the postscript is 8 bytes
// and PostscriptLength is a uint16, so the footer area it points at can
// never exceed 0xFFFF bytes (spec.md §4.8). One range GET covering that
// much of the object's tail is always enough to read the footer without
// a second round trip.
const maxTailBytes = 8 + 0xFFFF

// rangeReader is the subset of a remote segment.Source this package
// needs before any SegmentMap exists: object size and an arbitrary byte
// range, independent of Locator-based segment addressing.
type rangeReader interface {
	Size(ctx context.Context) (int64, error)
	ReadRange(ctx context.Context, offset, length int64) ([]byte, error)
}

// tailReaderAt adapts a single fetched tail range into an io.ReaderAt
// over the whole (hypothetical) file, so fileformat.ReadFooter can be
// reused unchanged instead of re-deriving its postscript/footer parsing.
type tailReaderAt struct {
	start int64
	data  []byte
}

func (t *tailReaderAt) ReadAt(p []byte, off int64) (int, error) {
	rel := off - t.start
	if rel < 0 || rel > int64(len(t.data)) {
		return 0, fmt.Errorf("vortex: tailReaderAt: offset %d outside fetched tail", off)
	}
	n := copy(p, t.data[rel:])
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

func readRemoteFooter(ctx context.Context, r rangeReader) (*fileformat.Footer, int64, error) {
	size, err := r.Size(ctx)
	if err != nil {
		return nil, 0, err
	}
	tailLen := int64(maxTailBytes)
	if tailLen > size {
		tailLen = size
	}
	start := size - tailLen
	data, err := r.ReadRange(ctx, start, tailLen)
	if err != nil {
		return nil, 0, err
	}
	footer, err := fileformat.ReadFooter(&tailReaderAt{start: start, data: data}, size)
	if err != nil {
		return nil, 0, err
	}
	return footer, size, nil
}

// openBackend parses uri's scheme (spec.md §6: file://, s3:// / s3a://,
// gs://, az://) and returns the footer plus a segment.Source bound to a
// Locator resolving ids from that footer's SegmentMap. http(s):// is
// named in spec.md as a pluggable scheme but has no built-in backend in
// this module; callers needing it register one via a custom
// segment.Source of their own construction and open the file manually.
func openBackend(ctx context.Context, uri string, p *properties) (*fileformat.Footer, segment.Source, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, nil, newError(InvalidFile, err, "parsing uri %q", uri)
	}

	switch u.Scheme {
	case "", "file":
		return openFileBackend(u, p)
	case "s3", "s3a":
		return openS3Backend(ctx, u, p)
	case "gs":
		return openGCSBackend(ctx, u, p)
	case "az":
		return openAzureBackend(ctx, u, p)
	default:
		return nil, nil, newError(InvalidFile, nil, "unsupported uri scheme %q", u.Scheme)
	}
}

func openFileBackend(u *url.URL, p *properties) (*fileformat.Footer, segment.Source, error) {
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	probe, err := segment.OpenFileSource(path, nil)
	if err != nil {
		return nil, nil, newError(IoError, err, "opening %q", path)
	}
	size, err := probe.Size()
	if err != nil {
		probe.Close()
		return nil, nil, newError(IoError, err, "statting %q", path)
	}
	footer, err := fileformat.ReadFooter(probe, size)
	if err != nil {
		probe.Close()
		return nil, nil, newError(InvalidFile, err, "reading footer of %q", path)
	}
	src, err := segment.OpenFileSource(path, footer.FileLayout.SegmentMap)
	probe.Close()
	if err != nil {
		return nil, nil, newError(IoError, err, "reopening %q", path)
	}
	return footer, src, nil
}

func openS3Backend(ctx context.Context, u *url.URL, p *properties) (*fileformat.Footer, segment.Source, error) {
	cfg := p.s3
	cfg.Bucket = u.Host
	cfg.Key = trimLeadingSlash(u.Path)
	probe, err := segment.NewS3Source(ctx, cfg, nil)
	if err != nil {
		return nil, nil, newError(IoError, err, "connecting to s3://%s/%s", cfg.Bucket, cfg.Key)
	}
	footer, _, err := readRemoteFooter(ctx, probe)
	probe.Close()
	if err != nil {
		return nil, nil, newError(InvalidFile, err, "reading footer of s3://%s/%s", cfg.Bucket, cfg.Key)
	}
	src, err := segment.NewS3Source(ctx, cfg, footer.FileLayout.SegmentMap)
	if err != nil {
		return nil, nil, newError(IoError, err, "connecting to s3://%s/%s", cfg.Bucket, cfg.Key)
	}
	return footer, src, nil
}

func openGCSBackend(ctx context.Context, u *url.URL, p *properties) (*fileformat.Footer, segment.Source, error) {
	cfg := p.gcs
	cfg.Bucket = u.Host
	cfg.Object = trimLeadingSlash(u.Path)
	probe, err := segment.NewGCSSource(ctx, cfg, nil)
	if err != nil {
		return nil, nil, newError(IoError, err, "connecting to gs://%s/%s", cfg.Bucket, cfg.Object)
	}
	footer, _, err := readRemoteFooter(ctx, probe)
	probe.Close()
	if err != nil {
		return nil, nil, newError(InvalidFile, err, "reading footer of gs://%s/%s", cfg.Bucket, cfg.Object)
	}
	src, err := segment.NewGCSSource(ctx, cfg, footer.FileLayout.SegmentMap)
	if err != nil {
		return nil, nil, newError(IoError, err, "connecting to gs://%s/%s", cfg.Bucket, cfg.Object)
	}
	return footer, src, nil
}

func openAzureBackend(ctx context.Context, u *url.URL, p *properties) (*fileformat.Footer, segment.Source, error) {
	cfg := p.azure
	cfg.Container = u.Host
	cfg.Blob = trimLeadingSlash(u.Path)
	probe, err := segment.NewAzureSource(ctx, cfg, nil)
	if err != nil {
		return nil, nil, newError(IoError, err, "connecting to az://%s/%s", cfg.Container, cfg.Blob)
	}
	footer, _, err := readRemoteFooter(ctx, probe)
	probe.Close()
	if err != nil {
		return nil, nil, newError(InvalidFile, err, "reading footer of az://%s/%s", cfg.Container, cfg.Blob)
	}
	src, err := segment.NewAzureSource(ctx, cfg, footer.FileLayout.SegmentMap)
	if err != nil {
		return nil, nil, newError(IoError, err, "connecting to az://%s/%s", cfg.Container, cfg.Blob)
	}
	return footer, src, nil
}

func trimLeadingSlash(s string) string {
	if len(s) > 0 && s[0] == '/' {
		return s[1:]
	}
	return s
}
