package segment

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig names the bucket/object of a single Vortex file and optional
// explicit credentials, grounded on arx-os-arxos's GCSConfig.
type GCSConfig struct {
	Bucket          string
	Object          string
	CredentialsJSON string // optional; falls back to Application Default Credentials
	CredentialsFile string
}

// GCSSource serves segments as ranged reads of a single GCS object, keyed
// by a Locator resolving each ID to its (offset, length). Grounded on
// arx-os-arxos's GCSBackend.Get, generalized from storage.Reader (whole
// object) to storage.Object.NewRangeReader (byte range).
type GCSSource struct {
	client *storage.Client
	obj    *storage.ObjectHandle
	loc    Locator
}

// NewGCSSource constructs a GCSSource from cfg and loc.
func NewGCSSource(ctx context.Context, cfg GCSConfig, loc Locator) (*GCSSource, error) {
	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	} else if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("segment: NewGCSSource: creating client: %w", err)
	}

	return &GCSSource{
		client: client,
		obj:    client.Bucket(cfg.Bucket).Object(cfg.Object),
		loc:    loc,
	}, nil
}

func (s *GCSSource) Fetch(ctx context.Context, ids []ID) (map[ID][]byte, error) {
	out := make(map[ID][]byte, len(ids))
	for _, id := range ids {
		offset, length, ok := s.loc.Locate(id)
		if !ok {
			return nil, fmtNotFound(id)
		}
		r, err := s.obj.NewRangeReader(ctx, offset, length)
		if err != nil {
			if err == storage.ErrObjectNotExist {
				return nil, fmtNotFound(id)
			}
			return nil, fmt.Errorf("segment: GCSSource: fetching segment %d: %w", id, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("segment: GCSSource: reading segment %d: %w", id, err)
		}
		out[id] = data
	}
	return out, nil
}

func (s *GCSSource) Close() error { return s.client.Close() }

// ReadRange fetches an explicit byte range, independent of s's Locator —
// used to bootstrap reading the trailing postscript before any segment
// id is known.
func (s *GCSSource) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	r, err := s.obj.NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, fmt.Errorf("segment: GCSSource: ReadRange: %w", err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("segment: GCSSource: ReadRange: %w", err)
	}
	return data, nil
}

// Size returns the object's total byte length via Attrs, used to
// bootstrap reading the trailing postscript before a SegmentMap exists.
func (s *GCSSource) Size(ctx context.Context) (int64, error) {
	attrs, err := s.obj.Attrs(ctx)
	if err != nil {
		return 0, fmt.Errorf("segment: GCSSource: Attrs: %w", err)
	}
	return attrs.Size, nil
}
