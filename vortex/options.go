package vortex

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vortexdb/vortex/internal/registry"
	"github.com/vortexdb/vortex/internal/segment"
)

// Option configures Open, the functional-options shape the teacher uses
// for FileOption/DatasetOption (hdf5/options.go), generalized from a
// fixed offset/length-size pair to the credentials and tuning knobs
// spec.md §6 assigns to "properties": "Properties carry credentials and
// tuning flags for the SegmentSource (e.g. S3 region/keys, concurrency,
// timeout)".
type Option func(*properties)

type properties struct {
	s3        segment.S3Config
	gcs       segment.GCSConfig
	azure     segment.AzureConfig
	maxInFlight int
	cacheBytes  int64
	codecKey    []byte
	logger      *zap.Logger
	metrics     prometheus.Registerer
	registry    *registry.Registry
}

func defaultProperties() *properties {
	return &properties{
		maxInFlight: 32,
		cacheBytes:  64 << 20,
		logger:      zap.NewNop(),
		registry:    registry.Global,
	}
}

// WithS3 supplies the credentials/endpoint used for an s3:// or s3a://
// URI (spec.md §6's URI schemes).
func WithS3(cfg segment.S3Config) Option {
	return func(p *properties) { p.s3 = cfg }
}

// WithGCS supplies the credentials used for a gs:// URI.
func WithGCS(cfg segment.GCSConfig) Option {
	return func(p *properties) { p.gcs = cfg }
}

// WithAzure supplies the credentials used for an az:// URI.
func WithAzure(cfg segment.AzureConfig) Option {
	return func(p *properties) { p.azure = cfg }
}

// WithMaxInFlight bounds concurrent outstanding segment fetches
// (internal/segment.Bounded).
func WithMaxInFlight(n int) Option {
	return func(p *properties) { p.maxInFlight = n }
}

// WithCacheBytes sets the segment cache's cost budget
// (internal/segment.Cached). Zero disables caching.
func WithCacheBytes(n int64) Option {
	return func(p *properties) { p.cacheBytes = n }
}

// WithEncryptionKey supplies the key segments are encrypted/decrypted
// with, when the file's default encryption scheme is not
// segment.EncryptionNone.
func WithEncryptionKey(key []byte) Option {
	return func(p *properties) { p.codecKey = key }
}

// WithLogger attaches a zap logger; Scan logs at Debug when a scan starts
// and at Warn when predicate evaluation fails. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *properties) { p.logger = l }
}

// WithMetrics registers SegmentSource fetch metrics against reg
// (internal/segment.Instrumented). Defaults to not instrumenting.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(p *properties) { p.metrics = reg }
}

// WithRegistry overrides the process-wide encoding/layout registry,
// letting a caller open a file whose extension encodings were registered
// on a private *registry.Registry rather than registry.Global.
func WithRegistry(r *registry.Registry) Option {
	return func(p *properties) { p.registry = r }
}
