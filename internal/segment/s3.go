package segment

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config names the bucket/key of a single Vortex file object and its
// access credentials, grounded on arx-os-arxos's internal/storage.S3Config.
type S3Config struct {
	Region          string
	Bucket          string
	Key             string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // for S3-compatible services (MinIO, R2, ...)
}

// S3Source serves segments as ranged GETs against a single S3 object,
// keyed by a Locator resolving each ID to its (offset, length) within
// that object — the s3:// URI scheme named in spec.md §6. Grounded on
// arx-os-arxos's S3Backend.Get, generalized from whole-object reads to
// byte-range reads via the Range header.
type S3Source struct {
	client *s3.Client
	bucket string
	key    string
	loc    Locator
}

// NewS3Source constructs an S3Source from cfg and loc.
func NewS3Source(ctx context.Context, cfg S3Config, loc Locator) (*S3Source, error) {
	var awsCfg aws.Config
	var err error
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
			),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("segment: NewS3Source: loading AWS config: %w", err)
	}

	var opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}
	return &S3Source{
		client: s3.NewFromConfig(awsCfg, opts...),
		bucket: cfg.Bucket,
		key:    cfg.Key,
		loc:    loc,
	}, nil
}

func (s *S3Source) Fetch(ctx context.Context, ids []ID) (map[ID][]byte, error) {
	out := make(map[ID][]byte, len(ids))
	for _, id := range ids {
		offset, length, ok := s.loc.Locate(id)
		if !ok {
			return nil, fmtNotFound(id)
		}
		rng := fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
		result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(s.key),
			Range:  aws.String(rng),
		})
		if err != nil {
			return nil, fmt.Errorf("segment: S3Source: fetching segment %d: %w", id, err)
		}
		data, err := io.ReadAll(result.Body)
		result.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("segment: S3Source: reading segment %d: %w", id, err)
		}
		out[id] = data
	}
	return out, nil
}

func (s *S3Source) Close() error { return nil }

// ReadRange fetches an explicit byte range, independent of s's Locator —
// used to bootstrap reading the trailing postscript before any segment
// id is known.
func (s *S3Source) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	rng := fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
		Range:  aws.String(rng),
	})
	if err != nil {
		return nil, fmt.Errorf("segment: S3Source: ReadRange: %w", err)
	}
	defer result.Body.Close()
	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("segment: S3Source: ReadRange: %w", err)
	}
	return data, nil
}

// Size returns the object's total byte length via HeadObject, used to
// bootstrap reading the trailing postscript before a SegmentMap exists.
func (s *S3Source) Size(ctx context.Context) (int64, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return 0, fmt.Errorf("segment: S3Source: HeadObject: %w", err)
	}
	if out.ContentLength == nil {
		return 0, fmt.Errorf("segment: S3Source: HeadObject: missing content length")
	}
	return *out.ContentLength, nil
}
