package segment

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azblob"
)

// AzureConfig names the container/blob of a single Vortex file and one of
// three auth methods, grounded on arx-os-arxos's AzureConfig.
type AzureConfig struct {
	AccountName       string
	AccountKey        string
	Container         string
	Blob              string
	SASToken          string // optional, takes precedence over AccountKey
	ConnectionString  string // optional, takes precedence over both above
}

// AzureSource serves segments as ranged downloads of a single blob, keyed
// by a Locator resolving each ID to its (offset, length). Grounded on
// arx-os-arxos's AzureBackend.Get, generalized from DownloadStream's
// whole-blob default to its Range option.
type AzureSource struct {
	client *azblob.Client
	container string
	blob      string
	loc       Locator
}

// NewAzureSource constructs an AzureSource from cfg and loc.
func NewAzureSource(ctx context.Context, cfg AzureConfig, loc Locator) (*AzureSource, error) {
	var client *azblob.Client
	var err error

	switch {
	case cfg.ConnectionString != "":
		client, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	case cfg.SASToken != "":
		serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/?%s", cfg.AccountName, cfg.SASToken)
		client, err = azblob.NewClientWithNoCredential(serviceURL, nil)
	case cfg.AccountKey != "":
		var cred *azblob.SharedKeyCredential
		cred, err = azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err != nil {
			return nil, fmt.Errorf("segment: NewAzureSource: credentials: %w", err)
		}
		serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.AccountName)
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	default:
		return nil, fmt.Errorf("segment: NewAzureSource: no authentication method provided")
	}
	if err != nil {
		return nil, fmt.Errorf("segment: NewAzureSource: creating client: %w", err)
	}

	return &AzureSource{client: client, container: cfg.Container, blob: cfg.Blob, loc: loc}, nil
}

func (s *AzureSource) Fetch(ctx context.Context, ids []ID) (map[ID][]byte, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(s.blob)

	out := make(map[ID][]byte, len(ids))
	for _, id := range ids {
		offset, length, ok := s.loc.Locate(id)
		if !ok {
			return nil, fmtNotFound(id)
		}
		resp, err := blobClient.DownloadStream(ctx, &azblob.DownloadStreamOptions{
			Range: azblob.HTTPRange{Offset: offset, Count: length},
		})
		if err != nil {
			return nil, fmt.Errorf("segment: AzureSource: fetching segment %d: %w", id, err)
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("segment: AzureSource: reading segment %d: %w", id, err)
		}
		out[id] = data
	}
	return out, nil
}

func (s *AzureSource) Close() error { return nil }

// ReadRange fetches an explicit byte range, independent of s's Locator —
// used to bootstrap reading the trailing postscript before any segment
// id is known.
func (s *AzureSource) ReadRange(ctx context.Context, offset, length int64) ([]byte, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(s.blob)
	resp, err := blobClient.DownloadStream(ctx, &azblob.DownloadStreamOptions{
		Range: azblob.HTTPRange{Offset: offset, Count: length},
	})
	if err != nil {
		return nil, fmt.Errorf("segment: AzureSource: ReadRange: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("segment: AzureSource: ReadRange: %w", err)
	}
	return data, nil
}

// Size returns the blob's total byte length via GetProperties, used to
// bootstrap reading the trailing postscript before a SegmentMap exists.
func (s *AzureSource) Size(ctx context.Context) (int64, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(s.blob)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("segment: AzureSource: GetProperties: %w", err)
	}
	if props.ContentLength == nil {
		return 0, fmt.Errorf("segment: AzureSource: GetProperties: missing content length")
	}
	return *props.ContentLength, nil
}
