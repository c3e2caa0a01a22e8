package asset

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig holds configuration for the Cloud Storage uploader
type GCSConfig struct {
	Bucket        string // Bucket name (required)
	Prefix        string // Object name prefix, e.g. "recipes/"
	PublicBaseURL string // Base of returned URLs, defaults to https://storage.googleapis.com/<bucket>
	Credentials   string // Path to service account JSON file (optional)
}

// openFunc opens a writer for an object
type openFunc func(ctx context.Context, bucket, object, contentType string) io.WriteCloser

// GCSUploader uploads assets to a Cloud Storage bucket
type GCSUploader struct {
	client  *storage.Client
	bucket  string
	prefix  string
	baseURL string
	open    openFunc
}

// Ensure GCSUploader implements Uploader interface
var _ Uploader = (*GCSUploader)(nil)

// NewGCSUploader creates a Cloud Storage client and uploader
func NewGCSUploader(ctx context.Context, cfg GCSConfig) (*GCSUploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	var opts []option.ClientOption
	if cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Credentials))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	u := newGCSUploader(cfg, nil)
	u.client = client
	u.open = func(ctx context.Context, bucket, object, contentType string) io.WriteCloser {
		w := client.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = contentType
		w.CacheControl = "public, max-age=86400"
		return w
	}
	return u, nil
}

func newGCSUploader(cfg GCSConfig, open openFunc) *GCSUploader {
	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + cfg.Bucket
	}
	return &GCSUploader{
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: baseURL,
		open:    open,
	}
}

// Upload streams body to the bucket. The object is only visible once the
// writer is closed without error.
func (u *GCSUploader) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrUploadFailed)
	}

	object := u.prefix + name
	w := u.open(ctx, u.bucket, object, contentType)

	if _, err := io.Copy(w, body); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("%w: failed to write %s: %w", ErrUploadFailed, object, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("%w: failed to finalize %s: %w", ErrUploadFailed, object, err)
	}

	return objectURL(u.baseURL, object), nil
}

// Close releases the storage client
func (u *GCSUploader) Close() error {
	if u.client == nil {
		return nil
	}
	return u.client.Close()
}
