package asset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// DefaultLocalBaseURL is where MemoryUploader pretends to serve assets from
const DefaultLocalBaseURL = "http://localhost:8080/assets"

// Blob is an uploaded object held in memory
type Blob struct {
	ContentType string
	Data        []byte
}

// MemoryUploader keeps uploads in process, for local development and tests
type MemoryUploader struct {
	mu      sync.Mutex
	baseURL string
	blobs   map[string]Blob
}

// Ensure MemoryUploader implements Uploader interface
var _ Uploader = (*MemoryUploader)(nil)

// NewMemoryUploader returns an uploader serving from baseURL (DefaultLocalBaseURL if empty)
func NewMemoryUploader(baseURL string) *MemoryUploader {
	if baseURL == "" {
		baseURL = DefaultLocalBaseURL
	}
	return &MemoryUploader{
		baseURL: baseURL,
		blobs:   make(map[string]Blob),
	}
}

// Upload implements Uploader
func (u *MemoryUploader) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUploadFailed, err)
	}
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrUploadFailed)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", fmt.Errorf("%w: failed to read %s: %w", ErrUploadFailed, name, err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.blobs[name] = Blob{ContentType: contentType, Data: buf.Bytes()}

	return objectURL(u.baseURL, name), nil
}

// Get returns an uploaded blob
func (u *MemoryUploader) Get(name string) (Blob, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	b, ok := u.blobs[name]
	return b, ok
}
