// Package asset uploads recipe images and profile photos and returns the URL
// they are served from.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrUploadFailed is returned when an upload could not be completed
var ErrUploadFailed = errors.New("asset upload failed")

// Uploader stores a blob and returns its public URL
type Uploader interface {
	Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error)
}

// UploadFile uploads a local file under a fresh random name that keeps its extension
func UploadFile(ctx context.Context, u Uploader, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: failed to open %s: %w", ErrUploadFailed, path, err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return u.Upload(ctx, uuid.NewString()+ext, contentType, f)
}

// objectURL joins a base URL and an object name
func objectURL(baseURL, object string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(object, "/")
}
