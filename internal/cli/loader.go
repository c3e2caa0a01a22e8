package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/otiai10/recipebox/internal/asset"
)

// readYAML decodes a YAML file into v, rejecting unknown fields.
// The path "-" reads from in.
func readYAML(path string, in io.Reader, v any) error {
	r := in
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open "+path, err)
		}
		defer f.Close()
		r = f
	}

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return NewExitError(ExitCommandError, fmt.Sprintf("%s is empty", path))
		}
		return WrapExitError(ExitCommandError, "failed to parse "+path, err)
	}
	return nil
}

// isRemoteURL reports whether ref is already an http(s) URL
func isRemoteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// resolveImage turns a local image path into an uploaded URL.
// URLs and empty refs are returned unchanged; relative paths are resolved
// against baseDir.
func resolveImage(ctx context.Context, u asset.Uploader, baseDir, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || isRemoteURL(ref) {
		return ref, nil
	}
	if !filepath.IsAbs(ref) && baseDir != "" {
		ref = filepath.Join(baseDir, ref)
	}
	return asset.UploadFile(ctx, u, ref)
}

// dirOf returns the directory relative image paths in path are resolved against
func dirOf(path string) string {
	if path == "-" {
		return ""
	}
	return filepath.Dir(path)
}
