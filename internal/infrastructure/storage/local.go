// Package storage holds the profile picture backends: local disk, GCS and S3.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStore writes objects under Dir and returns references below URLPrefix.
// With an empty BaseURL the reference is a root-relative path like /uploads/x.png.
type LocalStore struct {
	Dir       string
	URLPrefix string
	BaseURL   string
}

func NewLocalStore(dir, urlPrefix, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	return &LocalStore{Dir: dir, URLPrefix: urlPrefix, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (s *LocalStore) Save(_ context.Context, key, _ string, r io.Reader) (string, error) {
	name := filepath.Base(filepath.Clean("/" + key))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return s.BaseURL + path.Join(s.URLPrefix, name), nil
}
