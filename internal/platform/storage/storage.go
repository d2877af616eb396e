package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Buckets used by the storefront.
const (
	BucketProductImages = "product-images"
	BucketBulkUploads   = "bulk-uploads"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrInvalidKey = errors.New("invalid object key")
)

// Store uploads bytes and hands back a public URL.
type Store interface {
	Put(ctx context.Context, bucket, name string, r io.Reader) (key, publicURL string, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Local keeps objects on disk under dir and serves them from publicURL.
type Local struct {
	dir       string
	publicURL string
}

func NewLocal(dir, publicURL string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{dir: dir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// Dir is the root directory, for mounting a static file server.
func (l *Local) Dir() string { return l.dir }

func (l *Local) Put(ctx context.Context, bucket, name string, r io.Reader) (string, string, error) {
	key, err := objectKey(bucket, name)
	if err != nil {
		return "", "", err
	}
	full := filepath.Join(l.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", "", fmt.Errorf("create bucket dir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", "", fmt.Errorf("create object: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", "", fmt.Errorf("write object: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("close object: %w", err)
	}
	return key, l.publicURL + "/" + escapeKey(key), nil
}

func (l *Local) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if key == "" || strings.Contains(key, "..") {
		return nil, ErrInvalidKey
	}
	f, err := os.Open(filepath.Join(l.dir, filepath.FromSlash(key)))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return f, err
}

func objectKey(bucket, name string) (string, error) {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if bucket == "" || name == "" || name == "." || name == "/" || name == ".." {
		return "", ErrInvalidKey
	}
	return bucket + "/" + name, nil
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
