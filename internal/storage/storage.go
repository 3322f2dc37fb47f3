// Package storage persists uploaded catalog images. Local disk serves small
// deployments; Cloudflare R2 serves production.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is returned when a stored file does not exist.
var ErrNotFound = errors.New("storage: file not found")

// Storage stores and serves uploaded files.
type Storage interface {
	// Put stores a file under the key and returns its public URL.
	Put(ctx context.Context, key string, content io.Reader, contentType string) (string, error)

	// Get retrieves a file by its key. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL for a stored key.
	URL(key string) string
}

// Config selects and configures the storage backend.
type Config struct {
	// Provider is "local" (default) or "r2".
	Provider string

	// Local disk backend
	LocalPath string
	LocalURL  string

	// Cloudflare R2 backend
	R2AccountID   string
	R2AccessKeyID string
	R2SecretKey   string
	R2BucketName  string
	R2PublicURL   string
}

// New creates the configured storage backend.
func New(cfg Config) (Storage, error) {
	switch cfg.Provider {
	case "local", "":
		return NewLocalStorage(cfg.LocalPath, cfg.LocalURL)
	case "r2":
		return NewR2Storage(R2Config{
			AccountID:   cfg.R2AccountID,
			AccessKeyID: cfg.R2AccessKeyID,
			SecretKey:   cfg.R2SecretKey,
			BucketName:  cfg.R2BucketName,
			PublicURL:   cfg.R2PublicURL,
		})
	default:
		return nil, fmt.Errorf("unknown storage provider: %q", cfg.Provider)
	}
}
