// Package storage provides object storage for rendered quotation documents and
// catalog images: a local filesystem backend under the media root and an
// S3-compatible backend.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/sisl/eshop/internal/domain/shared"
	"github.com/sisl/eshop/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Sentinel errors
var (
	ErrObjectNotFound = shared.NewDomainError("OBJECT_NOT_FOUND", "Stored object not found")
	ErrInvalidKey     = shared.NewDomainError("INVALID_STORAGE_KEY", "Invalid storage key")
)

// ObjectStorage stores opaque objects under slash-separated keys
type ObjectStorage interface {
	// Put stores data under key, replacing any existing object
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Open returns a reader for the object. Missing objects return ErrObjectNotFound.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object; deleting a missing object is not an error
	Delete(ctx context.Context, key string) error
	// URL returns the public URL of key
	URL(key string) string
}

// New creates the storage backend selected by cfg.Backend
func New(ctx context.Context, cfg config.StorageConfig, media config.MediaConfig, logger *zap.Logger) (ObjectStorage, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocalStorage(media.Root, media.URL, WithLocalLogger(logger))
	case "s3":
		s, err := NewS3ObjectStorage(&cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// cleanKey normalizes key and rejects absolute keys and keys that escape the root
func cleanKey(key string) (string, error) {
	key = strings.ReplaceAll(strings.TrimSpace(key), "\\", "/")
	if key == "" || strings.HasPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", ErrInvalidKey
		}
	}
	cleaned := path.Clean(key)
	if cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// joinURL appends key to base with exactly one slash between them
func joinURL(base, key string) string {
	if base == "" {
		return "/" + key
	}
	return strings.TrimRight(base, "/") + "/" + key
}
