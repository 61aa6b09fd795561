package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// LocalStorage stores objects as files below a root directory. Objects are served
// by the HTTP layer under the media URL prefix.
type LocalStorage struct {
	root    string
	baseURL string
	logger  *zap.Logger
}

// LocalStorageOption configures LocalStorage
type LocalStorageOption func(*LocalStorage)

// WithLocalLogger sets the logger
func WithLocalLogger(logger *zap.Logger) LocalStorageOption {
	return func(s *LocalStorage) {
		s.logger = logger
	}
}

// NewLocalStorage creates the root directory if needed
func NewLocalStorage(root, baseURL string, opts ...LocalStorageOption) (*LocalStorage, error) {
	if root == "" {
		root = "media"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root %s: %w", abs, err)
	}
	if baseURL == "" {
		baseURL = "/media/"
	}

	s := &LocalStorage{root: abs, baseURL: baseURL, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Root returns the absolute root directory
func (s *LocalStorage) Root() string {
	return s.root
}

// Put implements ObjectStorage. The file is written to a temporary name first and
// renamed so readers never see a partial document.
func (s *LocalStorage) Put(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close object: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}

	s.logger.Debug("Object stored", zap.String("key", key), zap.Int("size", len(data)))
	return nil
}

// Open implements ObjectStorage
func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

// Delete implements ObjectStorage
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}

// URL implements ObjectStorage
func (s *LocalStorage) URL(key string) string {
	return joinURL(s.baseURL, key)
}

func (s *LocalStorage) resolve(key string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		s.logger.Warn("Blocked storage key", zap.String("key", key))
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

var _ ObjectStorage = (*LocalStorage)(nil)
