package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrInvalidPath  = errors.New("invalid file path")
	ErrFileNotFound = errors.New("file not found")
)

// FileStorage stores uploaded documents under slash-separated keys.
type FileStorage interface {
	// Save writes r under key and returns the normalized key.
	Save(ctx context.Context, r io.Reader, key string, contentType string) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove is a no-op for a missing key.
	Remove(ctx context.Context, key string) error
	URL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
