package storage

import (
	"context"
	"time"
)

// PaperStore abstracts the object store holding uploaded paper files.
type PaperStore interface {
	Upload(ctx context.Context, storagePath string, content []byte, contentType string) error
	Download(ctx context.Context, storagePath string) ([]byte, error)
	Delete(ctx context.Context, storagePath string) error

	// SignedURL returns a time-limited download link for a stored paper.
	SignedURL(ctx context.Context, storagePath string, expiry time.Duration) (string, error)
}
