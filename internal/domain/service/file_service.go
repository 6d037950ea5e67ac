package service

import (
	"context"
	"io"
	"time"
)

// FileStorage stores uploaded objects. Public objects are addressed by the
// returned URL; private objects by their path, readable through signed URLs.
type FileStorage interface {
	Upload(ctx context.Context, file io.Reader, objectPath, contentType string, isPublic bool) (string, error)
	Delete(ctx context.Context, objectPath string) error
	SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error)
	Close() error
}
