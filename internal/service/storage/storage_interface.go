package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage abstracts the object store holding uploaded PDFs and
// question images. All keys are relative to a single configured bucket.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	SignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
