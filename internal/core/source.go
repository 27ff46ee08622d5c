package core

import (
	"context"
	"io"
)

// ObjectClient fetches and stores document bytes in object storage.
// The S3 implementation lives in internal/core/object-client.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (string, error)
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)
	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	DeleteFile(ctx context.Context, bucket, key string) error
}
