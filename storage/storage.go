package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

var ErrNotFound = errors.New("object not found")

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore is the blob gateway used by the catalog and the reconciler
type ObjectStore interface {
	Save(ctx context.Context, path string, reader io.Reader, mimeType string) error
	Load(ctx context.Context, path string, writer io.Writer) (int64, error)
	Delete(ctx context.Context, path string) error
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	URL(path string) string
	Check(ctx context.Context) error
	GetBucket() *Bucket
}

// New returns the backend for bucket.StorageType
func New(bucket *Bucket) (ObjectStore, error) {
	switch bucket.StorageType {
	case StorageTypeFile:
		return NewDiskStorage(bucket), nil
	case StorageTypeS3:
		return NewS3Storage(bucket), nil
	}
	return nil, fmt.Errorf("storage type unavailable: %d", bucket.StorageType)
}
