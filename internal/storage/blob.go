package storage

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by BlobStore.Get when nothing is stored under a key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is a key-value store of opaque byte blobs. Put overwrites.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Close() error
}
