// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider (MinIO, AWS S3, etc.).
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when an object does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// ObjectInfo describes a stored object without its content.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	OriginalName string
	LastModified time.Time
}

// ObjectStore is the interface for all object store operations the service needs.
type ObjectStore interface {
	// EnsureBucket checks that the configured bucket exists and creates it if absent.
	// Safe to call on every process start.
	EnsureBucket(ctx context.Context) error
	// Put streams data to the store under key, recording contentType and the
	// client's original filename as object metadata.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType, originalName string) error
	// Get returns the object's content stream along with its metadata.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns metadata for the object at key.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// List enumerates all objects in the bucket, in store order.
	List(ctx context.Context) ([]ObjectInfo, error)
	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
	// PresignPut issues a time-limited URL granting a single PUT of key.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PresignGet issues a time-limited URL granting a single GET of key.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
