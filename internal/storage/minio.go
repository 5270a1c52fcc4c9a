package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// metadata key under which the client-supplied filename travels with the object.
const originalNameKey = "Original-Name"

// MinioStorage implements ObjectStore using a MinIO (or any S3-compatible) backend.
// To switch providers, change STORAGE_ENDPOINT and credentials — no code changes
// are needed as long as the provider speaks the S3 API.
type MinioStorage struct {
	client *minio.Client
	bucket string
	region string
}

// NewMinioStorage creates a MinIO client for the given endpoint and returns a
// ready-to-use MinioStorage. Call EnsureBucket before serving requests.
func NewMinioStorage(endpoint, accessKey, secretKey, bucket, region string, useSSL bool) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return &MinioStorage{client: client, bucket: bucket, region: region}, nil
}

// EnsureBucket checks bucket existence and creates the bucket in the configured
// region when absent. Idempotent across restarts.
func (s *MinioStorage) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("create bucket %q: %w", s.bucket, err)
		}
		log.Printf("storage: created bucket %q", s.bucket)
	}
	return nil
}

// Put streams r to the store under key. size must be the exact byte count
// (pass -1 only if the size is genuinely unknown — MinIO will buffer it).
func (s *MinioStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType, originalName string) error {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if originalName != "" {
		opts.UserMetadata = map[string]string{originalNameKey: originalName}
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, r, size, opts); err != nil {
		return fmt.Errorf("put object %q: %w", key, wrapNotFound(err))
	}
	return nil
}

// Get stats the object first so a missing key surfaces as ErrNotFound before
// any bytes are streamed, then opens the content stream.
func (s *MinioStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	info, err := s.Stat(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("get object %q: %w", key, wrapNotFound(err))
	}
	return obj, info, nil
}

// Stat returns the object's metadata, including the original filename if one
// was recorded at upload time.
func (s *MinioStorage) Stat(ctx context.Context, key string) (ObjectInfo, error) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("stat object %q: %w", key, wrapNotFound(err))
	}
	return ObjectInfo{
		Key:          info.Key,
		Size:         info.Size,
		ContentType:  info.ContentType,
		OriginalName: info.UserMetadata[originalNameKey],
		LastModified: info.LastModified,
	}, nil
}

// List enumerates every object in the bucket, in the order the store returns them.
func (s *MinioStorage) List(ctx context.Context) ([]ObjectInfo, error) {
	var infos []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list objects: %w", wrapNotFound(obj.Err))
		}
		infos = append(infos, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			LastModified: obj.LastModified,
		})
	}
	return infos, nil
}

// Delete removes the object at key from the bucket.
func (s *MinioStorage) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %q: %w", key, wrapNotFound(err))
	}
	return nil
}

// PresignPut issues a pre-signed upload URL for key, valid for expiry.
func (s *MinioStorage) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedPutObject(ctx, s.bucket, key, expiry)
	if err != nil {
		return "", fmt.Errorf("presign put %q: %w", key, err)
	}
	return u.String(), nil
}

// PresignGet issues a pre-signed download URL for key, valid for expiry.
func (s *MinioStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign get %q: %w", key, err)
	}
	return u.String(), nil
}

// wrapNotFound translates the store's NoSuchKey/NoSuchBucket responses into
// ErrNotFound so callers can distinguish them with errors.Is.
func wrapNotFound(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return err
}
