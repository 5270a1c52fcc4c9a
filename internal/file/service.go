// Package file implements the object storage access layer: proxied uploads and
// downloads, bucket listing, deletion, and pre-signed URL issuance.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/filebox/service/internal/storage"
)

// fallback when neither the client nor the store declared a content type.
const defaultContentType = "application/octet-stream"

// StoredFile describes the outcome of a proxied upload.
type StoredFile struct {
	Key          string `json:"key"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimetype"`
}

// Download carries an object's content stream and the headers needed to serve it.
// The caller owns Body and must close it.
type Download struct {
	Body         io.ReadCloser
	ContentType  string
	Size         int64
	OriginalName string
}

// Summary is one entry of a bucket listing. OriginalName and MimeType are
// empty when the per-object metadata fetch failed.
type Summary struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"lastModified"`
	OriginalName string    `json:"originalName,omitempty"`
	MimeType     string    `json:"mimetype,omitempty"`
}

// Grant is a pre-signed URL handed to the client for a direct store transfer.
type Grant struct {
	URL           string `json:"url"`
	Key           string `json:"key,omitempty"`
	ExpirySeconds int64  `json:"expirySeconds,omitempty"`
}

// Service mediates between HTTP handlers and the object store.
type Service struct {
	store         storage.ObjectStore
	bucket        string
	presignExpiry time.Duration
}

// NewService creates a file Service issuing pre-signed URLs valid for presignExpiry.
func NewService(store storage.ObjectStore, bucket string, presignExpiry time.Duration) *Service {
	return &Service{store: store, bucket: bucket, presignExpiry: presignExpiry}
}

// Bucket returns the name of the bucket this service operates on.
func (s *Service) Bucket() string {
	return s.bucket
}

// Store writes r to the object store under a freshly derived key, carrying the
// declared content type and the client's filename as object metadata.
func (s *Service) Store(ctx context.Context, r io.Reader, size int64, filename, contentType string) (StoredFile, error) {
	if contentType == "" {
		contentType = defaultContentType
	}
	key := storageKey(filename)
	if err := s.store.Put(ctx, key, r, size, contentType, filename); err != nil {
		return StoredFile{}, fmt.Errorf("store %q: %w", key, err)
	}
	return StoredFile{Key: key, OriginalName: filename, MimeType: contentType}, nil
}

// Retrieve fetches the object at key together with the metadata needed to
// serve it. Not-found is distinguishable via IsNotFound.
func (s *Service) Retrieve(ctx context.Context, key string) (Download, error) {
	body, info, err := s.store.Get(ctx, key)
	if err != nil {
		return Download{}, fmt.Errorf("retrieve %q: %w", key, err)
	}
	contentType := info.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	return Download{
		Body:         body,
		ContentType:  contentType,
		Size:         info.Size,
		OriginalName: info.OriginalName,
	}, nil
}

// List enumerates every object in the bucket. For each entry it attempts a
// stat to recover the original filename and content type; when that stat
// fails the entry is emitted with key, size, and last-modified only. A single
// failed stat never aborts the listing.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	infos, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bucket: %w", err)
	}
	summaries := make([]Summary, 0, len(infos))
	for _, info := range infos {
		sum := Summary{Key: info.Key, Size: info.Size, LastModified: info.LastModified}
		if stat, err := s.store.Stat(ctx, info.Key); err == nil {
			sum.OriginalName = stat.OriginalName
			sum.MimeType = stat.ContentType
		}
		summaries = append(summaries, sum)
	}
	return summaries, nil
}

// Delete removes the object at key. It stats first so a missing key yields a
// distinguishable not-found instead of the store's silent-success delete.
func (s *Service) Delete(ctx context.Context, key string) error {
	if _, err := s.store.Stat(ctx, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// UploadURL derives a fresh key for filename and issues a pre-signed PUT URL
// for it. The object does not exist until the client completes the upload.
func (s *Service) UploadURL(ctx context.Context, filename string) (Grant, error) {
	key := storageKey(filename)
	url, err := s.store.PresignPut(ctx, key, s.presignExpiry)
	if err != nil {
		return Grant{}, fmt.Errorf("upload url for %q: %w", key, err)
	}
	return Grant{URL: url, Key: key, ExpirySeconds: int64(s.presignExpiry.Seconds())}, nil
}

// DownloadURL issues a pre-signed GET URL for key. The key is not checked for
// existence; a grant for a missing object simply 404s at the store.
func (s *Service) DownloadURL(ctx context.Context, key string) (Grant, error) {
	url, err := s.store.PresignGet(ctx, key, s.presignExpiry)
	if err != nil {
		return Grant{}, fmt.Errorf("download url for %q: %w", key, err)
	}
	return Grant{URL: url, ExpirySeconds: int64(s.presignExpiry.Seconds())}, nil
}

// IsNotFound returns true when the error indicates the object was not found.
func (s *Service) IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound)
}
