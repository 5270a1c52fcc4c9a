package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filebox/service/internal/storage"
)

type fakeObject struct {
	data         []byte
	contentType  string
	originalName string
	lastModified time.Time
}

// fakeStore is an in-memory ObjectStore for tests. Per-key stat failures and
// blanket operation failures can be injected.
type fakeStore struct {
	mu          sync.Mutex
	objects     map[string]fakeObject
	order       []string
	statErr     map[string]error
	putErr      error
	listErr     error
	deleteCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects: make(map[string]fakeObject),
		statErr: make(map[string]error),
	}
}

func (f *fakeStore) EnsureBucket(ctx context.Context) error { return nil }

func (f *fakeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType, originalName string) error {
	if f.putErr != nil {
		return f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = fakeObject{
		data:         data,
		contentType:  contentType,
		originalName: originalName,
		lastModified: time.Now(),
	}
	f.order = append(f.order, key)
	return nil
}

func (f *fakeStore) Get(ctx context.Context, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	info, err := f.Stat(ctx, key)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return io.NopCloser(bytes.NewReader(f.objects[key].data)), info, nil
}

func (f *fakeStore) Stat(ctx context.Context, key string) (storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.statErr[key]; err != nil {
		return storage.ObjectInfo{}, err
	}
	obj, ok := f.objects[key]
	if !ok {
		return storage.ObjectInfo{}, fmt.Errorf("stat %q: %w", key, storage.ErrNotFound)
	}
	return storage.ObjectInfo{
		Key:          key,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		OriginalName: obj.originalName,
		LastModified: obj.lastModified,
	}, nil
}

func (f *fakeStore) List(ctx context.Context) ([]storage.ObjectInfo, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	infos := make([]storage.ObjectInfo, 0, len(f.order))
	for _, key := range f.order {
		obj := f.objects[key]
		infos = append(infos, storage.ObjectInfo{
			Key:          key,
			Size:         int64(len(obj.data)),
			LastModified: obj.lastModified,
		})
	}
	return infos, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	if _, ok := f.objects[key]; !ok {
		return fmt.Errorf("delete %q: %w", key, storage.ErrNotFound)
	}
	delete(f.objects, key)
	for i, k := range f.order {
		if k == key {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("http://store.test/%s?sig=put&ttl=%d", key, int64(expiry.Seconds())), nil
}

func (f *fakeStore) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("http://store.test/%s?sig=get&ttl=%d", key, int64(expiry.Seconds())), nil
}

func newTestService(store storage.ObjectStore) *Service {
	return NewService(store, "uploads", 5*time.Minute)
}

func TestStoreRetrieveRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newFakeStore())

	stored, err := svc.Store(ctx, strings.NewReader("hi"), 2, "a.txt", "text/plain")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(stored.Key, "-a.txt"), "key %q should end in -a.txt", stored.Key)
	assert.Equal(t, "a.txt", stored.OriginalName)
	assert.Equal(t, "text/plain", stored.MimeType)

	dl, err := svc.Retrieve(ctx, stored.Key)
	require.NoError(t, err)
	defer dl.Body.Close()

	body, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.Equal(t, "hi", string(body))
	assert.Equal(t, "text/plain", dl.ContentType)
	assert.Equal(t, int64(2), dl.Size)
	assert.Equal(t, "a.txt", dl.OriginalName)
}

func TestStoreDefaultsContentType(t *testing.T) {
	svc := newTestService(newFakeStore())

	stored, err := svc.Store(context.Background(), strings.NewReader("x"), 1, "blob", "")
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", stored.MimeType)
}

func TestStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.putErr = errors.New("connection refused")
	svc := newTestService(store)

	_, err := svc.Store(context.Background(), strings.NewReader("x"), 1, "a.txt", "text/plain")
	require.Error(t, err)
	assert.False(t, svc.IsNotFound(err))
}

func TestRetrieveNotFound(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.Retrieve(context.Background(), "never-stored")
	require.Error(t, err)
	assert.True(t, svc.IsNotFound(err), "expected not-found, got %v", err)
}

func TestDeleteNotFoundSkipsStoreDelete(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	err := svc.Delete(context.Background(), "never-stored")
	require.Error(t, err)
	assert.True(t, svc.IsNotFound(err), "expected not-found, got %v", err)
	assert.Zero(t, store.deleteCalls, "delete must not reach the store for a missing key")
}

func TestDeleteRemovesObject(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store)

	stored, err := svc.Store(ctx, strings.NewReader("hi"), 2, "a.txt", "text/plain")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, stored.Key))

	_, err = svc.Retrieve(ctx, stored.Key)
	assert.True(t, svc.IsNotFound(err))
}

func TestListDegradesOnStatFailure(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store)

	var keys []string
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		stored, err := svc.Store(ctx, strings.NewReader("data"), 4, name, "text/plain")
		require.NoError(t, err)
		keys = append(keys, stored.Key)
	}
	store.statErr[keys[1]] = errors.New("stat timed out")

	summaries, err := svc.List(ctx)
	require.NoError(t, err, "one failing stat must not abort the listing")
	require.Len(t, summaries, 3)

	assert.Equal(t, "a.txt", summaries[0].OriginalName)
	assert.Equal(t, "text/plain", summaries[0].MimeType)

	// Degraded entry keeps key and size but loses the stat-derived fields.
	assert.Equal(t, keys[1], summaries[1].Key)
	assert.Equal(t, int64(4), summaries[1].Size)
	assert.Empty(t, summaries[1].OriginalName)
	assert.Empty(t, summaries[1].MimeType)

	assert.Equal(t, "c.txt", summaries[2].OriginalName)
}

func TestListFailure(t *testing.T) {
	store := newFakeStore()
	store.listErr = errors.New("bucket unavailable")
	svc := newTestService(store)

	_, err := svc.List(context.Background())
	require.Error(t, err)
}

func TestUploadURL(t *testing.T) {
	svc := NewService(newFakeStore(), "uploads", 5*time.Minute)

	grant, err := svc.UploadURL(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(grant.Key, "-a.txt"))
	assert.Contains(t, grant.URL, grant.Key)
	assert.Equal(t, int64(300), grant.ExpirySeconds)
}

func TestDownloadURLNoExistenceCheck(t *testing.T) {
	svc := NewService(newFakeStore(), "uploads", 24*time.Hour)

	grant, err := svc.DownloadURL(context.Background(), "missing-key")
	require.NoError(t, err)
	assert.Contains(t, grant.URL, "missing-key")
	assert.Equal(t, int64(86400), grant.ExpirySeconds)
}
