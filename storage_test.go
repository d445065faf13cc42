package r2index

import (
	"context"
	stderrors "errors"
	"math/rand"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elaunira/r2index-go/errors"
	"github.com/elaunira/r2index-go/internal/testutil"
	"github.com/elaunira/r2index-go/r2types"
)

func newTestStorage(t *testing.T, opts ...StorageOption) (*Storage, *testutil.ObjectStore, *billy.FS) {
	t.Helper()
	store := testutil.NewObjectStore()
	memFS := billy.NewInMemoryFS()
	opts = append([]StorageOption{WithFilesystem(memFS)}, opts...)
	return NewStorageWithClient(store, opts...), store, memFS
}

func randomContent(t *testing.T, size int) []byte {
	t.Helper()
	content := make([]byte, size)
	rng := rand.New(rand.NewSource(int64(size)))
	_, err := rng.Read(content)
	require.NoError(t, err)
	return content
}

func TestUploadFile(t *testing.T) {
	storage, store, memFS := newTestStorage(t)
	content := []byte("hello world")
	require.NoError(t, memFS.WriteFile("/src/file.txt", content, 0o644))

	key, err := storage.UploadFile(context.Background(), "/src/file.txt", "bucket", "data/v1/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "data/v1/file.txt", key)

	stored, ok := store.Get("bucket", "data/v1/file.txt")
	require.True(t, ok)
	assert.Equal(t, content, stored)
}

func TestUploadFileMissingSource(t *testing.T) {
	storage, _, _ := newTestStorage(t)

	_, err := storage.UploadFile(context.Background(), "/missing.txt", "bucket", "data/v1/file.txt")

	require.Error(t, err)
	assert.True(t, errors.IsSourceNotFound(err))
}

func TestUploadFileInvalidBucket(t *testing.T) {
	storage, _, memFS := newTestStorage(t)
	require.NoError(t, memFS.WriteFile("/src/file.txt", []byte("x"), 0o644))

	_, err := storage.UploadFile(context.Background(), "/src/file.txt", "NOT-VALID", "data/v1/file.txt")

	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidBucketName)
}

func TestUploadFileMultipart(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		name := "serial"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			storage, store, memFS := newTestStorage(t, WithTransferConfig(r2types.TransferConfig{
				MultipartThreshold: 0,
				PartSize:           1024,
				Concurrency:        3,
				Parallel:           parallel,
			}))

			content := randomContent(t, 5000)
			require.NoError(t, memFS.WriteFile("/src/big.bin", content, 0o644))

			var total int64
			key, err := storage.UploadFile(context.Background(), "/src/big.bin", "bucket", "data/v1/big.bin",
				WithProgress(func(n int64) { total = n }))
			require.NoError(t, err)
			assert.Equal(t, "data/v1/big.bin", key)

			stored, ok := store.Get("bucket", "data/v1/big.bin")
			require.True(t, ok)
			assert.Equal(t, content, stored)
			assert.Equal(t, int64(len(content)), total)
			assert.Equal(t, 0, store.PendingUploads())
		})
	}
}

func TestUploadBytes(t *testing.T) {
	storage, store, _ := newTestStorage(t)

	err := storage.UploadBytes(context.Background(), []byte("payload"), "bucket", "data/v1/blob",
		WithContentType("text/plain"))
	require.NoError(t, err)

	stored, ok := store.Get("bucket", "data/v1/blob")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), stored)
}

func TestDownloadFile(t *testing.T) {
	storage, store, memFS := newTestStorage(t)
	content := randomContent(t, 4096)
	store.Put("bucket", "data/v1/file.bin", content)

	var total int64
	err := storage.DownloadFile(context.Background(), "bucket", "data/v1/file.bin", "/dst/file.bin",
		WithDownloadProgress(func(n int64) { total = n }))
	require.NoError(t, err)

	got, err := memFS.ReadFile("/dst/file.bin")
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, int64(len(content)), total)
}

func TestDownloadFileMultipart(t *testing.T) {
	for _, parallel := range []bool{true, false} {
		name := "serial"
		if parallel {
			name = "parallel"
		}
		t.Run(name, func(t *testing.T) {
			storage, store, memFS := newTestStorage(t, WithTransferConfig(r2types.TransferConfig{
				MultipartThreshold: 0,
				PartSize:           1000,
				Concurrency:        4,
				Parallel:           parallel,
			}))

			content := randomContent(t, 2500)
			store.Put("bucket", "data/v1/file.bin", content)

			err := storage.DownloadFile(context.Background(), "bucket", "data/v1/file.bin", "/dst/file.bin")
			require.NoError(t, err)

			got, err := memFS.ReadFile("/dst/file.bin")
			require.NoError(t, err)
			assert.Equal(t, content, got)
		})
	}
}

func TestDownloadFileMultipartEmptyObject(t *testing.T) {
	storage, store, memFS := newTestStorage(t, WithTransferConfig(r2types.TransferConfig{
		MultipartThreshold: 0,
		PartSize:           1000,
		Concurrency:        2,
		Parallel:           true,
	}))
	store.Put("bucket", "data/v1/empty", nil)

	err := storage.DownloadFile(context.Background(), "bucket", "data/v1/empty", "/dst/empty")
	require.NoError(t, err)

	got, err := memFS.ReadFile("/dst/empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDownloadFileMissingObject(t *testing.T) {
	storage, _, _ := newTestStorage(t)

	err := storage.DownloadFile(context.Background(), "bucket", "data/v1/missing", "/dst/file")

	require.Error(t, err)
	assert.True(t, errors.IsObjectNotFound(err))
}

func TestExists(t *testing.T) {
	storage, store, _ := newTestStorage(t)
	store.Put("bucket", "data/v1/file", []byte("x"))

	exists, err := storage.Exists(context.Background(), "bucket", "data/v1/file")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = storage.Exists(context.Background(), "bucket", "data/v1/other")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExistsPropagatesTransportError(t *testing.T) {
	transportErr := stderrors.New("connection reset by peer")
	mock := &testutil.MockS3Client{
		HeadObjectFunc: func(_ context.Context, _ *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
			return nil, transportErr
		},
	}
	storage := NewStorageWithClient(mock)

	exists, err := storage.Exists(context.Background(), "bucket", "data/v1/file")

	assert.False(t, exists)
	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)

	var opErr *errors.Error
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "bucket", opErr.Bucket)
	assert.Equal(t, "data/v1/file", opErr.Key)
}

func TestDelete(t *testing.T) {
	storage, store, _ := newTestStorage(t)
	store.Put("bucket", "data/v1/file", []byte("x"))

	require.NoError(t, storage.Delete(context.Background(), "bucket", "data/v1/file"))

	_, ok := store.Get("bucket", "data/v1/file")
	assert.False(t, ok)

	// Deleting an absent object is not an error.
	require.NoError(t, storage.Delete(context.Background(), "bucket", "data/v1/file"))
}

func TestSeekWriterAt(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	file, err := memFS.Create("/out.bin")
	require.NoError(t, err)
	defer file.Close()

	w := newSeekWriterAt(file)
	_, err = w.WriteAt([]byte("world"), 5)
	require.NoError(t, err)
	_, err = w.WriteAt([]byte("hello"), 0)
	require.NoError(t, err)

	got, err := memFS.ReadFile("/out.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("helloworld"), got)
}

func TestSniffContentType(t *testing.T) {
	memFS := billy.NewInMemoryFS()
	require.NoError(t, memFS.WriteFile("/page.html", []byte("<!DOCTYPE html><html></html>"), 0o644))

	file, err := memFS.Open("/page.html")
	require.NoError(t, err)
	defer file.Close()

	contentType, err := sniffContentType(file)
	require.NoError(t, err)
	assert.Contains(t, contentType, "text/html")

	// The sniff must leave the cursor at the start of the file.
	buf := make([]byte, 9)
	_, err = file.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("<!DOCTYPE"), buf)
}
