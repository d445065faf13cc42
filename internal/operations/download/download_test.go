package download

import (
	"bytes"
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elaunira/r2index-go/errors"
	"github.com/elaunira/r2index-go/internal/testutil"
	"github.com/elaunira/r2index-go/internal/transfer"
)

// memWriterAt is an in-memory io.WriterAt for reassembly assertions.
type memWriterAt struct {
	mu  sync.Mutex
	buf []byte
}

func (w *memWriterAt) WriteAt(p []byte, off int64) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	end := int(off) + len(p)
	if end > len(w.buf) {
		grown := make([]byte, end)
		copy(grown, w.buf)
		w.buf = grown
	}
	copy(w.buf[off:], p)
	return len(p), nil
}

func randomContent(t *testing.T, size int) []byte {
	t.Helper()
	content := make([]byte, size)
	rng := rand.New(rand.NewSource(int64(size)))
	_, err := rng.Read(content)
	require.NoError(t, err)
	return content
}

func TestHead(t *testing.T) {
	store := testutil.NewObjectStore()
	store.Put("bucket", "key", []byte("hello"))
	downloader := New(store)

	size, err := downloader.Head(context.Background(), "bucket", "key")
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}

func TestHeadMissingObject(t *testing.T) {
	store := testutil.NewObjectStore()
	downloader := New(store)

	_, err := downloader.Head(context.Background(), "bucket", "missing")

	require.Error(t, err)
	assert.True(t, errors.IsObjectNotFound(err))
}

func TestDownload(t *testing.T) {
	store := testutil.NewObjectStore()
	content := randomContent(t, 4096)
	store.Put("bucket", "key", content)
	downloader := New(store)

	recorder := &testutil.ProgressRecorder{}
	agg := transfer.NewAggregator(recorder.Observe)

	var dst bytes.Buffer
	written, err := downloader.Download(context.Background(), "bucket", "key", &dst, agg)
	require.NoError(t, err)

	assert.Equal(t, int64(len(content)), written)
	assert.Equal(t, content, dst.Bytes())
	assert.Equal(t, int64(len(content)), recorder.Last())
}

func TestDownloadMissingObject(t *testing.T) {
	store := testutil.NewObjectStore()
	downloader := New(store)

	var dst bytes.Buffer
	_, err := downloader.Download(context.Background(), "bucket", "missing", &dst, nil)

	require.Error(t, err)
	assert.True(t, errors.IsObjectNotFound(err))
}

func TestDownloadParts(t *testing.T) {
	engines := map[string]transfer.Engine{
		"pool":   transfer.NewPoolEngine(4),
		"serial": transfer.NewSerialEngine(),
	}

	for name, eng := range engines {
		t.Run(name, func(t *testing.T) {
			store := testutil.NewObjectStore()
			content := randomContent(t, 2500)
			store.Put("bucket", "key", content)
			downloader := New(store)

			plan := transfer.Plan{Multipart: true, PartSize: 1000, Concurrency: 4}
			recorder := &testutil.ProgressRecorder{}
			agg := transfer.NewAggregator(recorder.Observe)

			dst := &memWriterAt{}
			err := downloader.DownloadParts(context.Background(), "bucket", "key",
				int64(len(content)), dst, plan, eng, agg)
			require.NoError(t, err)

			assert.Equal(t, content, dst.buf)
			assert.Equal(t, int64(len(content)), recorder.Last())
		})
	}
}

func TestDownloadPartsRangeRequests(t *testing.T) {
	store := testutil.NewObjectStore()
	content := randomContent(t, 4097)
	store.Put("bucket", "key", content)

	var ranges []string
	var mu sync.Mutex
	mock := &testutil.MockS3Client{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			mu.Lock()
			if params.Range != nil {
				ranges = append(ranges, *params.Range)
			}
			mu.Unlock()
			return store.GetObject(ctx, params, optFns...)
		},
	}
	downloader := New(mock)

	plan := transfer.Plan{Multipart: true, PartSize: 1024, Concurrency: 1}
	dst := &memWriterAt{}
	err := downloader.DownloadParts(context.Background(), "bucket", "key",
		int64(len(content)), dst, plan, transfer.NewSerialEngine(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"bytes=0-1023",
		"bytes=1024-2047",
		"bytes=2048-3071",
		"bytes=3072-4095",
		"bytes=4096-4096",
	}, ranges)
	assert.Equal(t, content, dst.buf)
}

func TestDownloadPartsEmptyObject(t *testing.T) {
	store := testutil.NewObjectStore()
	store.Put("bucket", "key", nil)

	var gets int32
	mock := &testutil.MockS3Client{
		GetObjectFunc: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			atomic.AddInt32(&gets, 1)
			return store.GetObject(ctx, params, optFns...)
		},
	}
	downloader := New(mock)

	plan := transfer.Plan{Multipart: true, PartSize: 1000, Concurrency: 2}
	dst := &memWriterAt{}
	err := downloader.DownloadParts(context.Background(), "bucket", "key", 0, dst, plan,
		transfer.NewSerialEngine(), nil)

	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&gets))
	assert.Empty(t, dst.buf)
}
