package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/elaunira/r2index-go/internal/s3api"
)

// ObjectStore is an in-memory implementation of the s3api.S3API interface.
// It stores object bodies keyed by "bucket/key", assembles multipart
// uploads, and serves ranged GET requests, which makes it suitable for
// round-trip tests of the transfer operations.
type ObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads map[string]map[int32][]byte
	nextID  int
}

var _ s3api.S3API = (*ObjectStore)(nil)

// NewObjectStore creates an empty in-memory object store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects: make(map[string][]byte),
		uploads: make(map[string]map[int32][]byte),
	}
}

// Put stores content directly, bypassing the S3 API surface.
func (s *ObjectStore) Put(bucket, key string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey(bucket, key)] = append([]byte(nil), content...)
}

// Get returns stored content and whether the object exists.
func (s *ObjectStore) Get(bucket, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.objects[objectKey(bucket, key)]
	return content, ok
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

// PutObject implements the S3API interface.
func (s *ObjectStore) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	content, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey(aws.ToString(params.Bucket), aws.ToString(params.Key))] = content
	return &s3.PutObjectOutput{}, nil
}

// GetObject implements the S3API interface. It honors Range headers of the
// form "bytes=a-b".
func (s *ObjectStore) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	s.mu.Lock()
	content, ok := s.objects[objectKey(aws.ToString(params.Bucket), aws.ToString(params.Key))]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: object %s does not exist", aws.ToString(params.Key))
	}

	if params.Range != nil {
		start, end, err := parseRange(aws.ToString(params.Range), int64(len(content)))
		if err != nil {
			return nil, err
		}
		content = content[start : end+1]
	}

	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(content)),
		ContentLength: aws.Int64(int64(len(content))),
	}, nil
}

// HeadObject implements the S3API interface.
func (s *ObjectStore) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	s.mu.Lock()
	content, ok := s.objects[objectKey(aws.ToString(params.Bucket), aws.ToString(params.Key))]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("NotFound: object %s does not exist", aws.ToString(params.Key))
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(content)))}, nil
}

// DeleteObject implements the S3API interface.
func (s *ObjectStore) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey(aws.ToString(params.Bucket), aws.ToString(params.Key)))
	return &s3.DeleteObjectOutput{}, nil
}

// CreateMultipartUpload implements the S3API interface.
func (s *ObjectStore) CreateMultipartUpload(_ context.Context, _ *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	uploadID := fmt.Sprintf("upload-%d", s.nextID)
	s.uploads[uploadID] = make(map[int32][]byte)
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(uploadID)}, nil
}

// UploadPart implements the S3API interface.
func (s *ObjectStore) UploadPart(_ context.Context, params *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	content, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	parts, ok := s.uploads[aws.ToString(params.UploadId)]
	if !ok {
		return nil, fmt.Errorf("NoSuchUpload: %s", aws.ToString(params.UploadId))
	}
	partNumber := aws.ToInt32(params.PartNumber)
	parts[partNumber] = content
	return &s3.UploadPartOutput{ETag: aws.String(fmt.Sprintf("etag-%d", partNumber))}, nil
}

// CompleteMultipartUpload implements the S3API interface. Parts are
// concatenated in the order listed in the request.
func (s *ObjectStore) CompleteMultipartUpload(_ context.Context, params *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts, ok := s.uploads[aws.ToString(params.UploadId)]
	if !ok {
		return nil, fmt.Errorf("NoSuchUpload: %s", aws.ToString(params.UploadId))
	}

	var assembled []byte
	for _, completed := range params.MultipartUpload.Parts {
		content, found := parts[aws.ToInt32(completed.PartNumber)]
		if !found {
			return nil, fmt.Errorf("InvalidPart: part %d was not uploaded", aws.ToInt32(completed.PartNumber))
		}
		assembled = append(assembled, content...)
	}

	s.objects[objectKey(aws.ToString(params.Bucket), aws.ToString(params.Key))] = assembled
	delete(s.uploads, aws.ToString(params.UploadId))
	return &s3.CompleteMultipartUploadOutput{}, nil
}

// AbortMultipartUpload implements the S3API interface.
func (s *ObjectStore) AbortMultipartUpload(_ context.Context, params *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploads, aws.ToString(params.UploadId))
	return &s3.AbortMultipartUploadOutput{}, nil
}

// PendingUploads returns the number of multipart uploads that were started
// but neither completed nor aborted.
func (s *ObjectStore) PendingUploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.uploads)
}

func parseRange(header string, size int64) (int64, int64, error) {
	spec, ok := strings.CutPrefix(header, "bytes=")
	if !ok {
		return 0, 0, fmt.Errorf("InvalidRange: %s", header)
	}
	bounds := strings.SplitN(spec, "-", 2)
	if len(bounds) != 2 {
		return 0, 0, fmt.Errorf("InvalidRange: %s", header)
	}
	start, err := strconv.ParseInt(bounds[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("InvalidRange: %s", header)
	}
	end, err := strconv.ParseInt(bounds[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("InvalidRange: %s", header)
	}
	if start < 0 || end >= size || start > end {
		return 0, 0, fmt.Errorf("InvalidRange: %s not satisfiable for size %d", header, size)
	}
	return start, end, nil
}
