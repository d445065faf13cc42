package r2index

import (
	"context"
	"io"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/rs/zerolog"

	"github.com/elaunira/r2index-go/errors"
	"github.com/elaunira/r2index-go/internal/operations/download"
	"github.com/elaunira/r2index-go/internal/operations/upload"
	"github.com/elaunira/r2index-go/internal/s3api"
	"github.com/elaunira/r2index-go/internal/transfer"
	"github.com/elaunira/r2index-go/internal/validation"
	"github.com/elaunira/r2index-go/r2types"
)

// R2Config holds the credentials and endpoint for an R2 (or any
// S3-compatible) storage account.
type R2Config struct {
	AccessKeyID     string
	SecretAccessKey string
	EndpointURL     string

	// Region defaults to "auto", which is what R2 expects.
	Region string
}

// Storage provides high-level upload, download, and delete operations
// against R2 object storage. It is safe for concurrent use.
//
// Transfers above the configured multipart threshold are split into parts
// and scheduled either concurrently or sequentially depending on the
// transfer configuration.
type Storage struct {
	s3Client   s3api.S3API
	uploader   *upload.Uploader
	downloader *download.Downloader
	fs         fs.Filesystem
	logger     zerolog.Logger
	transfer   r2types.TransferConfig
}

// NewStorage creates a Storage backed by the R2 account described in cfg.
//
// Example:
//
//	storage, err := r2index.NewStorage(ctx, r2index.R2Config{
//	    AccessKeyID:     accessKey,
//	    SecretAccessKey: secretKey,
//	    EndpointURL:     "https://<account>.r2.cloudflarestorage.com",
//	})
func NewStorage(ctx context.Context, cfg R2Config, opts ...StorageOption) (*Storage, error) {
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" || cfg.EndpointURL == "" {
		return nil, errors.NewError("storage initialization", errors.ErrStorageNotConfigured)
	}

	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, errors.NewError("storage initialization", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.EndpointURL)
		o.UsePathStyle = true
	})

	storage := newStorageWithClient(s3Client)
	for _, opt := range opts {
		opt(storage)
	}
	return storage, nil
}

// NewStorageWithClient creates a Storage with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewStorageWithClient(s3Client s3api.S3API, opts ...StorageOption) *Storage {
	storage := newStorageWithClient(s3Client)
	for _, opt := range opts {
		opt(storage)
	}
	return storage
}

func newStorageWithClient(s3Client s3api.S3API) *Storage {
	return &Storage{
		s3Client:   s3Client,
		uploader:   upload.New(s3Client),
		downloader: download.New(s3Client),
		fs:         billy.NewOSFS("/"),
		logger:     zerolog.Nop(),
		transfer:   DefaultTransferConfig(),
	}
}

// UploadFile uploads the file at path to bucket/key and returns the storage
// key the object was written under. Files at or above the multipart
// threshold are uploaded in parts.
//
// Returns ErrSourceNotFound when the local file does not exist.
func (s *Storage) UploadFile(ctx context.Context, path, bucket, key string, opts ...r2types.UploadOption) (string, error) {
	const op = "upload"

	if err := validateTarget(op, bucket, key); err != nil {
		return "", err
	}

	cfg := applyUploadOptions(opts)

	info, err := s.fs.Stat(path)
	if err != nil {
		return "", errors.NewError(op, errors.ErrSourceNotFound).WithBucket(bucket).WithKey(key).
			WithMessage("source file not found: " + path)
	}
	size := info.Size()

	file, err := s.fs.Open(path)
	if err != nil {
		return "", errors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	contentType := cfg.ContentType
	if contentType == "" {
		contentType, err = sniffContentType(file)
		if err != nil {
			return "", errors.NewError(op, err).WithBucket(bucket).WithKey(key)
		}
	}

	transferCfg := s.transferConfig(cfg.Transfer)
	plan := transfer.Decide(size, transferCfg)
	eng := transfer.EngineFor(plan, transferCfg.Parallel)
	agg := transfer.NewAggregator(cfg.Progress)

	s.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int64("size", size).
		Bool("multipart", plan.Multipart).
		Msg("uploading file")

	if err := s.uploader.Upload(ctx, bucket, key, file, size, contentType, plan, eng, agg); err != nil {
		return "", err
	}
	return key, nil
}

// UploadBytes uploads in-memory content to bucket/key in a single request.
func (s *Storage) UploadBytes(ctx context.Context, data []byte, bucket, key string, opts ...r2types.UploadOption) error {
	const op = "upload"

	if err := validateTarget(op, bucket, key); err != nil {
		return err
	}

	cfg := applyUploadOptions(opts)

	contentType := cfg.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(data).String()
	}

	agg := transfer.NewAggregator(cfg.Progress)

	s.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int("size", len(data)).
		Msg("uploading bytes")

	return s.uploader.PutBytes(ctx, bucket, key, data, contentType, agg)
}

// DownloadFile downloads bucket/key to the local path, creating parent
// directories as needed. Objects at or above the multipart threshold are
// fetched as concurrent byte ranges.
//
// Returns ErrObjectNotFound when the object does not exist.
func (s *Storage) DownloadFile(ctx context.Context, bucket, key, path string, opts ...r2types.DownloadOption) error {
	const op = "download"

	if err := validateTarget(op, bucket, key); err != nil {
		return err
	}

	cfg := applyDownloadOptions(opts)

	size, err := s.downloader.Head(ctx, bucket, key)
	if err != nil {
		return err
	}

	if dir := parentDir(path); dir != "" {
		if mkdirErr := s.fs.MkdirAll(dir, 0o755); mkdirErr != nil {
			return errors.NewError(op, mkdirErr).WithBucket(bucket).WithKey(key)
		}
	}

	file, err := s.fs.Create(path)
	if err != nil {
		return errors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	defer file.Close()

	transferCfg := s.transferConfig(cfg.Transfer)
	plan := transfer.Decide(size, transferCfg)
	agg := transfer.NewAggregator(cfg.Progress)

	s.logger.Debug().
		Str("bucket", bucket).
		Str("key", key).
		Int64("size", size).
		Bool("multipart", plan.Multipart).
		Msg("downloading file")

	if !plan.Multipart {
		_, err = s.downloader.Download(ctx, bucket, key, file, agg)
		return err
	}

	eng := transfer.EngineFor(plan, transferCfg.Parallel)
	writer := newSeekWriterAt(file)
	return s.downloader.DownloadParts(ctx, bucket, key, size, writer, plan, eng, agg)
}

// Exists reports whether bucket/key exists. A missing object is not an
// error.
func (s *Storage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	if err := validateTarget("exists", bucket, key); err != nil {
		return false, err
	}

	_, err := s.downloader.Head(ctx, bucket, key)
	if err != nil {
		if errors.IsObjectNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes bucket/key. Deleting a missing object is not an error.
func (s *Storage) Delete(ctx context.Context, bucket, key string) error {
	const op = "delete"

	if err := validateTarget(op, bucket, key); err != nil {
		return err
	}

	input := &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if _, err := s.s3Client.DeleteObject(ctx, input); err != nil {
		return errors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}

	s.logger.Debug().Str("bucket", bucket).Str("key", key).Msg("deleted object")
	return nil
}

// transferConfig merges a per-call override with the storage defaults.
func (s *Storage) transferConfig(override *r2types.TransferConfig) r2types.TransferConfig {
	if override != nil {
		return *override
	}
	return s.transfer
}

func validateTarget(op, bucket, key string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return errors.NewError(op, err).WithBucket(bucket)
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return errors.NewError(op, err).WithBucket(bucket).WithKey(key)
	}
	return nil
}

// sniffContentType detects the MIME type from the file's leading bytes and
// rewinds the file to the start afterwards.
func sniffContentType(file fs.File) (string, error) {
	head := make([]byte, 3072)
	n, err := file.Read(head)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mimetype.Detect(head[:n]).String(), nil
}

func parentDir(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return ""
	}
	return path[:idx]
}

// seekWriterAt adapts a seekable file to io.WriterAt so ranged downloads
// can write parts at their offsets. Writes are serialized by a mutex since
// the underlying file has a single cursor.
type seekWriterAt struct {
	mu   sync.Mutex
	file fs.File
}

func newSeekWriterAt(file fs.File) *seekWriterAt {
	return &seekWriterAt{file: file}
}

// WriteAt implements io.WriterAt.
func (w *seekWriterAt) WriteAt(p []byte, off int64) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.file.Seek(off, io.SeekStart); err != nil {
		return 0, err
	}
	return w.file.Write(p)
}
