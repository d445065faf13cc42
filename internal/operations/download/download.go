// Package download handles object download operations against the remote
// store.
//
// Single-part downloads stream the GetObject body straight to the
// destination writer. Multipart downloads fetch byte ranges scheduled by a
// transfer.Engine and write each range at its own offset, so the reassembled
// content is byte-identical regardless of completion order. Progress is
// reported to the caller's aggregator as byte deltas while data flows.
package download

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/elaunira/r2index-go/errors"
	"github.com/elaunira/r2index-go/internal/pool"
	"github.com/elaunira/r2index-go/internal/s3api"
	"github.com/elaunira/r2index-go/internal/transfer"
)

// Downloader performs downloads through the s3api interface.
type Downloader struct {
	s3Client s3api.S3API
}

// New creates a new Downloader instance.
func New(s3Client s3api.S3API) *Downloader {
	return &Downloader{
		s3Client: s3Client,
	}
}

// Head returns the size in bytes of the object at bucket/key. A missing
// object yields ErrObjectNotFound.
func (d *Downloader) Head(ctx context.Context, bucket, key string) (int64, error) {
	input := &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := d.s3Client.HeadObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return 0, errors.NewError("download", errors.ErrObjectNotFound).WithBucket(bucket).WithKey(key)
		}
		return 0, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}

	return aws.ToInt64(output.ContentLength), nil
}

// Download streams the whole object into w and returns the number of bytes
// written. Progress deltas are reported to agg as the body is copied.
func (d *Downloader) Download(
	ctx context.Context,
	bucket, key string,
	w io.Writer,
	agg *transfer.Aggregator,
) (int64, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}

	output, err := d.s3Client.GetObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return 0, errors.NewError("download", errors.ErrObjectNotFound).WithBucket(bucket).WithKey(key)
		}
		return 0, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}
	defer output.Body.Close()

	var reader io.Reader = output.Body
	if agg != nil {
		reader = &progressReader{reader: output.Body, agg: agg}
	}

	buf := pool.GetBlock()
	defer pool.PutBlock(buf)

	written, err := io.CopyBuffer(w, reader, buf)
	if err != nil {
		return written, errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}
	return written, nil
}

// DownloadParts fetches the object as ranged GETs according to plan,
// writing each range at its offset in w. Parts are scheduled by eng; each
// part reports its bytes to agg as they are written.
func (d *Downloader) DownloadParts(
	ctx context.Context,
	bucket, key string,
	size int64,
	w io.WriterAt,
	plan transfer.Plan,
	eng transfer.Engine,
	agg *transfer.Aggregator,
) error {
	// Nothing to fetch; the destination is already the full (empty) content.
	if size == 0 {
		return nil
	}

	numParts := transfer.PartCount(size, plan.PartSize)

	return eng.Run(ctx, numParts, func(ctx context.Context, part int) error {
		offset, length := transfer.PartRange(part, size, plan.PartSize)
		return d.downloadRange(ctx, bucket, key, offset, length, w, agg)
	})
}

// downloadRange fetches [offset, offset+length) and writes it at the same
// offset in w, reporting block-sized progress deltas.
func (d *Downloader) downloadRange(
	ctx context.Context,
	bucket, key string,
	offset, length int64,
	w io.WriterAt,
	agg *transfer.Aggregator,
) error {
	input := &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)),
	}

	output, err := d.s3Client.GetObject(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return errors.NewError("download", errors.ErrObjectNotFound).WithBucket(bucket).WithKey(key)
		}
		return errors.NewError("download", err).WithBucket(bucket).WithKey(key)
	}
	defer output.Body.Close()

	buf := pool.GetBlock()
	defer pool.PutBlock(buf)

	var written int64
	for written < length {
		n, readErr := output.Body.Read(buf)
		if n > 0 {
			if _, writeErr := w.WriteAt(buf[:n], offset+written); writeErr != nil {
				return errors.NewError("download", writeErr).WithBucket(bucket).WithKey(key)
			}
			written += int64(n)
			if agg != nil {
				agg.Report(int64(n))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return errors.NewError("download", readErr).WithBucket(bucket).WithKey(key)
		}
	}

	if written != length {
		return errors.NewError("download", errors.ErrInvalidInput).WithBucket(bucket).WithKey(key).
			WithMessage(fmt.Sprintf("range %d-%d returned %d bytes", offset, offset+length-1, written))
	}
	return nil
}

// progressReader wraps an io.Reader to report read deltas to an aggregator.
type progressReader struct {
	reader io.Reader
	agg    *transfer.Aggregator
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.agg.Report(int64(n))
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}

// isNotFound checks if an error indicates that an object was not found.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "NoSuchKey") || strings.Contains(errStr, "NotFound") ||
		strings.Contains(errStr, "status code: 404")
}
