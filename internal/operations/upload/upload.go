// Package upload handles object upload operations against the remote store.
//
// Single-part uploads are one PutObject call. Multipart uploads follow the
// initiate / per-part upload / complete sequence, with parts scheduled by a
// transfer.Engine and per-part completions reported to the caller's progress
// aggregator. A failed multipart upload is aborted before the error is
// returned.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/elaunira/r2index-go/errors"
	"github.com/elaunira/r2index-go/internal/s3api"
	"github.com/elaunira/r2index-go/internal/transfer"
)

// Uploader performs uploads through the s3api interface.
type Uploader struct {
	s3Client s3api.S3API
}

// New creates a new Uploader instance.
func New(s3Client s3api.S3API) *Uploader {
	return &Uploader{
		s3Client: s3Client,
	}
}

// PutBytes uploads data in a single PutObject call. It is used for small
// payloads such as checksum sidecar files.
func (u *Uploader) PutBytes(
	ctx context.Context,
	bucket, key string,
	data []byte,
	contentType string,
	agg *transfer.Aggregator,
) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.s3Client.PutObject(ctx, input); err != nil {
		return errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}

	if agg != nil {
		agg.Report(int64(len(data)))
	}
	return nil
}

// Upload transfers size bytes from src to bucket/key according to plan.
// Single-part plans issue one PutObject; multipart plans run the initiate /
// upload-part / complete sequence with parts scheduled by eng. Each
// completed chunk (or the whole transfer, for single-part) is reported to
// agg as a byte delta.
func (u *Uploader) Upload(
	ctx context.Context,
	bucket, key string,
	src io.ReaderAt,
	size int64,
	contentType string,
	plan transfer.Plan,
	eng transfer.Engine,
	agg *transfer.Aggregator,
) error {
	if !plan.Multipart {
		return u.uploadSingle(ctx, bucket, key, src, size, contentType, agg)
	}
	return u.uploadMultipart(ctx, bucket, key, src, size, contentType, plan, eng, agg)
}

// uploadSingle performs a single-part upload of the full range of src.
func (u *Uploader) uploadSingle(
	ctx context.Context,
	bucket, key string,
	src io.ReaderAt,
	size int64,
	contentType string,
	agg *transfer.Aggregator,
) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          io.NewSectionReader(src, 0, size),
		ContentLength: aws.Int64(size),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := u.s3Client.PutObject(ctx, input); err != nil {
		return errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}

	if agg != nil {
		agg.Report(size)
	}
	return nil
}

// uploadMultipart splits src into plan.PartSize ranges and uploads them
// through eng. Part ETags land in a preallocated slice, one slot per part,
// so workers share no mutable state beyond the progress aggregator.
func (u *Uploader) uploadMultipart(
	ctx context.Context,
	bucket, key string,
	src io.ReaderAt,
	size int64,
	contentType string,
	plan transfer.Plan,
	eng transfer.Engine,
	agg *transfer.Aggregator,
) error {
	createInput := &s3.CreateMultipartUploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		createInput.ContentType = aws.String(contentType)
	}

	createOutput, err := u.s3Client.CreateMultipartUpload(ctx, createInput)
	if err != nil {
		return errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}
	uploadID := aws.ToString(createOutput.UploadId)

	numParts := transfer.PartCount(size, plan.PartSize)
	parts := make([]awstypes.CompletedPart, numParts)

	err = eng.Run(ctx, numParts, func(ctx context.Context, part int) error {
		offset, length := transfer.PartRange(part, size, plan.PartSize)
		partNumber := int32(part + 1) //nolint:gosec // part counts stay far below int32 range

		partInput := &s3.UploadPartInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			UploadId:      aws.String(uploadID),
			PartNumber:    aws.Int32(partNumber),
			Body:          io.NewSectionReader(src, offset, length),
			ContentLength: aws.Int64(length),
		}

		partOutput, err := u.s3Client.UploadPart(ctx, partInput)
		if err != nil {
			return errors.NewError("uploadPart", err).WithBucket(bucket).WithKey(key).
				WithMessage(fmt.Sprintf("part %d", partNumber))
		}

		parts[part] = awstypes.CompletedPart{
			ETag:       partOutput.ETag,
			PartNumber: aws.Int32(partNumber),
		}
		if agg != nil {
			agg.Report(length)
		}
		return nil
	})
	if err != nil {
		u.abortMultipartUpload(ctx, bucket, key, uploadID)
		return err
	}

	completeInput := &s3.CompleteMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
		MultipartUpload: &awstypes.CompletedMultipartUpload{
			Parts: parts,
		},
	}

	if _, err := u.s3Client.CompleteMultipartUpload(ctx, completeInput); err != nil {
		u.abortMultipartUpload(ctx, bucket, key, uploadID)
		return errors.NewError("upload", err).WithBucket(bucket).WithKey(key)
	}

	return nil
}

// abortMultipartUpload cleans up a failed multipart upload.
func (u *Uploader) abortMultipartUpload(ctx context.Context, bucket, key, uploadID string) {
	abortInput := &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	}
	// Ignore errors during cleanup
	_, _ = u.s3Client.AbortMultipartUpload(ctx, abortInput)
}
