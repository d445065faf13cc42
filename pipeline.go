package r2index

import (
	"context"

	"github.com/elaunira/r2index-go/checksum"
	"github.com/elaunira/r2index-go/errors"
	"github.com/elaunira/r2index-go/index"
	"github.com/elaunira/r2index-go/r2types"
)

// checksumExtensions lists the sidecar file suffixes uploaded alongside an
// object when checksum files are requested.
var checksumExtensions = []string{"md5", "sha1", "sha256", "sha512"}

// UploadRequest describes a full upload pipeline run.
type UploadRequest struct {
	// Bucket is the R2 bucket to upload into.
	Bucket string

	// Source is the local path of the file to upload.
	Source string

	// Category and Entity classify the file record in the index.
	Category string
	Entity   string

	// DestinationPath, DestinationFilename, and DestinationVersion form
	// the object key "<path>/<version>/<filename>".
	DestinationPath     string
	DestinationFilename string
	DestinationVersion  string

	// Name is an optional display name for the record.
	Name string

	// Tags and Extra carry optional record metadata.
	Tags  []string
	Extra map[string]any

	// ContentType overrides content type detection when set.
	ContentType string

	// Progress receives cumulative transferred byte counts.
	Progress r2types.ProgressFunc

	// Transfer overrides the storage transfer configuration when set.
	Transfer *r2types.TransferConfig

	// CreateChecksumFiles uploads "<key>.md5", "<key>.sha1", "<key>.sha256",
	// and "<key>.sha512" sidecar files next to the object.
	CreateChecksumFiles bool
}

// DownloadRequest describes a full download pipeline run.
type DownloadRequest struct {
	// Bucket is the R2 bucket to download from.
	Bucket string

	// SourcePath, SourceFilename, and SourceVersion identify the object
	// and its index record.
	SourcePath     string
	SourceFilename string
	SourceVersion  string

	// Destination is the local path the file is written to.
	Destination string

	// IPAddress is recorded with the download. When empty it is resolved
	// from checkip.amazonaws.com.
	IPAddress string

	// UserAgent is recorded with the download. Defaults to the client's
	// user agent.
	UserAgent string

	// Progress receives cumulative transferred byte counts.
	Progress r2types.ProgressFunc

	// Transfer overrides the storage transfer configuration when set.
	Transfer *r2types.TransferConfig

	// VerifyChecksum recomputes the SHA-256 digest after download and
	// compares it against the index record.
	VerifyChecksum bool
}

// Upload runs the full upload pipeline: compute checksums, upload the file
// to R2, optionally upload checksum sidecar files, and register the file
// with the index API.
//
// The steps are not transactional. A failure after the object was uploaded
// leaves the object in R2 without an index record; rerunning the upload
// overwrites the object and upserts the record.
func (c *Client) Upload(ctx context.Context, req UploadRequest) (*index.FileRecord, error) {
	const op = "upload"

	storage, err := c.requireStorage(op)
	if err != nil {
		return nil, err
	}

	digest, err := checksum.SumFileContext(ctx, storage.fs, req.Source)
	if err != nil {
		return nil, errors.NewError(op, err).WithBucket(req.Bucket).
			WithMessage("checksum source: " + req.Source)
	}

	location := r2types.ObjectLocation{
		Bucket:   req.Bucket,
		Path:     req.DestinationPath,
		Filename: req.DestinationFilename,
		Version:  req.DestinationVersion,
	}

	uploadOpts := []r2types.UploadOption{}
	if req.ContentType != "" {
		uploadOpts = append(uploadOpts, WithContentType(req.ContentType))
	}
	if req.Progress != nil {
		uploadOpts = append(uploadOpts, WithProgress(req.Progress))
	}
	if req.Transfer != nil {
		uploadOpts = append(uploadOpts, WithTransfer(*req.Transfer))
	}

	key, err := storage.UploadFile(ctx, req.Source, req.Bucket, location.Key(), uploadOpts...)
	if err != nil {
		return nil, err
	}

	if req.CreateChecksumFiles {
		if err := c.uploadChecksumFiles(ctx, storage, req.Bucket, key, req.DestinationFilename, digest); err != nil {
			return nil, err
		}
	}

	record, err := c.index.CreateFile(ctx, index.FileCreateRequest{
		Bucket:         req.Bucket,
		Category:       req.Category,
		Entity:         req.Entity,
		RemotePath:     req.DestinationPath,
		RemoteFilename: req.DestinationFilename,
		RemoteVersion:  req.DestinationVersion,
		Name:           req.Name,
		Tags:           req.Tags,
		Extra:          req.Extra,
		Size:           digest.Size,
		MD5:            digest.MD5,
		SHA1:           digest.SHA1,
		SHA256:         digest.SHA256,
		SHA512:         digest.SHA512,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("bucket", req.Bucket).
		Str("key", key).
		Str("file_id", record.ID).
		Int64("size", digest.Size).
		Msg("upload pipeline complete")

	return record, nil
}

// uploadChecksumFiles uploads one "<hex>  <filename>\n" sidecar per digest
// algorithm, in the format produced by md5sum and shasum.
func (c *Client) uploadChecksumFiles(ctx context.Context, storage *Storage, bucket, key, filename string, digest *checksum.Digest) error {
	values := map[string]string{
		"md5":    digest.MD5,
		"sha1":   digest.SHA1,
		"sha256": digest.SHA256,
		"sha512": digest.SHA512,
	}

	for _, ext := range checksumExtensions {
		sidecarKey := key + "." + ext
		content := []byte(values[ext] + "  " + filename + "\n")
		if err := storage.UploadBytes(ctx, content, bucket, sidecarKey, WithContentType("text/plain")); err != nil {
			return err
		}
	}
	return nil
}

// Download runs the full download pipeline: look up the file record by its
// remote coordinates, download the object, optionally verify its SHA-256
// digest, and record the download for analytics.
//
// A checksum mismatch returns the error and leaves the downloaded file in
// place for inspection. A failure to record the download also leaves the
// file in place.
func (c *Client) Download(ctx context.Context, req DownloadRequest) (*index.FileRecord, error) {
	const op = "download"

	storage, err := c.requireStorage(op)
	if err != nil {
		return nil, err
	}

	ipAddress := req.IPAddress
	if ipAddress == "" {
		ipAddress, err = c.publicIP(ctx)
		if err != nil {
			return nil, err
		}
	}

	record, err := c.index.GetFileByTuple(ctx, index.RemoteTuple{
		Bucket:         req.Bucket,
		RemotePath:     req.SourcePath,
		RemoteFilename: req.SourceFilename,
		RemoteVersion:  req.SourceVersion,
	})
	if err != nil {
		return nil, err
	}

	location := r2types.ObjectLocation{
		Bucket:   req.Bucket,
		Path:     req.SourcePath,
		Filename: req.SourceFilename,
		Version:  req.SourceVersion,
	}
	key := location.Key()

	downloadOpts := []r2types.DownloadOption{}
	if req.Progress != nil {
		downloadOpts = append(downloadOpts, WithDownloadProgress(req.Progress))
	}
	if req.Transfer != nil {
		downloadOpts = append(downloadOpts, WithDownloadTransfer(*req.Transfer))
	}

	if err := storage.DownloadFile(ctx, req.Bucket, key, req.Destination, downloadOpts...); err != nil {
		return nil, err
	}

	if req.VerifyChecksum {
		if err := VerifyChecksum(ctx, storage.fs, req.Destination, record.SHA256); err != nil {
			return nil, err
		}
	}

	userAgent := req.UserAgent
	if userAgent == "" {
		userAgent = c.userAgent
	}

	if _, err := c.index.RecordDownload(ctx, index.DownloadRecordRequest{
		FileID:    record.ID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("bucket", req.Bucket).
		Str("key", key).
		Str("file_id", record.ID).
		Msg("download pipeline complete")

	return record, nil
}

// DeleteRemote removes the object at "<path>/<version>/<filename>" from R2.
// When deleteChecksumFiles is set, the checksum sidecar files are removed
// as well; sidecars that do not exist are skipped without error.
//
// The index record is not touched. Use the index client to delete or
// deprecate the record separately.
func (c *Client) DeleteRemote(ctx context.Context, bucket, path, filename, version string, deleteChecksumFiles bool) error {
	const op = "delete"

	storage, err := c.requireStorage(op)
	if err != nil {
		return err
	}

	location := r2types.ObjectLocation{
		Bucket:   bucket,
		Path:     path,
		Filename: filename,
		Version:  version,
	}
	key := location.Key()

	if err := storage.Delete(ctx, bucket, key); err != nil {
		return err
	}

	if deleteChecksumFiles {
		for _, ext := range checksumExtensions {
			if err := storage.Delete(ctx, bucket, key+"."+ext); err != nil {
				// Sidecars are best effort; the file may not have them.
				c.logger.Debug().Str("key", key+"."+ext).Err(err).Msg("skipping checksum sidecar delete")
			}
		}
	}
	return nil
}
