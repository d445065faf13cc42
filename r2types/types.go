// Package r2types provides shared type definitions for the r2index module.
package r2types

import (
	"strings"

	"github.com/elaunira/r2index-go/errors"
)

// ProgressFunc is a progress observer invoked with the cumulative number of
// bytes transferred so far. It is called zero or more times per transfer;
// on success the last reported value equals the total bytes transferred.
// The sequence of reported values is non-decreasing, even when chunk
// transfers complete concurrently.
type ProgressFunc func(bytesTransferred int64)

// TransferConfig holds configuration for transfer operations (uploads and
// downloads). The zero value is not useful; obtain defaults from
// r2index.DefaultTransferConfig.
type TransferConfig struct {
	// MultipartThreshold is the size in bytes at or above which a transfer
	// is split into parts. A threshold of zero makes every transfer
	// multipart, including empty files.
	MultipartThreshold int64

	// PartSize is the size in bytes of each part in a multipart transfer.
	PartSize int64

	// Concurrency is the number of parallel workers for multipart
	// transfers. Values below one are clamped to one.
	Concurrency int

	// Parallel selects the worker-pool scheduling model for multipart
	// transfers. When false, parts are transferred one at a time on the
	// calling goroutine; the transferred bytes and progress totals are
	// identical either way.
	Parallel bool
}

// ObjectLocation identifies an object in remote storage by bucket, path,
// filename, and version. The storage key is derived deterministically by
// joining path, version, and filename.
type ObjectLocation struct {
	// Bucket is the storage bucket name
	Bucket string

	// Path is the directory-like prefix under the bucket (e.g., "/releases/app")
	Path string

	// Filename is the object's filename (e.g., "app.zip")
	Filename string

	// Version is the version identifier segment (e.g., "v1")
	Version string
}

// Key derives the storage key for the location: "<path>/<version>/<filename>"
// with any leading or trailing slashes on the path trimmed.
func (l ObjectLocation) Key() string {
	return strings.Trim(l.Path, "/") + "/" + l.Version + "/" + l.Filename
}

// ParseKey decomposes a storage key produced by ObjectLocation.Key back into
// an ObjectLocation. The last two components are the version and filename;
// everything before them is the path. Keys with fewer than three components
// cannot carry all three fields and yield ErrInvalidLocation.
func ParseKey(bucket, key string) (ObjectLocation, error) {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	if len(parts) < 3 || parts[0] == "" {
		return ObjectLocation{}, errors.NewError("parseKey", errors.ErrInvalidLocation).
			WithBucket(bucket).
			WithKey(key).
			WithMessage("key must have at least path, version, and filename components")
	}
	return ObjectLocation{
		Bucket:   bucket,
		Path:     strings.Join(parts[:len(parts)-2], "/"),
		Version:  parts[len(parts)-2],
		Filename: parts[len(parts)-1],
	}, nil
}

// UploadOptionConfig holds configuration for upload operations via functional options.
type UploadOptionConfig struct {
	ContentType string
	Progress    ProgressFunc
	Transfer    *TransferConfig
}

// DownloadOptionConfig holds configuration for download operations via functional options.
type DownloadOptionConfig struct {
	Progress ProgressFunc
	Transfer *TransferConfig
}

// UploadOption is a functional option for configuring upload operations.
type UploadOption func(*UploadOptionConfig)

// DownloadOption is a functional option for configuring download operations.
type DownloadOption func(*DownloadOptionConfig)
