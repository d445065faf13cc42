// Package errors provides error types and handling for r2index storage operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a storage operation error with context about the operation
// that failed. It wraps the underlying cause with enough information (operation
// kind, bucket, object key) to diagnose transport failures.
type Error struct {
	// Op is the operation that failed (e.g., "upload", "download", "delete")
	Op string

	// Bucket is the bucket name (if applicable)
	Bucket string

	// Key is the object key (if applicable)
	Key string

	// Err is the underlying error from the AWS SDK or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("r2index.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("r2index.%s bucket %s: %v", e.Op, e.Bucket, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("r2index.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("r2index.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithBucket adds bucket context to an existing error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// Sentinel errors for common failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrSourceNotFound indicates that the local source file for an upload
	// does not exist. It is reported before any network call is attempted.
	ErrSourceNotFound = errors.New("r2index: source file not found")

	// ErrObjectNotFound indicates that the requested remote object does not exist
	ErrObjectNotFound = errors.New("r2index: object not found")

	// ErrInvalidLocation indicates a malformed object location, e.g. an
	// object key with too few path components
	ErrInvalidLocation = errors.New("r2index: invalid object location")

	// ErrInvalidInput indicates that the provided input is invalid
	ErrInvalidInput = errors.New("r2index: invalid input")

	// ErrInvalidObjectKey indicates that the object key is invalid
	ErrInvalidObjectKey = errors.New("r2index: invalid object key")

	// ErrInvalidBucketName indicates that the bucket name is invalid
	ErrInvalidBucketName = errors.New("r2index: invalid bucket name")

	// ErrChecksumMismatch indicates that a downloaded object's digest does
	// not match the digest recorded at upload time
	ErrChecksumMismatch = errors.New("r2index: checksum mismatch")

	// ErrStorageNotConfigured indicates that storage credentials were not
	// provided, so transfer operations are unavailable
	ErrStorageNotConfigured = errors.New("r2index: storage not configured")
)

// ChecksumError reports a post-download verification failure. It carries both
// the expected digest (recorded at upload time) and the digest actually
// computed over the downloaded content.
type ChecksumError struct {
	// Algorithm is the digest algorithm that mismatched (e.g., "sha256")
	Algorithm string

	// Expected is the hex digest recorded for the object
	Expected string

	// Actual is the hex digest computed from the downloaded content
	Actual string
}

// Error implements the error interface.
func (e *ChecksumError) Error() string {
	return fmt.Sprintf("r2index: %s checksum mismatch: expected %s, got %s",
		e.Algorithm, e.Expected, e.Actual)
}

// Is reports whether target is ErrChecksumMismatch, so callers can use
// errors.Is(err, ErrChecksumMismatch) without asserting the concrete type.
func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// IsObjectNotFound checks if an error indicates that a remote object was not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsSourceNotFound checks if an error indicates a missing local source file.
func IsSourceNotFound(err error) bool {
	return errors.Is(err, ErrSourceNotFound)
}

// IsChecksumMismatch checks if an error indicates a digest verification failure.
func IsChecksumMismatch(err error) bool {
	return errors.Is(err, ErrChecksumMismatch)
}

// IsInvalidInput checks if an error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
