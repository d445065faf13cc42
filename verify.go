package r2index

import (
	"context"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/elaunira/r2index-go/checksum"
	"github.com/elaunira/r2index-go/errors"
)

// VerifyChecksum recomputes the SHA-256 digest of the file at path and
// compares it to expectedSHA256.
//
// Returns a *errors.ChecksumError carrying both digests when they differ.
// The error matches errors.ErrChecksumMismatch with errors.Is. An empty
// expected digest skips verification.
func VerifyChecksum(ctx context.Context, fsys fs.Filesystem, path, expectedSHA256 string) error {
	if expectedSHA256 == "" {
		return nil
	}

	digest, err := checksum.SumFileContext(ctx, fsys, path)
	if err != nil {
		return err
	}

	if digest.SHA256 != expectedSHA256 {
		return &errors.ChecksumError{
			Algorithm: "sha256",
			Expected:  expectedSHA256,
			Actual:    digest.SHA256,
		}
	}
	return nil
}
