// Package checksum computes message digests of file content in a single
// streaming pass.
//
// Four digests (MD5, SHA-1, SHA-256, SHA-512) plus the total byte count are
// produced from one read of the source; the content is never re-read and
// never held wholly in memory. Two variants are provided: SumReader blocks
// until the source is exhausted, while SumReaderContext additionally checks
// the context between read blocks so it can be driven cooperatively. Both
// produce identical results for identical input.
package checksum

import (
	"context"
	"crypto/md5"  //nolint:gosec // MD5 is used as a content fingerprint, not for security
	"crypto/sha1" //nolint:gosec // SHA-1 is used as a content fingerprint, not for security
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/elaunira/r2index-go/internal/pool"
)

// Digest holds the size and hex-encoded digests of a byte stream. A Digest
// is only ever produced from a complete read of the source; a read failure
// yields no Digest at all.
type Digest struct {
	// Size is the number of bytes read from the source
	Size int64

	// MD5 is the lowercase hex MD5 digest
	MD5 string

	// SHA1 is the lowercase hex SHA-1 digest
	SHA1 string

	// SHA256 is the lowercase hex SHA-256 digest
	SHA256 string

	// SHA512 is the lowercase hex SHA-512 digest
	SHA512 string
}

// hashSet bundles the four running digest accumulators for one pass.
type hashSet struct {
	md5    hash.Hash
	sha1   hash.Hash
	sha256 hash.Hash
	sha512 hash.Hash
}

func newHashSet() *hashSet {
	return &hashSet{
		md5:    md5.New(),  //nolint:gosec // content fingerprint
		sha1:   sha1.New(), //nolint:gosec // content fingerprint
		sha256: sha256.New(),
		sha512: sha512.New(),
	}
}

func (h *hashSet) digest(size int64) *Digest {
	return &Digest{
		Size:   size,
		MD5:    hex.EncodeToString(h.md5.Sum(nil)),
		SHA1:   hex.EncodeToString(h.sha1.Sum(nil)),
		SHA256: hex.EncodeToString(h.sha256.Sum(nil)),
		SHA512: hex.EncodeToString(h.sha512.Sum(nil)),
	}
}

// SumReader reads r to EOF and returns the digests of everything read.
// The source is read in fixed-size blocks, so arbitrarily large inputs are
// digested in constant memory.
func SumReader(r io.Reader) (*Digest, error) {
	hs := newHashSet()
	buf := pool.GetBlock()
	defer pool.PutBlock(buf)

	size, err := io.CopyBuffer(io.MultiWriter(hs.md5, hs.sha1, hs.sha256, hs.sha512), r, buf)
	if err != nil {
		return nil, err
	}
	return hs.digest(size), nil
}

// SumReaderContext behaves exactly like SumReader but checks ctx between
// read blocks, returning the context's error if it is cancelled before the
// source is exhausted. For any input it returns the same Digest as SumReader.
func SumReaderContext(ctx context.Context, r io.Reader) (*Digest, error) {
	hs := newHashSet()
	mw := io.MultiWriter(hs.md5, hs.sha1, hs.sha256, hs.sha512)
	buf := pool.GetBlock()
	defer pool.PutBlock(buf)

	var size int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := r.Read(buf)
		if n > 0 {
			// Hash writers never fail.
			_, _ = mw.Write(buf[:n])
			size += int64(n)
		}
		if err == io.EOF {
			return hs.digest(size), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// SumFile opens path on fsys and digests its content. The file error is
// returned as-is when the file cannot be opened or read.
func SumFile(fsys fs.Filesystem, path string) (*Digest, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return SumReader(f)
}

// SumFileContext is the cooperative counterpart of SumFile.
func SumFileContext(ctx context.Context, fsys fs.Filesystem, path string) (*Digest, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return SumReaderContext(ctx, f)
}
