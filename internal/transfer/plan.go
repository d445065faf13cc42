// Package transfer holds the scheduling-agnostic pieces of the transfer
// pipeline: the single-part/multipart decision, the progress aggregator,
// and the two part-scheduling engines.
package transfer

import (
	"github.com/elaunira/r2index-go/r2types"
)

const (
	// DefaultMultipartThreshold is the size at or above which transfers
	// are split into parts (100MB).
	DefaultMultipartThreshold = 100 * 1024 * 1024

	// DefaultPartSize is the default size of each part in a multipart
	// transfer (100MB).
	DefaultPartSize = 100 * 1024 * 1024

	// minConcurrency is the floor for the derived default worker count.
	minConcurrency = 4
)

// Plan is the outcome of the transfer policy decision. The zero value is a
// single-part plan; a multipart plan carries the part size and worker count
// to use.
type Plan struct {
	// Multipart selects chunked transfer when true
	Multipart bool

	// PartSize is the chunk size in bytes (multipart only)
	PartSize int64

	// Concurrency is the worker count, always >= 1 (multipart only)
	Concurrency int
}

// Decide chooses between single-part and multipart transfer for a payload of
// the given size. It performs no I/O. A size at or above the configured
// threshold selects multipart; a threshold of zero therefore selects
// multipart for every size, including zero.
func Decide(size int64, cfg r2types.TransferConfig) Plan {
	if size < cfg.MultipartThreshold {
		return Plan{}
	}

	partSize := cfg.PartSize
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return Plan{
		Multipart:   true,
		PartSize:    partSize,
		Concurrency: concurrency,
	}
}

// PartCount returns the number of parts needed to cover size bytes at the
// given part size. An empty payload still occupies one (empty) part.
func PartCount(size, partSize int64) int {
	if size <= 0 {
		return 1
	}
	return int((size + partSize - 1) / partSize)
}

// PartRange returns the byte offset and length of the given part index.
// The last part may be shorter than partSize.
func PartRange(part int, size, partSize int64) (offset, length int64) {
	offset = int64(part) * partSize
	length = partSize
	if offset+length > size {
		length = size - offset
	}
	if length < 0 {
		length = 0
	}
	return offset, length
}

// DefaultConcurrency derives the default multipart worker count from the
// machine's core count: twice the cores, never fewer than four. The core
// count is a parameter so callers (and tests) control where it comes from.
func DefaultConcurrency(cores int) int {
	if n := 2 * cores; n > minConcurrency {
		return n
	}
	return minConcurrency
}
