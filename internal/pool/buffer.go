// Package pool provides reusable transfer block buffers to reduce allocations
// in the digest and download copy loops.
package pool

import (
	"sync"
)

// BlockSize is the fixed read/copy block size used by the digest engine and
// the download copy loop.
const BlockSize = 256 * 1024

var blocks = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, BlockSize)
		return &buf
	},
}

// GetBlock returns a BlockSize-length buffer from the pool.
// The caller is responsible for calling PutBlock to return it.
func GetBlock() []byte {
	bufPtr := blocks.Get().(*[]byte)
	return (*bufPtr)[:BlockSize]
}

// PutBlock returns a buffer obtained from GetBlock to the pool.
// The buffer must not be used after calling PutBlock.
func PutBlock(buf []byte) {
	if cap(buf) < BlockSize {
		return
	}
	buf = buf[:BlockSize]
	blocks.Put(&buf)
}
