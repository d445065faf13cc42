package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBlock(t *testing.T) {
	buf := GetBlock()
	defer PutBlock(buf)

	assert.Len(t, buf, BlockSize)
}

func TestBlockReuse(t *testing.T) {
	buf := GetBlock()
	buf[0] = 0xFF
	PutBlock(buf)

	// A recycled block must still come back at full length.
	again := GetBlock()
	defer PutBlock(again)
	assert.Len(t, again, BlockSize)
}
