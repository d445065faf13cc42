package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/elaunira/r2index-go/r2types"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name            string
		size            int64
		cfg             r2types.TransferConfig
		wantMultipart   bool
		wantPartSize    int64
		wantConcurrency int
	}{
		{
			name:          "below threshold is single",
			size:          DefaultMultipartThreshold - 1,
			cfg:           r2types.TransferConfig{MultipartThreshold: DefaultMultipartThreshold},
			wantMultipart: false,
		},
		{
			name:            "at threshold is multipart",
			size:            DefaultMultipartThreshold,
			cfg:             r2types.TransferConfig{MultipartThreshold: DefaultMultipartThreshold, PartSize: DefaultPartSize, Concurrency: 8},
			wantMultipart:   true,
			wantPartSize:    DefaultPartSize,
			wantConcurrency: 8,
		},
		{
			name:            "zero threshold forces multipart for any size",
			size:            1,
			cfg:             r2types.TransferConfig{MultipartThreshold: 0, PartSize: 1024, Concurrency: 2},
			wantMultipart:   true,
			wantPartSize:    1024,
			wantConcurrency: 2,
		},
		{
			name:            "zero threshold forces multipart for empty content",
			size:            0,
			cfg:             r2types.TransferConfig{MultipartThreshold: 0, PartSize: 1024, Concurrency: 2},
			wantMultipart:   true,
			wantPartSize:    1024,
			wantConcurrency: 2,
		},
		{
			name:            "part size defaulted when unset",
			size:            DefaultMultipartThreshold,
			cfg:             r2types.TransferConfig{MultipartThreshold: DefaultMultipartThreshold, Concurrency: 4},
			wantMultipart:   true,
			wantPartSize:    DefaultPartSize,
			wantConcurrency: 4,
		},
		{
			name:            "concurrency clamped to one",
			size:            DefaultMultipartThreshold,
			cfg:             r2types.TransferConfig{MultipartThreshold: DefaultMultipartThreshold, PartSize: DefaultPartSize},
			wantMultipart:   true,
			wantPartSize:    DefaultPartSize,
			wantConcurrency: 1,
		},
		{
			name:          "threshold above size is single",
			size:          100,
			cfg:           r2types.TransferConfig{MultipartThreshold: 1 << 30},
			wantMultipart: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Decide(tt.size, tt.cfg)

			assert.Equal(t, tt.wantMultipart, plan.Multipart)
			if tt.wantMultipart {
				assert.Equal(t, tt.wantPartSize, plan.PartSize)
				assert.Equal(t, tt.wantConcurrency, plan.Concurrency)
			}
		})
	}
}

func TestPartCount(t *testing.T) {
	tests := []struct {
		name     string
		size     int64
		partSize int64
		want     int
	}{
		{"empty content still has one part", 0, 1024, 1},
		{"exact multiple", 4096, 1024, 4},
		{"remainder adds a part", 4097, 1024, 5},
		{"single short part", 100, 1024, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PartCount(tt.size, tt.partSize))
		})
	}
}

func TestPartRange(t *testing.T) {
	const size = 2500
	const partSize = 1000

	offset, length := PartRange(0, size, partSize)
	assert.Equal(t, int64(0), offset)
	assert.Equal(t, int64(1000), length)

	offset, length = PartRange(1, size, partSize)
	assert.Equal(t, int64(1000), offset)
	assert.Equal(t, int64(1000), length)

	offset, length = PartRange(2, size, partSize)
	assert.Equal(t, int64(2000), offset)
	assert.Equal(t, int64(500), length)
}

func TestPartRangesCoverContent(t *testing.T) {
	sizes := []int64{1, 999, 1000, 1001, 2500, 10000}
	const partSize = 1000

	for _, size := range sizes {
		var covered int64
		count := PartCount(size, partSize)
		for part := 0; part < count; part++ {
			offset, length := PartRange(part, size, partSize)
			assert.Equal(t, covered, offset)
			covered += length
		}
		assert.Equal(t, size, covered)
	}
}

func TestDefaultConcurrency(t *testing.T) {
	tests := []struct {
		cores int
		want  int
	}{
		{1, 4},
		{2, 4},
		{4, 8},
		{8, 16},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultConcurrency(tt.cores))
	}
}
