package r2types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elaunira/r2index-go/errors"
)

func TestObjectLocationKey(t *testing.T) {
	tests := []struct {
		name     string
		location ObjectLocation
		want     string
	}{
		{
			name: "plain path",
			location: ObjectLocation{
				Bucket:   "releases",
				Path:     "data/files",
				Filename: "app.zip",
				Version:  "v1",
			},
			want: "data/files/v1/app.zip",
		},
		{
			name: "leading and trailing slashes trimmed",
			location: ObjectLocation{
				Bucket:   "releases",
				Path:     "/data/files/",
				Filename: "app.zip",
				Version:  "v2",
			},
			want: "data/files/v2/app.zip",
		},
		{
			name: "single path component",
			location: ObjectLocation{
				Bucket:   "releases",
				Path:     "builds",
				Filename: "app.tar.gz",
				Version:  "2024-01-01",
			},
			want: "builds/2024-01-01/app.tar.gz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.location.Key())
		})
	}
}

func TestParseKey(t *testing.T) {
	location, err := ParseKey("releases", "data/files/v1/app.zip")
	require.NoError(t, err)

	assert.Equal(t, ObjectLocation{
		Bucket:   "releases",
		Path:     "data/files",
		Filename: "app.zip",
		Version:  "v1",
	}, location)
}

func TestParseKeyRoundTrip(t *testing.T) {
	original := ObjectLocation{
		Bucket:   "releases",
		Path:     "a/b/c",
		Filename: "file.bin",
		Version:  "v3",
	}

	parsed, err := ParseKey(original.Bucket, original.Key())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseKeyInvalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty key", ""},
		{"one component", "file.zip"},
		{"two components", "v1/file.zip"},
		{"slashes only", "///"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKey("bucket", tt.key)

			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidLocation)
		})
	}
}
