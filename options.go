package r2index

import (
	"github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/rs/zerolog"

	"github.com/elaunira/r2index-go/r2types"
)

// StorageOption configures a Storage.
type StorageOption func(*Storage)

// WithLogger sets the logger used for storage operations. The default
// logger discards everything.
func WithLogger(logger zerolog.Logger) StorageOption {
	return func(s *Storage) {
		s.logger = logger
	}
}

// WithFilesystem sets the filesystem used for local file access. This is
// useful for testing with an in-memory filesystem.
func WithFilesystem(filesystem fs.Filesystem) StorageOption {
	return func(s *Storage) {
		s.fs = filesystem
	}
}

// WithTransferConfig sets the default transfer configuration applied to
// uploads and downloads that do not override it per call.
func WithTransferConfig(cfg r2types.TransferConfig) StorageOption {
	return func(s *Storage) {
		s.transfer = cfg
	}
}

// WithContentType sets an explicit content type for an upload, skipping
// detection.
func WithContentType(contentType string) r2types.UploadOption {
	return func(cfg *r2types.UploadOptionConfig) {
		cfg.ContentType = contentType
	}
}

// WithProgress registers a progress observer for an upload. The observer
// receives the cumulative number of bytes transferred.
func WithProgress(fn r2types.ProgressFunc) r2types.UploadOption {
	return func(cfg *r2types.UploadOptionConfig) {
		cfg.Progress = fn
	}
}

// WithTransfer overrides the transfer configuration for a single upload.
func WithTransfer(transferCfg r2types.TransferConfig) r2types.UploadOption {
	return func(cfg *r2types.UploadOptionConfig) {
		cfg.Transfer = &transferCfg
	}
}

// WithDownloadProgress registers a progress observer for a download. The
// observer receives the cumulative number of bytes transferred.
func WithDownloadProgress(fn r2types.ProgressFunc) r2types.DownloadOption {
	return func(cfg *r2types.DownloadOptionConfig) {
		cfg.Progress = fn
	}
}

// WithDownloadTransfer overrides the transfer configuration for a single
// download.
func WithDownloadTransfer(transferCfg r2types.TransferConfig) r2types.DownloadOption {
	return func(cfg *r2types.DownloadOptionConfig) {
		cfg.Transfer = &transferCfg
	}
}

func applyUploadOptions(opts []r2types.UploadOption) *r2types.UploadOptionConfig {
	cfg := &r2types.UploadOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func applyDownloadOptions(opts []r2types.DownloadOption) *r2types.DownloadOptionConfig {
	cfg := &r2types.DownloadOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
