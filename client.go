// Package r2index is a client library for R2 object storage paired with a
// file metadata index API.
//
// The package has three layers. Storage moves bytes to and from R2 with
// multipart transfers, checksums, and progress reporting. The index
// subpackage talks to the metadata API that tracks file records and
// download analytics. Client ties the two together into upload and
// download pipelines that keep storage and index in sync.
package r2index

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/elaunira/r2index-go/errors"
	"github.com/elaunira/r2index-go/index"
)

const checkIPURL = "https://checkip.amazonaws.com"

// Client combines the index API client with R2 storage into high-level
// upload and download pipelines.
type Client struct {
	index      *index.Client
	storage    *Storage
	logger     zerolog.Logger
	httpClient *http.Client
	userAgent  string
	checkIPURL string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithClientLogger sets the logger for pipeline operations and propagates
// it to the storage layer.
func WithClientLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
		if c.storage != nil {
			c.storage.logger = logger
		}
	}
}

// WithUserAgent sets the user agent reported when recording downloads.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// New creates a Client from the given configuration.
//
// Storage credentials are optional. When they are absent the client can
// still perform index API operations, and pipeline operations fail with
// ErrStorageNotConfigured.
func New(ctx context.Context, cfg Config, opts ...ClientOption) (*Client, error) {
	client := &Client{
		index:  index.NewClient(cfg.IndexAPIURL, cfg.IndexAPIToken),
		logger: zerolog.Nop(),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent:  DefaultUserAgent,
		checkIPURL: checkIPURL,
	}

	if cfg.HasStorage() {
		storage, err := NewStorage(ctx, R2Config{
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			EndpointURL:     cfg.R2EndpointURL,
		})
		if err != nil {
			return nil, err
		}
		client.storage = storage
	}

	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewWithStorage creates a Client with a prebuilt Storage. This is useful
// for tests and for callers that need custom storage options.
func NewWithStorage(indexClient *index.Client, storage *Storage, opts ...ClientOption) *Client {
	client := &Client{
		index:   indexClient,
		storage: storage,
		logger:  zerolog.Nop(),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent:  DefaultUserAgent,
		checkIPURL: checkIPURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Index returns the underlying index API client.
func (c *Client) Index() *index.Client {
	return c.index
}

// Storage returns the underlying storage layer, or nil when the client was
// built without storage credentials.
func (c *Client) Storage() *Storage {
	return c.storage
}

// requireStorage returns the storage layer or an error when the client has
// no storage credentials.
func (c *Client) requireStorage(op string) (*Storage, error) {
	if c.storage == nil {
		return nil, errors.NewError(op, errors.ErrStorageNotConfigured)
	}
	return c.storage, nil
}

// publicIP fetches the caller's public IP address.
func (c *Client) publicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.checkIPURL, nil)
	if err != nil {
		return "", errors.NewError("download", err).WithMessage("resolve public ip")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.NewError("download", err).WithMessage("resolve public ip")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewError("download", fmt.Errorf("checkip returned status %d", resp.StatusCode)).
			WithMessage("resolve public ip")
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", errors.NewError("download", err).WithMessage("resolve public ip")
	}
	return strings.TrimSpace(string(raw)), nil
}
