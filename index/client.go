// Package index provides a client for the file metadata index API.
//
// The index API tracks file records keyed by their remote coordinates
// (bucket, path, filename, version), records downloads for analytics, and
// serves aggregated download statistics. All requests are authenticated
// with a bearer token.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout is the default request timeout for index API calls.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client for the index API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the index API at baseURL, authenticating
// every request with the given bearer token.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client, replacing the default one.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// do executes a request against the API and decodes the JSON response into
// out when out is non-nil. Non-2xx responses are mapped to APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("index: encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("index: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("index: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return newAPIError(resp.StatusCode, errorMessage(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("index: decode response: %w", err)
		}
	}
	return nil
}

// errorMessage extracts the "error" field from an API error body, falling
// back to the raw body text.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}

// ListFiles lists file records matching the given filters.
func (c *Client) ListFiles(ctx context.Context, opts ListFilesOptions) (*FileListResponse, error) {
	query := url.Values{}
	if opts.Bucket != "" {
		query.Set("bucket", opts.Bucket)
	}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}
	if opts.Entity != "" {
		query.Set("entity", opts.Entity)
	}
	if opts.Extension != "" {
		query.Set("extension", opts.Extension)
	}
	if opts.MediaType != "" {
		query.Set("media_type", opts.MediaType)
	}
	if len(opts.Tags) > 0 {
		query.Set("tags", strings.Join(opts.Tags, ","))
	}
	if opts.Deprecated != nil {
		query.Set("deprecated", strconv.FormatBool(*opts.Deprecated))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		query.Set("offset", strconv.Itoa(opts.Offset))
	}

	var result FileListResponse
	if err := c.do(ctx, http.MethodGet, "/files", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateFile creates or upserts a file record.
func (c *Client) CreateFile(ctx context.Context, req FileCreateRequest) (*FileRecord, error) {
	var record FileRecord
	if err := c.do(ctx, http.MethodPost, "/files", nil, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// GetFile fetches a file record by ID.
func (c *Client) GetFile(ctx context.Context, fileID string) (*FileRecord, error) {
	var record FileRecord
	if err := c.do(ctx, http.MethodGet, "/files/"+url.PathEscape(fileID), nil, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateFile updates fields of an existing file record.
func (c *Client) UpdateFile(ctx context.Context, fileID string, req FileUpdateRequest) (*FileRecord, error) {
	var record FileRecord
	if err := c.do(ctx, http.MethodPut, "/files/"+url.PathEscape(fileID), nil, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteFile deletes a file record by ID.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.do(ctx, http.MethodDelete, "/files/"+url.PathEscape(fileID), nil, nil, nil)
}

// GetFileByTuple fetches a file record by its remote coordinates.
func (c *Client) GetFileByTuple(ctx context.Context, tuple RemoteTuple) (*FileRecord, error) {
	query := url.Values{}
	query.Set("bucket", tuple.Bucket)
	query.Set("remote_path", tuple.RemotePath)
	query.Set("remote_filename", tuple.RemoteFilename)
	query.Set("remote_version", tuple.RemoteVersion)

	var record FileRecord
	if err := c.do(ctx, http.MethodGet, "/files/by-tuple", query, nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteFileByTuple deletes a file record by its remote coordinates.
func (c *Client) DeleteFileByTuple(ctx context.Context, tuple RemoteTuple) error {
	return c.do(ctx, http.MethodDelete, "/files", nil, tuple, nil)
}

// FileIndex fetches the nested file index grouped by entity and extension.
func (c *Client) FileIndex(ctx context.Context, opts ListFilesOptions) (map[string]any, error) {
	query := url.Values{}
	if opts.Bucket != "" {
		query.Set("bucket", opts.Bucket)
	}
	if opts.Category != "" {
		query.Set("category", opts.Category)
	}
	if opts.Entity != "" {
		query.Set("entity", opts.Entity)
	}
	if len(opts.Tags) > 0 {
		query.Set("tags", strings.Join(opts.Tags, ","))
	}

	var result map[string]any
	if err := c.do(ctx, http.MethodGet, "/files/index", query, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// RecordDownload records a file download for analytics.
func (c *Client) RecordDownload(ctx context.Context, req DownloadRecordRequest) (*DownloadRecord, error) {
	var record DownloadRecord
	if err := c.do(ctx, http.MethodPost, "/downloads", nil, req, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DownloadTimeseries fetches download counts over time between start and
// end at the given scale (hour, day, or month).
func (c *Client) DownloadTimeseries(ctx context.Context, start, end time.Time, scale string, opts AnalyticsOptions) (*TimeseriesResponse, error) {
	query := analyticsQuery(start, end, opts)
	query.Set("scale", scale)

	var result TimeseriesResponse
	if err := c.do(ctx, http.MethodGet, "/analytics/timeseries", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DownloadSummary fetches aggregated download statistics between start and
// end.
func (c *Client) DownloadSummary(ctx context.Context, start, end time.Time, opts AnalyticsOptions) (*SummaryResponse, error) {
	// The summary endpoint takes no limit.
	opts.Limit = 0
	query := analyticsQuery(start, end, opts)

	var result SummaryResponse
	if err := c.do(ctx, http.MethodGet, "/analytics/summary", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DownloadsByIP fetches download records for a single IP address.
func (c *Client) DownloadsByIP(ctx context.Context, ipAddress string, start, end time.Time, limit, offset int) (*DownloadsByIPResponse, error) {
	query := url.Values{}
	query.Set("ip", ipAddress)
	query.Set("start", strconv.FormatInt(start.Unix(), 10))
	query.Set("end", strconv.FormatInt(end.Unix(), 10))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}

	var result DownloadsByIPResponse
	if err := c.do(ctx, http.MethodGet, "/analytics/by-ip", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UserAgents fetches user agent statistics between start and end.
func (c *Client) UserAgents(ctx context.Context, start, end time.Time, opts AnalyticsOptions) (*UserAgentsResponse, error) {
	query := analyticsQuery(start, end, opts)

	var result UserAgentsResponse
	if err := c.do(ctx, http.MethodGet, "/analytics/user-agents", query, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CleanupDownloads removes expired download records.
func (c *Client) CleanupDownloads(ctx context.Context) (*CleanupResponse, error) {
	var result CleanupResponse
	if err := c.do(ctx, http.MethodPost, "/maintenance/cleanup-downloads", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Health checks the index API health endpoint.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var result HealthResponse
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func analyticsQuery(start, end time.Time, opts AnalyticsOptions) url.Values {
	query := url.Values{}
	query.Set("start", strconv.FormatInt(start.Unix(), 10))
	query.Set("end", strconv.FormatInt(end.Unix(), 10))
	if opts.Bucket != "" {
		query.Set("bucket", opts.Bucket)
	}
	if opts.RemotePath != "" {
		query.Set("remote_path", opts.RemotePath)
	}
	if opts.RemoteFilename != "" {
		query.Set("remote_filename", opts.RemoteFilename)
	}
	if opts.RemoteVersion != "" {
		query.Set("remote_version", opts.RemoteVersion)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	return query
}
