package index

import "time"

// RemoteTuple identifies a file by its remote coordinates.
type RemoteTuple struct {
	Bucket         string `json:"bucket"`
	RemotePath     string `json:"remote_path"`
	RemoteFilename string `json:"remote_filename"`
	RemoteVersion  string `json:"remote_version"`
}

// FileCreateRequest is the payload for creating or upserting a file record.
type FileCreateRequest struct {
	Bucket         string         `json:"bucket"`
	Category       string         `json:"category"`
	Entity         string         `json:"entity"`
	RemotePath     string         `json:"remote_path"`
	RemoteFilename string         `json:"remote_filename"`
	RemoteVersion  string         `json:"remote_version"`
	Name           string         `json:"name,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
	Size           int64          `json:"size"`
	MD5            string         `json:"md5"`
	SHA1           string         `json:"sha1"`
	SHA256         string         `json:"sha256"`
	SHA512         string         `json:"sha512"`
}

// FileUpdateRequest is the payload for updating a file record. Nil or zero
// fields are omitted from the request body and left unchanged by the API.
type FileUpdateRequest struct {
	Bucket         string         `json:"bucket,omitempty"`
	Category       string         `json:"category,omitempty"`
	Entity         string         `json:"entity,omitempty"`
	RemotePath     string         `json:"remote_path,omitempty"`
	RemoteFilename string         `json:"remote_filename,omitempty"`
	RemoteVersion  string         `json:"remote_version,omitempty"`
	Name           string         `json:"name,omitempty"`
	Tags           []string       `json:"tags,omitempty"`
	Extra          map[string]any `json:"extra,omitempty"`
	Size           *int64         `json:"size,omitempty"`
	MD5            string         `json:"md5,omitempty"`
	SHA1           string         `json:"sha1,omitempty"`
	SHA256         string         `json:"sha256,omitempty"`
	SHA512         string         `json:"sha512,omitempty"`
}

// FileRecord is a file record as returned by the API.
type FileRecord struct {
	ID             string         `json:"id"`
	Bucket         string         `json:"bucket"`
	Category       string         `json:"category"`
	Entity         string         `json:"entity"`
	RemotePath     string         `json:"remote_path"`
	RemoteFilename string         `json:"remote_filename"`
	RemoteVersion  string         `json:"remote_version"`
	Name           string         `json:"name,omitempty"`
	Tags           []string       `json:"tags"`
	Extra          map[string]any `json:"extra,omitempty"`
	Size           int64          `json:"size"`
	MD5            string         `json:"md5"`
	SHA1           string         `json:"sha1"`
	SHA256         string         `json:"sha256"`
	SHA512         string         `json:"sha512"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// FileListResponse is the response for listing files.
type FileListResponse struct {
	Files    []FileRecord `json:"files"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"pageSize"`
}

// DownloadRecordRequest is the payload for recording a download.
type DownloadRecordRequest struct {
	FileID    string `json:"fileId"`
	IPAddress string `json:"ipAddress"`
	UserAgent string `json:"userAgent,omitempty"`
}

// DownloadRecord is a download record as returned by the API.
type DownloadRecord struct {
	ID           string    `json:"id"`
	FileID       string    `json:"fileId"`
	IPAddress    string    `json:"ipAddress"`
	UserAgent    string    `json:"userAgent,omitempty"`
	DownloadedAt time.Time `json:"downloadedAt"`
}

// TimeseriesDataPoint is a single data point in timeseries analytics.
type TimeseriesDataPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
}

// TimeseriesResponse is the response for timeseries analytics.
type TimeseriesResponse struct {
	Data        []TimeseriesDataPoint `json:"data"`
	Start       time.Time             `json:"start"`
	End         time.Time             `json:"end"`
	Granularity string                `json:"granularity"`
}

// SummaryResponse is the response for summary analytics.
type SummaryResponse struct {
	TotalDownloads int       `json:"totalDownloads"`
	UniqueIPs      int       `json:"uniqueIps"`
	UniqueFiles    int       `json:"uniqueFiles"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
}

// DownloadByIPEntry is a single download entry in by-IP analytics.
type DownloadByIPEntry struct {
	FileID       string    `json:"fileId"`
	DownloadedAt time.Time `json:"downloadedAt"`
	UserAgent    string    `json:"userAgent,omitempty"`
}

// DownloadsByIPResponse is the response for downloads by IP analytics.
type DownloadsByIPResponse struct {
	IPAddress string              `json:"ipAddress"`
	Downloads []DownloadByIPEntry `json:"downloads"`
	Total     int                 `json:"total"`
}

// UserAgentEntry is a single user agent entry in analytics.
type UserAgentEntry struct {
	UserAgent string `json:"userAgent"`
	Count     int    `json:"count"`
}

// UserAgentsResponse is the response for user agent analytics.
type UserAgentsResponse struct {
	UserAgents []UserAgentEntry `json:"userAgents"`
	Start      time.Time        `json:"start"`
	End        time.Time        `json:"end"`
}

// CleanupResponse is the response for maintenance cleanup operations.
type CleanupResponse struct {
	DeletedCount int `json:"deletedCount"`
}

// HealthResponse is the response for the health check.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ListFilesOptions holds optional filters for listing files.
type ListFilesOptions struct {
	Bucket     string
	Category   string
	Entity     string
	Extension  string
	MediaType  string
	Tags       []string
	Deprecated *bool
	Limit      int
	Offset     int
}

// AnalyticsOptions holds optional filters for analytics queries.
type AnalyticsOptions struct {
	Bucket         string
	RemotePath     string
	RemoteFilename string
	RemoteVersion  string
	Limit          int
}
