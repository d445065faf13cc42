package r2index

import (
	"runtime"

	"github.com/kelseyhightower/envconfig"
	"github.com/shirou/gopsutil/v4/cpu"

	"github.com/elaunira/r2index-go/errors"
	"github.com/elaunira/r2index-go/internal/transfer"
	"github.com/elaunira/r2index-go/r2types"
)

// Config holds the settings needed to construct a Client. All fields can
// be populated from the environment with FromEnv.
type Config struct {
	// IndexAPIURL is the base URL of the index API.
	IndexAPIURL string `envconfig:"INDEX_API_URL"`

	// IndexAPIToken is the bearer token for index API requests.
	IndexAPIToken string `envconfig:"INDEX_API_TOKEN"`

	// R2AccessKeyID, R2SecretAccessKey, and R2EndpointURL configure object
	// storage access. All three must be set for storage operations; a
	// client built without them can still use the index API.
	R2AccessKeyID     string `envconfig:"R2_ACCESS_KEY_ID"`
	R2SecretAccessKey string `envconfig:"R2_SECRET_ACCESS_KEY"`
	R2EndpointURL     string `envconfig:"R2_ENDPOINT_URL"`
}

// FromEnv loads a Config from R2INDEX_* environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("r2index", &cfg); err != nil {
		return Config{}, errors.NewError("config", err).WithMessage("load environment")
	}
	return cfg, nil
}

// HasStorage reports whether the config carries complete storage
// credentials.
func (c Config) HasStorage() bool {
	return c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" && c.R2EndpointURL != ""
}

// DefaultTransferConfig returns the transfer configuration used when none
// is supplied: 100 MB multipart threshold and part size, concurrency
// scaled to the machine's CPU count, parallel scheduling enabled.
func DefaultTransferConfig() r2types.TransferConfig {
	return r2types.TransferConfig{
		MultipartThreshold: transfer.DefaultMultipartThreshold,
		PartSize:           transfer.DefaultPartSize,
		Concurrency:        transfer.DefaultConcurrency(cpuCount()),
		Parallel:           true,
	}
}

// cpuCount returns the number of logical CPU cores, falling back to the
// runtime's view when the probe fails.
func cpuCount() int {
	count, err := cpu.Counts(true)
	if err != nil || count < 1 {
		return runtime.NumCPU()
	}
	return count
}
