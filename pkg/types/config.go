package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "notion-math/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// DefaultNotionVersion is the API version marker sent on every request.
const DefaultNotionVersion = "2022-06-28"

// DefaultNotionBaseURL is the API root.
const DefaultNotionBaseURL = "https://api.notion.com"

// NotionConfig is the immutable transport configuration: credential,
// version marker, and endpoint. It is built once at startup.
type NotionConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the integration secret sent as a bearer credential.
	APIKey string `json:"-" yaml:"-"`

	// Version is the Notion-Version header value (default 2022-06-28).
	Version string `json:"version" yaml:"version"`

	// BaseURL is the API root (default https://api.notion.com).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// PageSize is the page_size query parameter for children listings (default 100).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// FetchConfig holds settings for tree retrieval.
type FetchConfig struct {
	// MaxRetries is the number of attempts per page request (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxDepth bounds recursion into nested children (default 32).
	MaxDepth int `json:"max_depth" yaml:"max_depth"`

	// RetryUnit is the backoff time unit; the delay after attempt n is
	// min(2n, 5) units (default 1s).
	RetryUnit time.Duration `json:"retry_unit" yaml:"retry_unit"`
}

// PublishConfig holds settings for batched write-back.
type PublishConfig struct {
	// BatchSize is the number of blocks per append request (default 10, max 100).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// BatchDelay is the pause between consecutive append requests (default 0).
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay"`
}

// SnapshotConfig holds settings for the local snapshot store.
type SnapshotConfig struct {
	// Dir is the base directory for snapshots (contains index/, exports/).
	Dir string `json:"dir" yaml:"dir"`
}

// Config groups all component configurations.
type Config struct {
	Notion   NotionConfig   `json:"notion" yaml:"notion"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch"`
	Publish  PublishConfig  `json:"publish" yaml:"publish"`
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`
}
