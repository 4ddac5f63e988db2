package fitgate

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config defines client behavior. Instances are configured during
// initialization and treated as immutable after [Builder.Build].
type Config struct {
	// BaseURL is the backend root, including any path prefix, for example
	// "https://api.example.com/api".
	BaseURL string
	// HTTPTimeout bounds each individual round trip, including the nested
	// refresh call and the single retried call. Zero means DefaultTimeout.
	HTTPTimeout time.Duration
	// UserAgent is sent on every request when non-empty.
	UserAgent string

	Storage StorageConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// StorageConfig controls the durable keyring built by [Builder.WithRedis].
// It is ignored when the caller supplies a keyring directly.
type StorageConfig struct {
	// Prefix namespaces the Redis keys. Defaults to "fitgate".
	Prefix string
	// TTL bounds the lifetime of persisted session keys; zero means the
	// keys never expire on their own.
	TTL time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events when the buffer is full instead of blocking
	// the calling goroutine.
	DropIfFull bool
	// DrainTimeout bounds how long Close waits for a slow sink to consume
	// queued events. Zero waits until the queue is empty.
	DrainTimeout time.Duration
}

// MetricsConfig controls the in-process metrics counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultTimeout is applied when Config.HTTPTimeout is zero.
const DefaultTimeout = 15 * time.Second

// DefaultConfig returns the baseline configuration. BaseURL must still be
// set by the caller.
func DefaultConfig() Config {
	return Config{
		HTTPTimeout: DefaultTimeout,
		UserAgent:   "fitgate/1",
		Storage: StorageConfig{
			Prefix: "fitgate",
		},
		Audit: AuditConfig{
			Enabled:      false,
			BufferSize:   256,
			DropIfFull:   true,
			DrainTimeout: 2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values Build would misbehave on.
func (c Config) Validate() error {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		return errors.New("BaseURL is required")
	}
	u, err := url.Parse(base)
	if err != nil {
		return errors.New("BaseURL is not a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("BaseURL must use http or https")
	}
	if u.Host == "" {
		return errors.New("BaseURL must include a host")
	}

	if c.HTTPTimeout < 0 {
		return errors.New("HTTPTimeout must not be negative")
	}
	if c.Storage.TTL < 0 {
		return errors.New("Storage.TTL must not be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must not be negative")
	}
	if c.Audit.DrainTimeout < 0 {
		return errors.New("Audit.DrainTimeout must not be negative")
	}
	return nil
}
