package fitgate

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/fittrack/fitgate/internal/audit"
	"github.com/fittrack/fitgate/session"
)

// Builder assembles a [Client]. A Builder is single-use: Build can be called
// once.
type Builder struct {
	config     Config
	httpClient *http.Client
	keyring    session.Keyring
	redis      *redis.Client
	auditSink  AuditSink
	warn       func(string, ...any)

	built bool
}

// New creates a Builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL sets the backend root URL.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.BaseURL = baseURL
	return b
}

// WithHTTPClient supplies the transport. By default Build creates an
// http.Client with Config.HTTPTimeout.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithKeyring supplies the durable session storage. Takes precedence over
// WithRedis.
func (b *Builder) WithKeyring(ring session.Keyring) *Builder {
	b.keyring = ring
	return b
}

// WithRedis stores the session in Redis under Config.Storage.Prefix.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink enables audit dispatch into the given sink.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithWarn replaces the default standard-logger warning output.
func (b *Builder) WithWarn(warn func(string, ...any)) *Builder {
	b.warn = warn
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and produces the Client. The session is
// not restored automatically; call [Client.Restore] at startup.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, err
	}

	httpClient := b.httpClient
	if httpClient == nil {
		timeout := cfg.HTTPTimeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	ring := b.keyring
	if ring == nil && b.redis != nil {
		ring = session.NewRedisKeyring(b.redis, cfg.Storage.Prefix, cfg.Storage.TTL)
	}

	var dispatcher *internalaudit.Dispatcher
	if cfg.Audit.Enabled {
		dispatcher = internalaudit.NewDispatcher(internalaudit.DispatcherOptions{
			Buffer:       cfg.Audit.BufferSize,
			DropIfFull:   cfg.Audit.DropIfFull,
			DrainTimeout: cfg.Audit.DrainTimeout,
		}, b.auditSink)
	}

	c := &Client{
		config:  cfg,
		baseURL: *base,
		http:    httpClient,
		warn:    b.warn,
		session: session.NewStore(ring, b.warn),
		metrics: NewMetrics(cfg.Metrics),
		audit:   dispatcher,
	}
	return c, nil
}
