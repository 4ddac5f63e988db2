package fitgate

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults with base url",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "base url missing",
			mutate: func(c *Config) {
				c.BaseURL = "   "
			},
			wantValid: false,
		},
		{
			name: "base url wrong scheme",
			mutate: func(c *Config) {
				c.BaseURL = "ftp://api.example.com"
			},
			wantValid: false,
		},
		{
			name: "base url without host",
			mutate: func(c *Config) {
				c.BaseURL = "http://"
			},
			wantValid: false,
		},
		{
			name: "base url with path prefix",
			mutate: func(c *Config) {
				c.BaseURL = "https://api.example.com/api/v2"
			},
			wantValid: true,
		},
		{
			name: "negative http timeout",
			mutate: func(c *Config) {
				c.HTTPTimeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "negative storage ttl",
			mutate: func(c *Config) {
				c.Storage.TTL = -time.Minute
			},
			wantValid: false,
		},
		{
			name: "negative audit buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = -1
			},
			wantValid: false,
		},
		{
			name: "negative audit drain timeout",
			mutate: func(c *Config) {
				c.Audit.DrainTimeout = -time.Second
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.BaseURL = "https://api.example.com"
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid && err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestBuilderRequiresBaseURL(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected error for missing base URL")
	}
}

func TestBuilderIsSingleUse(t *testing.T) {
	b := New().WithBaseURL("https://api.example.com")
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second build to fail")
	}
}

func TestBuilderAppliesDefaultTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseURL = "https://api.example.com"
	cfg.HTTPTimeout = 0

	c, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer c.Close()

	if c.http.Timeout != DefaultTimeout {
		t.Fatalf("expected default timeout %v, got %v", DefaultTimeout, c.http.Timeout)
	}
}
