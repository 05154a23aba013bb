package httpclient

import (
	"fmt"
	"net/url"
	"time"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultMaxResponseSize = 8 << 20
)

// Config configures the Adapter.
type Config struct {
	// Timeout applies to requests that do not set their own. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// Proxy is used by requests that do not set their own. Empty falls back
	// to the HTTP_PROXY/HTTPS_PROXY environment.
	Proxy string `yaml:"proxy" mapstructure:"proxy"`

	// MaxResponseSize caps the bytes read from a response body. Defaults to 8MB.
	MaxResponseSize int64 `yaml:"max_response_size" mapstructure:"max_response_size"`

	// MaxIdleConnsPerHost tunes connection reuse. Zero keeps net/http's default.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host"`

	// TLS configures TLS settings for the transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// HTTP2 enables HTTP/2 connection health checks.
	HTTP2 HTTP2Config `yaml:"http2" mapstructure:"http2"`

	// Tracing emits one OpenTelemetry client span per request.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
}

// HTTP2Config holds HTTP/2 health check settings. A zero ReadIdleTimeout
// leaves HTTP/2 to net/http's built-in negotiation.
type HTTP2Config struct {
	// ReadIdleTimeout sends a ping when no frame arrived for this long.
	ReadIdleTimeout time.Duration `yaml:"read_idle_timeout" mapstructure:"read_idle_timeout"`
	// PingTimeout closes the connection when a ping is not answered in time.
	PingTimeout time.Duration `yaml:"ping_timeout" mapstructure:"ping_timeout"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = defaultMaxResponseSize
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.Proxy != "" {
		if _, err := parseProxy(c.Proxy); err != nil {
			return err
		}
	}
	if c.HTTP2.PingTimeout < 0 || c.HTTP2.ReadIdleTimeout < 0 {
		return fmt.Errorf("httpclient: http2 timeouts must not be negative")
	}
	return c.TLS.Validate()
}

var proxySchemes = map[string]bool{"http": true, "https": true, "socks5": true, "socks5h": true}

func parseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("httpclient: invalid proxy %q: %w", raw, err)
	}
	if !proxySchemes[u.Scheme] || u.Host == "" {
		return nil, fmt.Errorf("httpclient: unsupported proxy %q", raw)
	}
	return u, nil
}
