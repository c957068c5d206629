package httpclient

import (
	"maps"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultUserAgent      = "ghclient"
	HeaderAccept          = "Accept"
	HeaderContentType     = "Content-Type"
	HeaderUserAgent       = "User-Agent"
	HeaderXRequestID      = "X-Request-ID"
	HeaderGitHubRequestID = "X-GitHub-Request-Id"
	HeaderAPIVersion      = "X-GitHub-Api-Version"
	HeaderAuthorization   = "Authorization"
	ContentTypeJSON       = "application/json"
	ContentTypeGitHubJSON = "application/vnd.github+json"
)

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if httpClient, ok := c.httpClient.(*http.Client); ok {
			httpClient.Timeout = timeout
		}
	}
}

func WithHTTPClient(httpClient Doer) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithDefaultHeaders adds headers sent on every request. They win over the built-in
// Accept and User-Agent defaults.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		maps.Copy(c.defaultHeaders, headers)
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.defaultHeaders[HeaderUserAgent] = userAgent
		}
	}
}

// WithAPIVersion pins the REST API version sent in X-GitHub-Api-Version.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.defaultHeaders[HeaderAPIVersion] = version
		}
	}
}

func WithTokenProvider(provider TokenProvider) Option {
	return func(c *Client) {
		c.tokenProvider = provider
	}
}

// WithRateLimiter paces outgoing requests. Requests wait for a token; none are retried.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) {
		c.metrics = metrics
	}
}

// WithMaxResponseSize fails reads of bodies larger than size bytes. Zero means no limit.
func WithMaxResponseSize(size int64) Option {
	return func(c *Client) {
		c.maxResponseSize = size
	}
}
