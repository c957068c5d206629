package authtoken

import (
	"net/http"
	"time"
)

type Option func(*Installation)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Installation) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithTimeout sets the timeout on a copy of the HTTP client, so a client passed with
// WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Installation) {
		if timeout > 0 {
			client := *c.httpClient
			client.Timeout = timeout
			c.httpClient = &client
		}
	}
}

// WithBaseURL points token requests at a GitHub Enterprise Server API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Installation) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}
