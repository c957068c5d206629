package github

import (
	"context"
	"fmt"
	"time"

	"github.com/andyle182810/ghclient/authtoken"
	"github.com/andyle182810/ghclient/httpclient"
)

// Transport issues single round trips. *httpclient.Client satisfies it; tests use
// testutil.FakeTransport.
type Transport interface {
	Get(ctx context.Context, path string) (*httpclient.Response, error)
	Post(ctx context.Context, path string, body []byte) (*httpclient.Response, error)
	Put(ctx context.Context, path string, body []byte) (*httpclient.Response, error)
	Patch(ctx context.Context, path string, body []byte) (*httpclient.Response, error)
	Delete(ctx context.Context, path string) (*httpclient.Response, error)
}

var _ Transport = (*httpclient.Client)(nil)

// TransportOptions turns the api.* keys in opts, except api.url, into client options.
func TransportOptions(opts *Options) ([]httpclient.Option, error) {
	clientOpts := make([]httpclient.Option, 0, 4) //nolint:mnd

	if token := opts.Get(OptionAPIToken, ""); token != "" {
		clientOpts = append(clientOpts, httpclient.WithTokenProvider(authtoken.Static(token)))
	}

	if raw := opts.Get(OptionAPITimeout, ""); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return nil, fmt.Errorf("%w: %s=%q", ErrInvalidOption, OptionAPITimeout, raw)
		}

		clientOpts = append(clientOpts, httpclient.WithTimeout(timeout))
	}

	return append(clientOpts,
		httpclient.WithUserAgent(opts.Get(OptionAPIUserAgent, "")),
		httpclient.WithAPIVersion(opts.Get(OptionAPIVersion, "")),
	), nil
}

// NewTransport builds an HTTP client from the api.* keys in opts. Options given in
// extra are applied last and win over the ones derived from opts.
func NewTransport(opts *Options, extra ...httpclient.Option) (*httpclient.Client, error) {
	clientOpts, err := TransportOptions(opts)
	if err != nil {
		return nil, err
	}

	return httpclient.New(opts.Get(OptionAPIURL, DefaultAPIURL), append(clientOpts, extra...)...), nil
}
