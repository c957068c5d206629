package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
	InvalidateToken()
}

var _ Doer = (*http.Client)(nil)

// Client issues one HTTP round trip per call and hands back the raw status and body.
// It applies no status policy; callers decide which codes mean success.
type Client struct {
	baseURL         string
	httpClient      Doer
	defaultHeaders  map[string]string
	tokenProvider   TokenProvider
	limiter         *rate.Limiter
	logger          zerolog.Logger
	metrics         *Metrics
	maxResponseSize int64 // 0 means no limit
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{ //nolint:exhaustruct
			Timeout: DefaultTimeout,
		},
		defaultHeaders: map[string]string{
			HeaderAccept:    ContentTypeGitHubJSON,
			HeaderUserAgent: DefaultUserAgent,
		},
		tokenProvider:   nil,
		limiter:         nil,
		logger:          zerolog.Nop(),
		metrics:         nil,
		maxResponseSize: 0,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil)
}

func (c *Client) Post(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPost, path, body)
}

func (c *Client) Put(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPut, path, body)
}

func (c *Client) Patch(ctx context.Context, path string, body []byte) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, path, body)
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil)
}

// Do sends body (already encoded, may be nil) to path with the given method.
// Any HTTP status is a successful round trip; only transport failures return an error.
func (c *Client) Do(ctx context.Context, method string, path string, body []byte) (*Response, error) {
	requestID := uuid.New().String()
	headers := make(map[string]string)

	if c.tokenProvider != nil {
		token, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrAuthFailed, err)
		}

		headers[HeaderAuthorization] = "Bearer " + token
	}

	req, err := c.buildRequest(ctx, method, path, body, headers, requestID)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}

	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, 0, time.Since(start))
		c.logger.Debug().
			Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Msg("GitHub request failed")

		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	response, err := c.readResponse(resp, requestID)

	elapsed := time.Since(start)
	c.metrics.observe(method, resp.StatusCode, elapsed)
	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Str("request_id", requestID).
		Msg("GitHub request completed")

	if resp.StatusCode == http.StatusUnauthorized && c.tokenProvider != nil {
		c.tokenProvider.InvalidateToken()
	}

	return response, err
}

func (c *Client) buildRequest(
	ctx context.Context,
	method string,
	path string,
	body []byte,
	headers map[string]string,
	requestID string,
) (*http.Request, error) {
	var bodyReader io.Reader

	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateRequest, err)
	}

	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}

	if body != nil {
		req.Header.Set(HeaderContentType, ContentTypeJSON)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	req.Header.Set(HeaderXRequestID, requestID)

	return req, nil
}

func (c *Client) readResponse(resp *http.Response, requestID string) (*Response, error) {
	respRequestID := resp.Header.Get(HeaderGitHubRequestID)
	if respRequestID == "" {
		respRequestID = requestID
	}

	body := io.Reader(resp.Body)
	if c.maxResponseSize > 0 {
		body = io.LimitReader(resp.Body, c.maxResponseSize+1)
	}

	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadResponse, err)
	}

	if c.maxResponseSize > 0 && int64(len(bodyBytes)) > c.maxResponseSize {
		return nil, ErrResponseTooLarge
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(bodyBytes),
		Header:     resp.Header.Clone(),
		RequestID:  respRequestID,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// buildURL joins the base URL and path. A query string already in path is kept as is.
func (c *Client) buildURL(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}
