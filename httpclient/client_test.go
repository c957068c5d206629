package httpclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andyle182810/ghclient/httpclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var errTokenFetchFailed = errors.New("token fetch failed")

type mockTokenProvider struct {
	token       string
	err         error
	invalidated atomic.Int32
}

func (m *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	return m.token, m.err
}

func (m *mockTokenProvider) InvalidateToken() {
	m.invalidated.Add(1)
}

func TestNew_CreatesClientWithDefaultSettings(t *testing.T) {
	t.Parallel()

	client := httpclient.New("https://api.github.com")

	require.NotNil(t, client)
	require.Equal(t, "https://api.github.com", client.BaseURL())
}

func TestNew_TrimsTrailingSlashFromBaseURL(t *testing.T) {
	t.Parallel()

	client := httpclient.New("https://api.github.com/")

	require.Equal(t, "https://api.github.com", client.BaseURL())
}

func TestClient_SendsGitHubDefaultHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		assert.Equal(t, "ghclient", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.New(server.URL)

	resp, err := client.Get(t.Context(), "/issues")

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClient_Get_ReturnsStatusAndRawBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/repos/joomla/joomla-platform/issues/523", r.URL.Path)
		w.Header().Set("X-GitHub-Request-Id", "gh-req-1")
		_, _ = io.WriteString(w, `{"a":1,"b":2}`)
	}))
	defer server.Close()

	client := httpclient.New(server.URL)

	resp, err := client.Get(t.Context(), "/repos/joomla/joomla-platform/issues/523")

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"a":1,"b":2}`, resp.Body)
	require.Equal(t, "gh-req-1", resp.RequestID)
}

func TestClient_Post_SendsBodyVerbatim(t *testing.T) {
	t.Parallel()

	payload := `{"title":"My issue","body":"text"}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Equal(t, payload, string(body))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":1}`)
	}))
	defer server.Close()

	client := httpclient.New(server.URL)

	resp, err := client.Post(t.Context(), "/repos/o/r/issues", []byte(payload))

	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, `{"id":1}`, resp.Body)
}

func TestClient_VerbsUseMatchingMethods(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, r.Method)
	}))
	defer server.Close()

	client := httpclient.New(server.URL)
	ctx := t.Context()

	resp, err := client.Put(ctx, "/notifications", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, resp.Body)

	resp, err = client.Patch(ctx, "/notifications/threads/1", []byte(`{}`))
	require.NoError(t, err)
	require.Equal(t, http.MethodPatch, resp.Body)

	resp, err = client.Delete(ctx, "/notifications/threads/1/subscription")
	require.NoError(t, err)
	require.Equal(t, http.MethodDelete, resp.Body)
}

func TestClient_NonSuccessStatusIsNotAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		_, _ = io.WriteString(w, `{"message": "Generic Error"}`)
	}))
	defer server.Close()

	client := httpclient.New(server.URL)

	resp, err := client.Delete(t.Context(), "/repos/o/r/labels/254")

	require.NoError(t, err)
	require.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	require.Equal(t, `{"message": "Generic Error"}`, resp.Body)
}

func TestClient_KeepsQueryStringInPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/o/r/issues", r.URL.Path)
		assert.Equal(t, "state=closed&since=2012-01-01T12:12:12+00:00", r.URL.RawQuery)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.New(server.URL)

	_, err := client.Get(t.Context(), "/repos/o/r/issues?state=closed&since=2012-01-01T12:12:12+00:00")

	require.NoError(t, err)
}

func TestClient_BuildsURLWithoutLeadingSlash(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/issues", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.New(server.URL)

	_, err := client.Get(t.Context(), "issues")

	require.NoError(t, err)
}

func TestWithTimeout_SetsClientTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.New(server.URL, httpclient.WithTimeout(10*time.Millisecond))

	_, err := client.Get(t.Context(), "/issues")

	require.ErrorIs(t, err, httpclient.ErrRequestFailed)
}

func TestWithTokenProvider_AddsAuthorizationHeader(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "Bearer test-token", req.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	provider := &mockTokenProvider{token: "test-token", err: nil}
	client := httpclient.New(server.URL, httpclient.WithTokenProvider(provider))

	_, err := client.Get(t.Context(), "/notifications")

	require.NoError(t, err)
	require.Equal(t, int32(0), provider.invalidated.Load())
}

func TestWithTokenProvider_ReturnsErrorWhenProviderFails(t *testing.T) {
	t.Parallel()

	provider := &mockTokenProvider{token: "", err: errTokenFetchFailed}
	client := httpclient.New("https://api.github.com", httpclient.WithTokenProvider(provider))

	_, err := client.Get(t.Context(), "/notifications")

	require.ErrorIs(t, err, httpclient.ErrAuthFailed)
	require.ErrorIs(t, err, errTokenFetchFailed)
}

func TestWithTokenProvider_InvalidatesTokenOnUnauthorized(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"Bad credentials"}`)
	}))
	defer server.Close()

	provider := &mockTokenProvider{token: "stale", err: nil}
	client := httpclient.New(server.URL, httpclient.WithTokenProvider(provider))

	resp, err := client.Get(t.Context(), "/notifications")

	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, int32(1), provider.invalidated.Load())
	require.Equal(t, int32(1), calls.Load())
}

func TestWithDefaultHeaders_SetsCustomHeaders(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		assert.Equal(t, "ghctl/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Custom"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.New(server.URL,
		httpclient.WithAPIVersion("2022-11-28"),
		httpclient.WithUserAgent("ghctl/1.0"),
		httpclient.WithDefaultHeaders(map[string]string{"X-Custom": "yes"}),
	)

	_, err := client.Get(t.Context(), "/issues")

	require.NoError(t, err)
}

func TestClient_SendsRequestIDHeader(t *testing.T) {
	t.Parallel()

	var sent atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		sent.Store(req.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := httpclient.New(server.URL)

	resp, err := client.Get(t.Context(), "/issues")

	require.NoError(t, err)
	require.NotEmpty(t, resp.RequestID)
	require.Equal(t, resp.RequestID, sent.Load())
}

func TestWithMaxResponseSize_RejectsLargeBodies(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", 1024))
	}))
	defer server.Close()

	client := httpclient.New(server.URL, httpclient.WithMaxResponseSize(100))

	_, err := client.Get(t.Context(), "/issues")

	require.ErrorIs(t, err, httpclient.ErrResponseTooLarge)
}

func TestWithRateLimiter_FailsWhenWaitExceedsDeadline(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	client := httpclient.New(server.URL, httpclient.WithRateLimiter(limiter))

	_, err := client.Get(t.Context(), "/issues")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Get(ctx, "/issues")

	require.ErrorIs(t, err, httpclient.ErrRateLimited)
}

func TestWithMetrics_CountsRequestsByStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)

			return
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	registry := prometheus.NewRegistry()
	metrics, err := httpclient.NewMetrics(registry, "ghclient")
	require.NoError(t, err)

	client := httpclient.New(server.URL, httpclient.WithMetrics(metrics))

	_, err = client.Get(t.Context(), "/issues")
	require.NoError(t, err)
	_, err = client.Get(t.Context(), "/issues")
	require.NoError(t, err)
	_, err = client.Delete(t.Context(), "/repos/o/r/labels/bug")
	require.NoError(t, err)

	expected := `
# HELP ghclient_http_client_requests_total Total number of outgoing API requests by method and status code
# TYPE ghclient_http_client_requests_total counter
ghclient_http_client_requests_total{method="DELETE",status="204"} 1
ghclient_http_client_requests_total{method="GET",status="200"} 2
`
	require.NoError(t, testutil.GatherAndCompare(registry, strings.NewReader(expected),
		"ghclient_http_client_requests_total"))
}

func TestNewMetrics_FailsOnDuplicateRegistration(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()

	_, err := httpclient.NewMetrics(registry, "ghclient")
	require.NoError(t, err)

	_, err = httpclient.NewMetrics(registry, "ghclient")
	require.Error(t, err)
}

func TestClient_ReturnsErrRequestFailedOnNetworkError(t *testing.T) {
	t.Parallel()

	client := httpclient.New("http://invalid-host-that-does-not-exist.local")

	_, err := client.Get(t.Context(), "/issues")

	require.ErrorIs(t, err, httpclient.ErrRequestFailed)
}

func TestResponse_IsEmpty(t *testing.T) {
	t.Parallel()

	require.True(t, (&httpclient.Response{Body: ""}).IsEmpty())
	require.True(t, (&httpclient.Response{Body: " \n"}).IsEmpty())
	require.False(t, (&httpclient.Response{Body: "{}"}).IsEmpty())
}
