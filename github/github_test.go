package github_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andyle182810/ghclient/github"
	"github.com/andyle182810/ghclient/httpclient"
	"github.com/andyle182810/ghclient/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SharesOptionsAndTransport(t *testing.T) {
	t.Parallel()

	fake := testutil.NewFakeTransport(t)
	opts := github.NewOptions(map[string]string{github.OptionAPIToken: "ghp_abc"})

	gh := github.New(opts, fake)

	require.Same(t, opts, gh.Options)
	require.Same(t, opts, gh.Issues.Options())
	require.Same(t, opts, gh.Notifications.Options())

	fake.Expect(http.MethodGet, "/issues", "").Return(http.StatusOK, `[]`)
	fake.Expect(http.MethodGet, "/notifications/threads/7", "").Return(http.StatusOK, `{}`)

	_, err := gh.Issues.GetList(t.Context(), nil)
	require.NoError(t, err)

	_, err = gh.Notifications.ViewThread(t.Context(), 7)
	require.NoError(t, err)
}

func TestNew_NilOptions(t *testing.T) {
	t.Parallel()

	gh := github.New(nil, testutil.NewFakeTransport(t))

	require.NotNil(t, gh.Options)
	require.Empty(t, gh.Options.Keys())
}

func TestOptions_GetSetHas(t *testing.T) {
	t.Parallel()

	opts := github.NewOptions(map[string]string{github.OptionAPIURL: "https://ghe.example.com/api/v3"})

	require.Equal(t, "https://ghe.example.com/api/v3", opts.Get(github.OptionAPIURL, github.DefaultAPIURL))
	require.Equal(t, "fallback", opts.Get(github.OptionAPIToken, "fallback"))
	require.False(t, opts.Has(github.OptionAPIToken))

	opts.Set(github.OptionAPIToken, "ghp_abc")

	require.True(t, opts.Has(github.OptionAPIToken))
	require.Equal(t, []string{github.OptionAPIToken, github.OptionAPIURL}, opts.Keys())
}

func TestOptions_NilIsEmpty(t *testing.T) {
	t.Parallel()

	var opts *github.Options

	require.Equal(t, "fallback", opts.Get("anything", "fallback"))
	require.False(t, opts.Has("anything"))
	require.Nil(t, opts.Keys())
}

func TestNewTransport_AppliesOptions(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer ghp_abc", r.Header.Get("Authorization"))
		assert.Equal(t, "ghctl-test", r.Header.Get("User-Agent"))
		assert.Equal(t, "2022-11-28", r.Header.Get("X-GitHub-Api-Version"))
		assert.Equal(t, "/notifications", r.URL.Path)
		assert.Equal(t, "all=1&participating=1", r.URL.RawQuery)

		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `[{"id":"1"}]`)
	}))
	defer server.Close()

	transport, err := github.NewTransport(github.NewOptions(map[string]string{
		github.OptionAPIURL:       server.URL,
		github.OptionAPIToken:     "ghp_abc",
		github.OptionAPITimeout:   "5s",
		github.OptionAPIUserAgent: "ghctl-test",
		github.OptionAPIVersion:   "2022-11-28",
	}))
	require.NoError(t, err)
	require.Equal(t, server.URL, transport.BaseURL())

	got, err := github.New(nil, transport).Notifications.GetList(t.Context(), nil)

	require.NoError(t, err)
	require.Equal(t, []any{map[string]any{"id": "1"}}, got)
}

func TestNewTransport_DefaultsToPublicAPI(t *testing.T) {
	t.Parallel()

	transport, err := github.NewTransport(github.NewOptions(nil))

	require.NoError(t, err)
	require.Equal(t, github.DefaultAPIURL, transport.BaseURL())
}

func TestNewTransport_RejectsBadTimeout(t *testing.T) {
	t.Parallel()

	_, err := github.NewTransport(github.NewOptions(map[string]string{github.OptionAPITimeout: "soon"}))

	require.ErrorIs(t, err, github.ErrInvalidOption)
}

func TestNewTransport_ExtraOptionsWin(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "override", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	transport, err := github.NewTransport(
		github.NewOptions(map[string]string{
			github.OptionAPIURL:       server.URL,
			github.OptionAPIUserAgent: "from-options",
		}),
		httpclient.WithUserAgent("override"),
		httpclient.WithTimeout(time.Second),
	)
	require.NoError(t, err)

	err = github.New(nil, transport).Issues.DeleteLabel(t.Context(), "joomla", "joomla-platform", "bug")

	require.NoError(t, err)
}

func TestError_MessageFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "message field", body: errorString, message: "Generic Error"},
		{name: "no message field", body: `{"error":"x"}`, message: "Invalid response received from GitHub."},
		{name: "not json", body: "<html>Bad gateway</html>", message: "Invalid response received from GitHub."},
		{name: "empty", body: "", message: "Invalid response received from GitHub."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			issues, fake := newIssues(t)

			fake.Expect(http.MethodGet, "/issues", "").Return(http.StatusBadGateway, tc.body)

			_, err := issues.GetList(t.Context(), nil)

			ghErr, ok := github.AsError(err)
			require.True(t, ok)
			require.Equal(t, http.StatusBadGateway, ghErr.StatusCode)
			require.Equal(t, tc.message, ghErr.Message)
			require.Equal(t, "github: status 502: "+tc.message, err.Error())
		})
	}
}

func TestProcessResponse_UndecodableSuccessBody(t *testing.T) {
	t.Parallel()

	issues, fake := newIssues(t)

	fake.Expect(http.MethodGet, "/issues", "").Return(http.StatusOK, "not json")

	_, err := issues.GetList(t.Context(), nil)

	require.ErrorIs(t, err, github.ErrDecodeResponse)
	require.NotErrorIs(t, err, github.ErrUnexpectedResponse)
}

func TestFormatDate(t *testing.T) {
	t.Parallel()

	date := time.Date(2012, time.January, 1, 7, 12, 12, 0, time.FixedZone("EST", -5*60*60))

	require.Equal(t, "2012-01-01T12:12:12+00:00", github.FormatDate(date))
}
