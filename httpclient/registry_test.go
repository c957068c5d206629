package httpclient_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andyle182810/ghclient/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_CreatesEmptyRegistry(t *testing.T) {
	t.Parallel()

	reg := httpclient.NewRegistry()

	require.Empty(t, reg.Hosts())
}

func TestRegistry_RegisterReturnsRegistryForChaining(t *testing.T) {
	t.Parallel()

	reg := httpclient.NewRegistry()

	result := reg.Register("github.com", "https://api.github.com")

	require.Same(t, reg, result)
	require.Equal(t, []string{"github.com"}, reg.Hosts())
}

func TestRegistry_ResolveReturnsRegisteredClient(t *testing.T) {
	t.Parallel()

	reg := httpclient.NewRegistry().
		Register("github.com", "https://api.github.com").
		Register("ghe.example.com", "https://ghe.example.com/api/v3")

	client, err := reg.Resolve("ghe.example.com")

	require.NoError(t, err)
	require.Equal(t, "https://ghe.example.com/api/v3", client.BaseURL())
}

func TestRegistry_ResolveEmptyHostReturnsFirstRegistered(t *testing.T) {
	t.Parallel()

	reg := httpclient.NewRegistry().
		Register("github.com", "https://api.github.com").
		Register("ghe.example.com", "https://ghe.example.com/api/v3")

	client, err := reg.Resolve("")

	require.NoError(t, err)
	require.Equal(t, "https://api.github.com", client.BaseURL())
}

func TestRegistry_ResolveUnknownHostFails(t *testing.T) {
	t.Parallel()

	reg := httpclient.NewRegistry().Register("github.com", "https://api.github.com")

	_, err := reg.Resolve("gitlab.com")

	require.ErrorIs(t, err, httpclient.ErrHostNotRegistered)
}

func TestRegistry_OverwritesExistingClient(t *testing.T) {
	t.Parallel()

	reg := httpclient.NewRegistry()
	reg.Register("github.com", "https://old.example.com")
	reg.Register("github.com", "https://api.github.com")

	client, err := reg.Resolve("github.com")

	require.NoError(t, err)
	require.Equal(t, "https://api.github.com", client.BaseURL())
	require.Equal(t, []string{"github.com"}, reg.Hosts())
}

func TestRegistry_DefaultOptionsApplyToEveryHost(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "ghctl", r.Header.Get("User-Agent"))
		assert.Equal(t, "on", r.Header.Get("X-Trace"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	reg := httpclient.NewRegistry(httpclient.WithUserAgent("ghctl")).
		Register("github.com", "https://api.github.com").
		Register("ghe.example.com", server.URL, httpclient.WithDefaultHeaders(map[string]string{"X-Trace": "on"}))

	client, err := reg.Resolve("ghe.example.com")
	require.NoError(t, err)

	_, err = client.Get(t.Context(), "/notifications")

	require.NoError(t, err)
	require.Equal(t, []string{"ghe.example.com", "github.com"}, reg.Hosts())
}
