package authtoken_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andyle182810/ghclient/authtoken"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{ //nolint:exhaustruct
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	return key, pemBytes
}

func tokenHandler(t *testing.T, key *rsa.PrivateKey, calls *atomic.Int32, expiresIn time.Duration) http.HandlerFunc {
	t.Helper()

	return func(w http.ResponseWriter, r *http.Request) {
		count := calls.Add(1)

		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/app/installations/99/access_tokens", r.URL.Path)
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))

		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

		claims := &jwt.RegisteredClaims{} //nolint:exhaustruct
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return &key.PublicKey, nil
		}, jwt.WithValidMethods([]string{"RS256"}))
		assert.NoError(t, err)
		assert.Equal(t, "12345", claims.Issuer)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      fmt.Sprintf("ghs_token-%d", count),
			"expires_at": time.Now().Add(expiresIn).UTC().Format(time.RFC3339),
		})
	}
}

func TestNewInstallation_RejectsInvalidKey(t *testing.T) {
	t.Parallel()

	_, err := authtoken.NewInstallation(12345, 99, []byte("not a key"))

	require.ErrorIs(t, err, authtoken.ErrInvalidPrivateKey)
}

func TestInstallation_AppJWTCarriesAppIDAndWindow(t *testing.T) {
	t.Parallel()

	key, pemBytes := generateKey(t)

	client, err := authtoken.NewInstallation(12345, 99, pemBytes)
	require.NoError(t, err)

	now := time.Now()

	signed, err := client.AppJWT(now)
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{} //nolint:exhaustruct
	_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
		return &key.PublicKey, nil
	})
	require.NoError(t, err)

	require.Equal(t, "12345", claims.Issuer)
	require.WithinDuration(t, now.Add(-time.Minute), claims.IssuedAt.Time, 2*time.Second)
	require.WithinDuration(t, now.Add(9*time.Minute), claims.ExpiresAt.Time, 2*time.Second)
}

func TestInstallation_FetchesTokenOnFirstCall(t *testing.T) {
	t.Parallel()

	key, pemBytes := generateKey(t)

	var calls atomic.Int32

	server := httptest.NewServer(tokenHandler(t, key, &calls, time.Hour))
	defer server.Close()

	client, err := authtoken.NewInstallation(12345, 99, pemBytes, authtoken.WithBaseURL(server.URL))
	require.NoError(t, err)

	token, err := client.GetToken(t.Context())

	require.NoError(t, err)
	require.Equal(t, "ghs_token-1", token)
}

func TestInstallation_ReturnsCachedToken(t *testing.T) {
	t.Parallel()

	key, pemBytes := generateKey(t)

	var calls atomic.Int32

	server := httptest.NewServer(tokenHandler(t, key, &calls, time.Hour))
	defer server.Close()

	client, err := authtoken.NewInstallation(12345, 99, pemBytes, authtoken.WithBaseURL(server.URL))
	require.NoError(t, err)

	token1, err := client.GetToken(t.Context())
	require.NoError(t, err)

	token2, err := client.GetToken(t.Context())
	require.NoError(t, err)

	require.Equal(t, token1, token2)
	require.Equal(t, int32(1), calls.Load())
}

func TestInstallation_RefreshesTokenInsideExpiryBuffer(t *testing.T) {
	t.Parallel()

	key, pemBytes := generateKey(t)

	var calls atomic.Int32

	// Thirty seconds left is already inside the one minute buffer.
	server := httptest.NewServer(tokenHandler(t, key, &calls, 30*time.Second))
	defer server.Close()

	client, err := authtoken.NewInstallation(12345, 99, pemBytes, authtoken.WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.GetToken(t.Context())
	require.NoError(t, err)

	token, err := client.GetToken(t.Context())
	require.NoError(t, err)

	require.Equal(t, "ghs_token-2", token)
	require.Equal(t, int32(2), calls.Load())
}

func TestInstallation_InvalidateTokenClearsCache(t *testing.T) {
	t.Parallel()

	key, pemBytes := generateKey(t)

	var calls atomic.Int32

	server := httptest.NewServer(tokenHandler(t, key, &calls, time.Hour))
	defer server.Close()

	client, err := authtoken.NewInstallation(12345, 99, pemBytes, authtoken.WithBaseURL(server.URL))
	require.NoError(t, err)

	token1, err := client.GetToken(t.Context())
	require.NoError(t, err)

	client.InvalidateToken()

	token2, err := client.GetToken(t.Context())
	require.NoError(t, err)

	require.NotEqual(t, token1, token2)
	require.Equal(t, int32(2), calls.Load())
}

func TestInstallation_ConcurrentRequestsShareToken(t *testing.T) {
	t.Parallel()

	_, pemBytes := generateKey(t)

	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		time.Sleep(50 * time.Millisecond)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "ghs_shared",
			"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		})
	}))
	defer server.Close()

	client, err := authtoken.NewInstallation(12345, 99, pemBytes, authtoken.WithBaseURL(server.URL))
	require.NoError(t, err)

	var wg sync.WaitGroup

	tokens := make([]string, 10)
	errs := make([]error, 10)

	for idx := range 10 {
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()

			tokens[idx], errs[idx] = client.GetToken(t.Context())
		}(idx)
	}

	wg.Wait()

	for idx := range 10 {
		require.NoError(t, errs[idx], "goroutine %d", idx)
		require.Equal(t, "ghs_shared", tokens[idx], "goroutine %d", idx)
	}

	require.Equal(t, int32(1), calls.Load())
}

func TestInstallation_HandlesTokenRequestFailure(t *testing.T) {
	t.Parallel()

	_, pemBytes := generateKey(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client, err := authtoken.NewInstallation(12345, 99, pemBytes, authtoken.WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.GetToken(t.Context())

	require.ErrorIs(t, err, authtoken.ErrTokenRequestFailed)
}

func TestInstallation_HandlesInvalidJSONResponse(t *testing.T) {
	t.Parallel()

	_, pemBytes := generateKey(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	client, err := authtoken.NewInstallation(12345, 99, pemBytes, authtoken.WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.GetToken(t.Context())

	require.Error(t, err)
}

func TestInstallation_HandlesEmptyToken(t *testing.T) {
	t.Parallel()

	_, pemBytes := generateKey(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"token":"","expires_at":"2030-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	client, err := authtoken.NewInstallation(12345, 99, pemBytes, authtoken.WithBaseURL(server.URL))
	require.NoError(t, err)

	_, err = client.GetToken(t.Context())

	require.ErrorIs(t, err, authtoken.ErrNoAccessToken)
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	_, pemBytes := generateKey(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client, err := authtoken.NewInstallation(12345, 99, pemBytes,
		authtoken.WithBaseURL(server.URL),
		authtoken.WithTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)

	_, err = client.GetToken(t.Context())

	require.Error(t, err)
}

func TestWithTimeout_LeavesSharedHTTPClientUntouched(t *testing.T) {
	t.Parallel()

	key, pemBytes := generateKey(t)

	var calls atomic.Int32

	server := httptest.NewServer(tokenHandler(t, key, &calls, time.Hour))
	defer server.Close()

	shared := &http.Client{Timeout: time.Minute} //nolint:exhaustruct

	client, err := authtoken.NewInstallation(12345, 99, pemBytes,
		authtoken.WithBaseURL(server.URL),
		authtoken.WithHTTPClient(shared),
		authtoken.WithTimeout(5*time.Second),
	)
	require.NoError(t, err)

	token, err := client.GetToken(t.Context())

	require.NoError(t, err)
	require.Equal(t, "ghs_token-1", token)
	require.Equal(t, time.Minute, shared.Timeout)
}
