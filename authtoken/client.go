package authtoken

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenRequestFailed = errors.New("authtoken: token request failed")
	ErrNoAccessToken      = errors.New("authtoken: no access token in response")
	ErrInvalidPrivateKey  = errors.New("authtoken: invalid private key")
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultBaseURL = "https://api.github.com"

	tokenExpiryBuffer = time.Minute
	jwtBackdate       = 60 * time.Second
	jwtLifetime       = 9 * time.Minute

	headerAccept        = "Accept"
	headerAuthorization = "Authorization"
	contentTypeGitHub   = "application/vnd.github+json"
)

//nolint:tagliatelle
type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Installation mints GitHub App installation access tokens. The app JWT is signed with
// RS256 and exchanged for an installation token, which is cached until shortly before
// its expires_at.
type Installation struct {
	baseURL        string
	appID          int64
	installationID int64
	key            *rsa.PrivateKey
	httpClient     *http.Client

	mu          sync.RWMutex
	accessToken string
	expiresAt   time.Time
}

func NewInstallation(appID, installationID int64, privateKeyPEM []byte, opts ...Option) (*Installation, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}

	c := &Installation{
		baseURL:        DefaultBaseURL,
		appID:          appID,
		installationID: installationID,
		key:            key,
		httpClient: &http.Client{ //nolint:exhaustruct
			Timeout: DefaultTimeout,
		},
		mu:          sync.RWMutex{},
		accessToken: "",
		expiresAt:   time.Time{},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Installation) GetToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		token := c.accessToken
		c.mu.RUnlock()

		return token, nil
	}
	c.mu.RUnlock()

	return c.refreshToken(ctx)
}

func (c *Installation) refreshToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock.
	if c.accessToken != "" && time.Now().Before(c.expiresAt) {
		return c.accessToken, nil
	}

	token, expiresAt, err := c.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	c.accessToken = token
	c.expiresAt = expiresAt.Add(-tokenExpiryBuffer)

	return c.accessToken, nil
}

// AppJWT returns a freshly signed app JWT, valid for nine minutes.
func (c *Installation) AppJWT(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{ //nolint:exhaustruct
		Issuer:    strconv.FormatInt(c.appID, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-jwtBackdate)),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtLifetime)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign app jwt: %w", err)
	}

	return signed, nil
}

func (c *Installation) fetchToken(ctx context.Context) (string, time.Time, error) {
	appJWT, err := c.AppJWT(time.Now())
	if err != nil {
		return "", time.Time{}, err
	}

	tokenURL := strings.TrimSuffix(c.baseURL, "/") +
		"/app/installations/" + strconv.FormatInt(c.installationID, 10) + "/access_tokens"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, nil)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set(headerAccept, contentTypeGitHub)
	req.Header.Set(headerAuthorization, "Bearer "+appJWT)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to fetch token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return "", time.Time{}, fmt.Errorf("%w: status %d", ErrTokenRequestFailed, resp.StatusCode)
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to decode token response: %w", err)
	}

	if tokenResp.Token == "" {
		return "", time.Time{}, ErrNoAccessToken
	}

	return tokenResp.Token, tokenResp.ExpiresAt, nil
}

func (c *Installation) InvalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accessToken = ""
	c.expiresAt = time.Time{}
}
