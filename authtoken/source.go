package authtoken

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/oauth2"
)

// Source adapts an oauth2.TokenSource to httpclient.TokenProvider.
type Source struct {
	mu     sync.Mutex
	origin oauth2.TokenSource
	cached oauth2.TokenSource
}

// Static serves a fixed personal access token.
func Static(token string) *Source {
	return FromTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})) //nolint:exhaustruct
}

// FromTokenSource wraps src so tokens are reused until they expire.
func FromTokenSource(src oauth2.TokenSource) *Source {
	return &Source{
		mu:     sync.Mutex{},
		origin: src,
		cached: oauth2.ReuseTokenSource(nil, src),
	}
}

func (s *Source) GetToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	src := s.cached
	s.mu.Unlock()

	token, err := src.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenRequestFailed, err)
	}

	if token.AccessToken == "" {
		return "", ErrNoAccessToken
	}

	return token.AccessToken, nil
}

// InvalidateToken drops the reused token so the next call asks the origin source again.
func (s *Source) InvalidateToken() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cached = oauth2.ReuseTokenSource(nil, s.origin)
}
