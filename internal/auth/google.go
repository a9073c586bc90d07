// Package auth handles Google sign-in and the server's own session tokens.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hammamikhairi/cooksync/internal/domain"
)

// DefaultTokenInfoURL is Google's ID token introspection endpoint.
const DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// Verifier turns a sign-in credential into a user.
type Verifier interface {
	Verify(ctx context.Context, credential string) (*domain.User, error)
}

// GoogleOption configures the Google verifier.
type GoogleOption func(*GoogleVerifier)

// WithTokenInfoURL points the verifier at another endpoint, e.g. a test server.
func WithTokenInfoURL(u string) GoogleOption {
	return func(g *GoogleVerifier) {
		g.endpoint = u
	}
}

// WithHTTPClient sets the client used to reach Google.
func WithHTTPClient(c *http.Client) GoogleOption {
	return func(g *GoogleVerifier) {
		g.client = c
	}
}

// GoogleVerifier checks Google ID tokens against the tokeninfo endpoint.
type GoogleVerifier struct {
	clientID string
	endpoint string
	client   *http.Client
	now      func() time.Time
}

// NewGoogleVerifier creates a verifier that accepts tokens issued for clientID.
func NewGoogleVerifier(clientID string, opts ...GoogleOption) *GoogleVerifier {
	g := &GoogleVerifier{
		clientID: clientID,
		endpoint: DefaultTokenInfoURL,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type tokenInfo struct {
	Issuer   string `json:"iss"`
	Audience string `json:"aud"`
	Subject  string `json:"sub"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
	Expiry   string `json:"exp"`
}

// Verify validates the credential and returns the user it identifies.
// Every rejection wraps domain.ErrUnauthorized.
func (g *GoogleVerifier) Verify(ctx context.Context, credential string) (*domain.User, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: empty credential", domain.ErrUnauthorized)
	}

	u := g.endpoint + "?" + url.Values{"id_token": {credential}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google tokeninfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: google rejected the token (status %d)", domain.ErrUnauthorized, resp.StatusCode)
	}

	var info tokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding tokeninfo: %w", err)
	}
	if err := g.check(info); err != nil {
		return nil, err
	}

	return &domain.User{
		ID:      info.Subject,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

func (g *GoogleVerifier) check(info tokenInfo) error {
	if info.Audience != g.clientID {
		return fmt.Errorf("%w: token issued for another client", domain.ErrUnauthorized)
	}
	if info.Issuer != "accounts.google.com" && info.Issuer != "https://accounts.google.com" {
		return fmt.Errorf("%w: unexpected issuer %q", domain.ErrUnauthorized, info.Issuer)
	}
	if info.Subject == "" {
		return fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	if info.Expiry != "" {
		exp, err := strconv.ParseInt(info.Expiry, 10, 64)
		if err != nil {
			return errors.Join(domain.ErrUnauthorized, err)
		}
		if g.now().After(time.Unix(exp, 0)) {
			return fmt.Errorf("%w: token expired", domain.ErrUnauthorized)
		}
	}
	return nil
}
