package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hammamikhairi/cooksync/internal/domain"
	"github.com/hammamikhairi/cooksync/internal/logger"
)

// Service exchanges sign-in credentials for session tokens.
type Service struct {
	verifier Verifier
	tokens   *TokenService
	users    domain.UserStore
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates the sign-in service. A nil verifier puts the server
// in local mode: sign-in is disabled and every request runs as LocalUser.
func NewService(verifier Verifier, tokens *TokenService, users domain.UserStore, log *logger.Logger) *Service {
	return &Service{verifier: verifier, tokens: tokens, users: users, log: log, now: time.Now}
}

// Local reports whether the server runs without sign-in.
func (s *Service) Local() bool { return s.verifier == nil }

// SignIn verifies the credential, records the user and issues a token.
func (s *Service) SignIn(ctx context.Context, credential string) (string, *domain.User, error) {
	if s.Local() {
		return "", nil, fmt.Errorf("google sign-in: %w", domain.ErrNotImplemented)
	}

	user, err := s.verifier.Verify(ctx, credential)
	if err != nil {
		return "", nil, err
	}

	existing, err := s.users.GetUser(ctx, user.ID)
	switch {
	case err == nil:
		user.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrNotFound):
		user.CreatedAt = s.now()
		s.log.Info("new user %s (%s)", user.ID, user.Email)
	default:
		return "", nil, fmt.Errorf("loading user: %w", err)
	}
	if err := s.users.SaveUser(ctx, user); err != nil {
		return "", nil, fmt.Errorf("saving user: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to a user. In local mode the token
// is ignored.
func (s *Service) Authenticate(ctx context.Context, bearer string) (*domain.User, error) {
	if s.Local() {
		u := LocalUser
		return &u, nil
	}
	if bearer == "" {
		return nil, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized)
	}
	claims, err := s.tokens.Parse(bearer)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		// Tokens outlive a wiped memory store; the claims still identify the user.
		return &domain.User{ID: claims.Subject, Email: claims.Email, Name: claims.Name}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}
