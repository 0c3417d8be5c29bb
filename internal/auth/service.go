package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/caravel-dist/caravel-dist/internal/shared"
	"github.com/caravel-dist/caravel-dist/internal/users"
)

// Accounts is the slice of the user store the login flow needs.
type Accounts interface {
	GetByUsername(ctx context.Context, username string) (*users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	accounts Accounts
	tokens   *TokenStore
}

func NewService(accounts Accounts, tokens *TokenStore) *Service {
	return &Service{accounts: accounts, tokens: tokens}
}

// Authenticate validates username/password credentials. A missing user and a
// wrong password produce the same error so the response does not leak which
// usernames exist. Deactivated accounts are rejected explicitly.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*users.User, error) {
	user, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%w: account deactivated", shared.ErrForbidden)
	}
	return user, nil
}

// Login authenticates and issues a token pair.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	user, err := s.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		return nil, err
	}
	return s.tokens.Issue(ctx, user.ID)
}

// Refresh rotates a refresh token into a new pair.
func (s *Service) Refresh(ctx context.Context, req RefreshRequest) (*TokenPair, error) {
	return s.tokens.Rotate(ctx, req.RefreshToken)
}

// Logout revokes the presented access token.
func (s *Service) Logout(ctx context.Context, accessToken string) error {
	return s.tokens.Revoke(ctx, accessToken)
}
