package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/caravel-dist/caravel-dist/internal/auth"
	"github.com/caravel-dist/caravel-dist/internal/shared"
	"github.com/caravel-dist/caravel-dist/internal/users"
)

type stubAccounts struct {
	users map[string]users.User
}

func (s *stubAccounts) GetByUsername(_ context.Context, username string) (*users.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &u, nil
}

func newAuthService(t *testing.T) (*auth.Service, *auth.TokenStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	inactiveHash, err := bcrypt.GenerateFromPassword([]byte("old password"), bcrypt.MinCost)
	require.NoError(t, err)

	accounts := &stubAccounts{users: map[string]users.User{
		"maya":   {ID: 5, Username: "maya", PasswordHash: string(hash), IsActive: true},
		"former": {ID: 6, Username: "former", PasswordHash: string(inactiveHash), IsActive: false},
	}}
	tokens := auth.NewTokenStore(rdb, 30*time.Minute, 7*24*time.Hour)
	return auth.NewService(accounts, tokens), tokens
}

func TestLoginIssuesResolvableTokens(t *testing.T) {
	svc, tokens := newAuthService(t)

	pair, err := svc.Login(context.Background(), auth.LoginRequest{Username: "maya", Password: "correct horse"})
	require.NoError(t, err)
	require.Equal(t, "Bearer", pair.TokenType)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	userID, err := tokens.Resolve(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(5), userID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{Username: "maya", Password: "wrong"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), auth.LoginRequest{Username: "ghost", Password: "whatever"})
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), auth.LoginRequest{Username: "former", Password: "old password"})
	require.ErrorIs(t, err, shared.ErrForbidden)
}

func TestRefreshRotatesAndInvalidatesOldToken(t *testing.T) {
	svc, tokens := newAuthService(t)

	pair, err := svc.Login(context.Background(), auth.LoginRequest{Username: "maya", Password: "correct horse"})
	require.NoError(t, err)

	next, err := svc.Refresh(context.Background(), auth.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	userID, err := tokens.Resolve(context.Background(), next.AccessToken)
	require.NoError(t, err)
	require.Equal(t, int64(5), userID)

	_, err = svc.Refresh(context.Background(), auth.RefreshRequest{RefreshToken: pair.RefreshToken})
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestLogoutRevokesAccessToken(t *testing.T) {
	svc, tokens := newAuthService(t)

	pair, err := svc.Login(context.Background(), auth.LoginRequest{Username: "maya", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), pair.AccessToken))

	_, err = tokens.Resolve(context.Background(), pair.AccessToken)
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestResolveUnknownToken(t *testing.T) {
	_, tokens := newAuthService(t)

	_, err := tokens.Resolve(context.Background(), "not-a-token")
	require.ErrorIs(t, err, shared.ErrUnauthenticated)
}
