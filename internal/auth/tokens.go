package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/caravel-dist/caravel-dist/internal/shared"
)

const (
	accessPrefix  = "caravel:token:access:"
	refreshPrefix = "caravel:token:refresh:"
)

// TokenStore keeps issued tokens in Redis keyed by their opaque value, so a
// token disappears the moment its key expires or is deleted. Refresh rotates
// both tokens and invalidates the old refresh token.
type TokenStore struct {
	rdb        *redis.Client
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenStore(rdb *redis.Client, accessTTL, refreshTTL time.Duration) *TokenStore {
	return &TokenStore{rdb: rdb, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue creates a fresh token pair for the user.
func (s *TokenStore) Issue(ctx context.Context, userID int64) (*TokenPair, error) {
	access := uuid.NewString()
	refresh := uuid.NewString()
	now := time.Now()

	val := strconv.FormatInt(userID, 10)
	if err := s.rdb.Set(ctx, accessPrefix+access, val, s.accessTTL).Err(); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	if err := s.rdb.Set(ctx, refreshPrefix+refresh, val, s.refreshTTL).Err(); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        "Bearer",
		AccessExpiresAt:  now.Add(s.accessTTL),
		RefreshExpiresAt: now.Add(s.refreshTTL),
	}, nil
}

// Resolve maps an access token back to the user it was issued for.
func (s *TokenStore) Resolve(ctx context.Context, accessToken string) (int64, error) {
	val, err := s.rdb.Get(ctx, accessPrefix+accessToken).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, shared.ErrUnauthenticated
		}
		return 0, fmt.Errorf("resolve access token: %w", err)
	}
	return strconv.ParseInt(val, 10, 64)
}

// Rotate exchanges a refresh token for a new pair. The old refresh token is
// deleted first so it can be used exactly once.
func (s *TokenStore) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	key := refreshPrefix + refreshToken
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shared.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve refresh token: %w", err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse token subject: %w", err)
	}
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return nil, fmt.Errorf("invalidate refresh token: %w", err)
	}
	return s.Issue(ctx, userID)
}

// Revoke drops an access token, ending the session immediately.
func (s *TokenStore) Revoke(ctx context.Context, accessToken string) error {
	return s.rdb.Del(ctx, accessPrefix+accessToken).Err()
}
