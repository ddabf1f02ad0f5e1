package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Service issues and revokes token pairs. Refresh tokens are tracked in
// Redis so a logout can revoke every outstanding session for a user.
type Service struct {
	jwt         *JWTManager
	redisClient *redis.Client
}

func NewService(jwt *JWTManager, redisClient *redis.Client) *Service {
	return &Service{
		jwt:         jwt,
		redisClient: redisClient,
	}
}

func (s *Service) GenerateTokens(ctx context.Context, userID, email string) (*TokenPair, error) {
	pair, tokenID, err := s.jwt.GenerateTokenPair(userID, email)
	if err != nil {
		return nil, err
	}

	key := refreshKey(userID, tokenID)
	if err := s.redisClient.Set(ctx, key, "1", s.jwt.RefreshExpiry()).Err(); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return pair, nil
}

// ConsumeRefreshToken validates a refresh token, verifies it has not been
// revoked, and revokes it (refresh tokens are single use).
func (s *Service) ConsumeRefreshToken(ctx context.Context, refreshToken string) (*RefreshClaims, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	key := refreshKey(claims.UserID, claims.TokenID)
	exists, err := s.redisClient.Exists(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("checking refresh token: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("refresh token revoked")
	}

	s.redisClient.Del(ctx, key)
	return claims, nil
}

// Logout revokes all refresh tokens for the user.
func (s *Service) Logout(ctx context.Context, userID string) error {
	pattern := refreshKey(userID, "*")
	iter := s.redisClient.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		s.redisClient.Del(ctx, iter.Val())
	}
	return iter.Err()
}

func (s *Service) ValidateAccessToken(token string) (*AccessClaims, error) {
	return s.jwt.ValidateAccessToken(token)
}

func refreshKey(userID, tokenID string) string {
	return fmt.Sprintf("refresh:%s:%s", userID, tokenID)
}
