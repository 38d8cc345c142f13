// services/auth/jwt.go
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 7 * 24 * time.Hour
)

type JWTService struct {
	secretKey []byte
	redis     *redis.Client
}

func NewJWTService(secretKey string, redisClient *redis.Client) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		redis:     redisClient,
	}
}

// GenerateToken mints an access token plus an opaque refresh token. The
// refresh token lives only in redis, keyed by its value, so logout can
// revoke it instantly.
func (s *JWTService) GenerateToken(userID int, username, role string) (string, string, error) {
	accessToken, err := s.GenerateAccessToken(userID, username, role)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.issueRefreshToken(userID)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GenerateAccessToken mints only the self-contained JWT.
func (s *JWTService) GenerateAccessToken(userID int, username, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  strconv.Itoa(userID),
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(accessTokenTTL).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return accessToken, nil
}

func (s *JWTService) issueRefreshToken(userID int) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %v", err)
	}
	token := hex.EncodeToString(raw)

	err := s.redis.Set(context.Background(), refreshKey(token), userID, refreshTokenTTL).Err()
	if err != nil {
		return "", fmt.Errorf("failed to store refresh token: %v", err)
	}
	return token, nil
}

// ValidateRefreshToken resolves a refresh token to its user ID and
// revokes it, so each token is good for exactly one rotation.
func (s *JWTService) ValidateRefreshToken(token string) (int, error) {
	ctx := context.Background()
	userID, err := s.redis.Get(ctx, refreshKey(token)).Int()
	if err != nil {
		return 0, fmt.Errorf("invalid or expired refresh token")
	}
	s.redis.Del(ctx, refreshKey(token))
	return userID, nil
}

func (s *JWTService) RevokeRefreshToken(token string) error {
	return s.redis.Del(context.Background(), refreshKey(token)).Err()
}

// ParseAccessToken verifies the signature and returns the claims.
func (s *JWTService) ParseAccessToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func refreshKey(token string) string {
	return "auth:refresh:" + token
}
