package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Token audiences. Access and refresh tokens are signed with the same
// secret; the audience claim keeps a refresh token from passing as a
// bearer token and vice versa.
const (
	audienceAccess  = "access"
	audienceRefresh = "refresh"
)

// Claims carried by both access and refresh tokens.
type Claims struct {
	UserID  string `json:"user_id"`
	IsAdmin bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 tokens.
type JWTManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewJWTManager(secret string, accessTTLMinutes, refreshTTLDays int) *JWTManager {
	return &JWTManager{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMinutes) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// GenerateAccessToken returns a signed access token and its expiry.
func (m *JWTManager) GenerateAccessToken(userID string, isAdmin bool) (string, time.Time, error) {
	return m.generate(userID, isAdmin, audienceAccess, m.accessTTL)
}

// GenerateRefreshToken returns a signed refresh token and its expiry.
func (m *JWTManager) GenerateRefreshToken(userID string, isAdmin bool) (string, time.Time, error) {
	return m.generate(userID, isAdmin, audienceRefresh, m.refreshTTL)
}

func (m *JWTManager) generate(userID string, isAdmin bool, audience string, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &Claims{
		UserID:  userID,
		IsAdmin: isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{audience},
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseAccess validates an access token and returns its claims. Refresh
// tokens are rejected.
func (m *JWTManager) ParseAccess(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, audienceAccess)
}

// ParseRefresh validates a refresh token and returns its claims. Access
// tokens are rejected.
func (m *JWTManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return m.parse(tokenStr, audienceRefresh)
}

func (m *JWTManager) parse(tokenStr, audience string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithAudience(audience))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTTL exposes the refresh token lifetime for session storage.
func (m *JWTManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}
