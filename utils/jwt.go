package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrBlacklistedToken = errors.New("token has been revoked")
)

type CustomClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256 session tokens. Revoked tokens are kept
// until their own expiry.
type TokenManager struct {
	secret []byte
	ttl    time.Duration

	mu        sync.RWMutex
	blacklist map[string]time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{
		secret:    []byte(secret),
		ttl:       ttl,
		blacklist: make(map[string]time.Time),
	}
}

func (tm *TokenManager) GenerateToken(userID uint) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "RestaurantStorefront",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tm.secret)
}

func (tm *TokenManager) ParseToken(tokenString string) (*CustomClaims, error) {
	if tm.IsBlacklisted(tokenString) {
		return nil, ErrBlacklistedToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Blacklist revokes a token until its expiry.
func (tm *TokenManager) Blacklist(tokenString string) {
	expiry := time.Now().Add(tm.ttl)
	if claims, err := tm.ParseToken(tokenString); err == nil && claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.blacklist[tokenString] = expiry
}

func (tm *TokenManager) IsBlacklisted(tokenString string) bool {
	tm.mu.RLock()
	expiry, exists := tm.blacklist[tokenString]
	tm.mu.RUnlock()
	if !exists {
		return false
	}
	if time.Now().Before(expiry) {
		return true
	}

	tm.mu.Lock()
	delete(tm.blacklist, tokenString)
	tm.mu.Unlock()
	return false
}
