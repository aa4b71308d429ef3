package core

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Claims struct {
	UserID uuid.UUID `json:"userId"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies the session token pair. Access and refresh
// tokens use independent secrets so neither can stand in for the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenIssuer(config *Config) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(config.Auth.AccessSecret),
		refreshSecret: []byte(config.Auth.RefreshSecret),
		accessTTL:     config.AccessTokenTTL(),
		refreshTTL:    config.RefreshTokenTTL(),
	}
}

func (t *TokenIssuer) IssueAccessToken(userID uuid.UUID) (string, error) {
	return sign(userID, t.accessSecret, t.accessTTL)
}

func (t *TokenIssuer) IssueRefreshToken(userID uuid.UUID) (string, error) {
	return sign(userID, t.refreshSecret, t.refreshTTL)
}

// VerifyAccessToken checks signature and expiry only. Revocation is a
// separate concern: callers consult the token cache for that.
func (t *TokenIssuer) VerifyAccessToken(tokenString string) (uuid.UUID, error) {
	return verify(tokenString, t.accessSecret)
}

func (t *TokenIssuer) VerifyRefreshToken(tokenString string) (uuid.UUID, error) {
	return verify(tokenString, t.refreshSecret)
}

func sign(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

func verify(tokenString string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, ErrInvalidToken
	}

	if !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	return claims.UserID, nil
}
