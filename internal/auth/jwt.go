package auth

import (
	"fmt"
	"time"

	"elearning-quiz-service/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Claims is the payload of both access and refresh tokens.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewIssuer(secret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL, now: time.Now}
}

// NewIssuerWithClock is test-only for deterministic expiry.
func NewIssuerWithClock(secret string, accessTTL, refreshTTL time.Duration, now func() time.Time) *Issuer {
	i := NewIssuer(secret, accessTTL, refreshTTL)
	i.now = now
	return i
}

// Issue returns a fresh access/refresh pair for the user.
func (i *Issuer) Issue(user domain.User) (string, string, error) {
	access, err := i.sign(user, kindAccess, i.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err := i.sign(user, kindRefresh, i.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (i *Issuer) sign(user domain.User, kind string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		Username: user.Username,
		Role:     string(user.Role),
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

// ParseAccess verifies an access token.
func (i *Issuer) ParseAccess(token string) (*Claims, error) {
	return i.parse(token, kindAccess)
}

// ParseRefresh verifies a refresh token and returns its username.
func (i *Issuer) ParseRefresh(token string) (string, error) {
	claims, err := i.parse(token, kindRefresh)
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

func (i *Issuer) parse(token, kind string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%w: expected %s token", domain.ErrInvalidToken, kind)
	}
	return claims, nil
}
