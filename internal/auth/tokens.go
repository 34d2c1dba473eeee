package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cliphub/backend/internal/models"
)

const (
	classAccess  = "access"
	classRefresh = "refresh"
)

// sessionClaims adds the token class to the registered claim set so the two
// kinds stay distinguishable even if both secrets are configured alike.
type sessionClaims struct {
	jwt.RegisteredClaims
	Class string `json:"cls"`
}

// TokenIssuer mints and verifies the two token classes. Access and refresh
// tokens are signed with independent secrets and carry a class claim, so one
// class can never be presented as the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// NowFunc overrides the clock in tests.
	NowFunc func() time.Time
}

// NewTokenIssuer constructs an issuer with the provided secrets and TTLs.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (i *TokenIssuer) now() time.Time {
	if i.NowFunc != nil {
		return i.NowFunc()
	}
	return time.Now().UTC()
}

// Issue mints a fresh access/refresh pair for the user. The refresh token
// carries a unique ID so back-to-back rotations never produce equal tokens.
func (i *TokenIssuer) Issue(userID string) (models.SessionTokens, error) {
	now := i.now()

	access, accessExp, err := i.sign(userID, classAccess, now, i.accessTTL, i.accessSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, refreshExp, err := i.sign(userID, classRefresh, now, i.refreshTTL, i.refreshSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *TokenIssuer) sign(userID, class string, now time.Time, ttl time.Duration, secret []byte) (string, time.Time, error) {
	exp := now.Add(ttl)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Class: class,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// VerifyAccess validates an access token and returns the embedded user id.
func (i *TokenIssuer) VerifyAccess(token string) (string, error) {
	return i.verify(token, classAccess, i.accessSecret)
}

// VerifyRefresh validates a refresh token and returns the embedded user id.
// Cryptographic validity alone is not enough to accept a refresh token; the
// session manager additionally compares it against the stored slot.
func (i *TokenIssuer) VerifyRefresh(token string) (string, error) {
	return i.verify(token, classRefresh, i.refreshSecret)
}

func (i *TokenIssuer) verify(token, class string, secret []byte) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("token missing subject claim")
	}
	if claims.Class != class {
		return "", fmt.Errorf("token class %q not accepted here", claims.Class)
	}

	return claims.Subject, nil
}
