package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/reelvault/backend/internal/models"
)

const tokenIssuer = "reelvault"

var (
	// ErrInvalidAccessToken indicates the bearer credential failed signature or expiry checks.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrTokenNotFound indicates the refresh token is not known to the store.
	ErrTokenNotFound = errors.New("refresh token not found")
	// ErrTokenExpired indicates the refresh token has passed its expiry.
	ErrTokenExpired = errors.New("refresh token expired")
	// ErrTokenRevoked indicates the refresh token was explicitly revoked.
	ErrTokenRevoked = errors.New("refresh token revoked")
)

// TokenStore persists issued refresh tokens so they survive process restarts.
type TokenStore interface {
	Save(ctx context.Context, token models.RefreshToken) error
	Find(ctx context.Context, token string) (models.RefreshToken, error)
	Revoke(ctx context.Context, token string, at time.Time) error
}

// Manager issues signed access tokens and manages the refresh token lifecycle.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	store      TokenStore

	// NowFunc overrides the time source in tests.
	NowFunc func() time.Time
}

// NewManager constructs a Manager that signs access tokens with the provided
// secret and persists refresh tokens through the store.
func NewManager(secret string, accessTTL, refreshTTL time.Duration, store TokenStore) *Manager {
	if secret == "" {
		panic("auth: signing secret must not be empty")
	}
	if store == nil {
		panic("auth: token store must not be nil")
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
	}
}

// Issue creates a new pair of access and refresh tokens for the provided user.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now()

	accessToken, accessExpiry, err := m.signAccessToken(userID, now)
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshToken, err := randomToken()
	if err != nil {
		return models.SessionTokens{}, err
	}

	refreshExpiry := now.Add(m.refreshTTL)
	if err := m.store.Save(ctx, models.RefreshToken{
		Token:     refreshToken,
		UserID:    userID,
		ExpiresAt: refreshExpiry,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		return models.SessionTokens{}, fmt.Errorf("save refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExpiry,
	}, nil
}

// Authenticate verifies a signed access token and returns the subject user id.
func (m *Manager) Authenticate(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", ErrInvalidAccessToken
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", ErrInvalidAccessToken
	}
	return claims.Subject, nil
}

// Refresh exchanges a stored refresh token for a fresh access token. The
// refresh token itself is not rotated; it stays valid until revocation or
// natural expiry.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	if refreshToken == "" {
		return models.SessionTokens{}, ErrTokenNotFound
	}

	stored, err := m.store.Find(ctx, refreshToken)
	if err != nil {
		return models.SessionTokens{}, err
	}

	if stored.RevokedAt != nil {
		return models.SessionTokens{}, ErrTokenRevoked
	}
	if m.now().After(stored.ExpiresAt) {
		return models.SessionTokens{}, ErrTokenExpired
	}

	accessToken, accessExpiry, err := m.signAccessToken(stored.UserID, m.now())
	if err != nil {
		return models.SessionTokens{}, err
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExpiry,
		RefreshToken:     stored.Token,
		RefreshExpiresAt: stored.ExpiresAt,
	}, nil
}

// Revoke marks the provided refresh token as revoked. Revoking an unknown
// token reports ErrTokenNotFound.
func (m *Manager) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrTokenNotFound
	}
	return m.store.Revoke(ctx, refreshToken, m.now())
}

func (m *Manager) signAccessToken(userID string, now time.Time) (string, time.Time, error) {
	expiry := now.Add(m.accessTTL)
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiry, nil
}

func (m *Manager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc().UTC()
	}
	return time.Now().UTC()
}

func randomToken() (string, error) {
	const size = 32
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
