package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/reelvault/backend/internal/auth"
	"github.com/reelvault/backend/internal/db"
	"github.com/reelvault/backend/internal/models"
)

// PostgresTokenStore persists refresh tokens to PostgreSQL.
type PostgresTokenStore struct {
	pool db.Pool
}

// NewPostgresTokenStore constructs a refresh token store backed by PostgreSQL.
func NewPostgresTokenStore(pool db.Pool) *PostgresTokenStore {
	return &PostgresTokenStore{pool: pool}
}

// Save stores or updates a refresh token record.
func (s *PostgresTokenStore) Save(ctx context.Context, token models.RefreshToken) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO refresh_tokens (token, user_id, expires_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (token)
        DO UPDATE SET user_id = EXCLUDED.user_id,
                      expires_at = EXCLUDED.expires_at,
                      updated_at = EXCLUDED.updated_at
    `, token.Token, token.UserID, token.ExpiresAt.UTC(), token.CreatedAt.UTC(), token.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert refresh token: %w", err)
	}

	return nil
}

// Find loads a refresh token record by its token string.
func (s *PostgresTokenStore) Find(ctx context.Context, token string) (models.RefreshToken, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return models.RefreshToken{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT token, user_id, expires_at, revoked_at, created_at, updated_at
        FROM refresh_tokens
        WHERE token = $1
    `, token)

	var (
		stored    models.RefreshToken
		revokedAt sql.NullTime
	)
	if err := row.Scan(&stored.Token, &stored.UserID, &stored.ExpiresAt, &revokedAt, &stored.CreatedAt, &stored.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RefreshToken{}, auth.ErrTokenNotFound
		}
		return models.RefreshToken{}, fmt.Errorf("select refresh token: %w", err)
	}

	stored.ExpiresAt = stored.ExpiresAt.UTC()
	if revokedAt.Valid {
		t := revokedAt.Time.UTC()
		stored.RevokedAt = &t
	}
	return stored, nil
}

// Revoke stamps a refresh token with a revocation time. Revoking an already
// revoked token is a no-op so logout stays idempotent.
func (s *PostgresTokenStore) Revoke(ctx context.Context, token string, at time.Time) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE refresh_tokens
        SET revoked_at = COALESCE(revoked_at, $2),
            updated_at = $2
        WHERE token = $1
    `, token, at.UTC())
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return auth.ErrTokenNotFound
	}

	return nil
}

var _ auth.TokenStore = (*PostgresTokenStore)(nil)
