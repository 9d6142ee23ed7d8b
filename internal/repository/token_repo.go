package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TokenRepo persists refresh tokens. Only the SHA-256 hash of a token is
// stored; validation looks rows up by hash.
type TokenRepo struct {
	db *sql.DB
}

func NewTokenRepo(db *sql.DB) *TokenRepo {
	return &TokenRepo{db: db}
}

// StoreRefresh saves a refresh token hash for a user.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	const q = `
INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, uuid.NewString(), userID, tokenHash, expiresAt.UTC())
	return err
}

// ValidateRefresh returns the owning user id when the hash matches a live,
// unrevoked token. Expired or unknown hashes yield ErrRefreshInvalid.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	const q = `
SELECT user_id FROM refresh_tokens
WHERE token_hash = ? AND revoked_at IS NULL AND expires_at > UTC_TIMESTAMP()`
	var userID string
	err := r.db.QueryRowContext(ctx, q, tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRefreshInvalid
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// RevokeByHash marks a single token revoked. Revoking an already revoked or
// unknown hash is a no-op.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	const q = `
UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
WHERE token_hash = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, tokenHash)
	return err
}

// RevokeAllForUser invalidates every live token of a user, e.g. on password
// change.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID string) error {
	const q = `
UPDATE refresh_tokens SET revoked_at = UTC_TIMESTAMP()
WHERE user_id = ? AND revoked_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, userID)
	return err
}
