package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// RevokeSession records a token id as revoked until expiresAt. Revoking the
// same id twice keeps the later expiry.
func (s *Store) RevokeSession(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("token id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO revoked_sessions (token_id, expires_at) VALUES (?, ?)
ON CONFLICT(token_id) DO UPDATE SET expires_at = MAX(expires_at, excluded.expires_at)`,
		tokenID,
		toMillis(expiresAt),
	)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// IsSessionRevoked reports whether tokenID has been revoked.
func (s *Store) IsSessionRevoked(ctx context.Context, tokenID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if strings.TrimSpace(tokenID) == "" {
		return false, nil
	}

	var found int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT 1 FROM revoked_sessions WHERE token_id = ?`, tokenID).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check revoked session: %w", err)
	}
	return true, nil
}

// DeleteExpiredRevocations drops revocations whose token can no longer verify.
func (s *Store) DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	result, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM revoked_sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired revocations: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired revocations rows: %w", err)
	}
	return deleted, nil
}
