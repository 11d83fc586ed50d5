package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/taskboard/internal/services/todo/storage"
	"github.com/louisbranch/taskboard/internal/services/todo/user"
)

const userColumns = `id, name, email, password_hash, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (storage.UserRecord, error) {
	var record storage.UserRecord
	var createdAt, updatedAt int64
	if err := row.Scan(
		&record.ID,
		&record.Name,
		&record.Email,
		&record.PasswordHash,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.UserRecord{}, err
	}
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

// GetUserByEmail looks up an account by its normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, err
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return storage.UserRecord{}, fmt.Errorf("email is required")
	}

	record, err := scanUser(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.UserRecord{}, storage.ErrNotFound
		}
		return storage.UserRecord{}, fmt.Errorf("get user by email: %w", err)
	}
	return record, nil
}

// CreateUser inserts a new account. A taken email yields storage.ErrDuplicateEmail.
func (s *Store) CreateUser(ctx context.Context, record storage.UserRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("user id is required")
	}
	if strings.TrimSpace(record.Email) == "" {
		return fmt.Errorf("email is required")
	}
	if record.PasswordHash == "" {
		return fmt.Errorf("password hash is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.Name,
		record.Email,
		record.PasswordHash,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser looks up an account by id.
func (s *Store) GetUser(ctx context.Context, userID string) (storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return storage.UserRecord{}, fmt.Errorf("user id is required")
	}

	record, err := scanUser(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.UserRecord{}, storage.ErrNotFound
		}
		return storage.UserRecord{}, fmt.Errorf("get user: %w", err)
	}
	return record, nil
}

// UpdateUser applies a profile patch. Changing the email to one held by
// another account yields storage.ErrDuplicateEmail.
func (s *Store) UpdateUser(ctx context.Context, userID string, patch user.ProfilePatch, updatedAt time.Time) (storage.UserRecord, error) {
	if err := ctx.Err(); err != nil {
		return storage.UserRecord{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return storage.UserRecord{}, fmt.Errorf("user id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.UserRecord{}, fmt.Errorf("begin update user: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, err := scanUser(tx.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.UserRecord{}, storage.ErrNotFound
		}
		return storage.UserRecord{}, fmt.Errorf("load user: %w", err)
	}

	if patch.Email != nil && *patch.Email != current.Email {
		var taken int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM users WHERE email = ? AND id <> ?`, *patch.Email, userID).Scan(&taken)
		if err == nil {
			return storage.UserRecord{}, storage.ErrDuplicateEmail
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return storage.UserRecord{}, fmt.Errorf("check email: %w", err)
		}
	}

	updated := storage.UserRecord{
		User:         current.User.Apply(patch, updatedAt),
		PasswordHash: current.PasswordHash,
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
		updated.Name,
		updated.Email,
		toMillis(updated.UpdatedAt),
		userID,
	); err != nil {
		if isUniqueViolation(err) {
			return storage.UserRecord{}, storage.ErrDuplicateEmail
		}
		return storage.UserRecord{}, fmt.Errorf("update user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.UserRecord{}, fmt.Errorf("commit update user: %w", err)
	}
	updated.UpdatedAt = fromMillis(toMillis(updated.UpdatedAt))
	return updated, nil
}
