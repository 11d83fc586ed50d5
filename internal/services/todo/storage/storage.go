package storage

import (
	"context"
	"time"

	"github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/todo/task"
	"github.com/louisbranch/taskboard/internal/services/todo/user"
)

var (
	// ErrNotFound indicates a requested record is missing or not visible to the caller.
	ErrNotFound = errors.New(errors.CodeNotFound, "record not found")
	// ErrDuplicateEmail indicates another account already holds the email.
	ErrDuplicateEmail = errors.New(errors.CodeDuplicateEmail, "email already exists")
)

// UserRecord is a stored account including its password hash.
type UserRecord struct {
	user.User
	PasswordHash string
}

// UserStore persists accounts keyed by id and unique email.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (UserRecord, error)
	CreateUser(ctx context.Context, record UserRecord) error
	GetUser(ctx context.Context, userID string) (UserRecord, error)
	UpdateUser(ctx context.Context, userID string, patch user.ProfilePatch, updatedAt time.Time) (UserRecord, error)
}

// TaskStore persists tasks. Every lookup and mutation is scoped to ownerID.
type TaskStore interface {
	InsertTask(ctx context.Context, t task.Task) error
	ListTasksByOwner(ctx context.Context, ownerID string) ([]task.Task, error)
	GetTask(ctx context.Context, taskID, ownerID string) (task.Task, error)
	UpdateTask(ctx context.Context, taskID, ownerID string, patch task.Patch, updatedAt time.Time) (task.Task, error)
	DeleteTask(ctx context.Context, taskID, ownerID string) error
}

// SessionRevocationStore tracks logged-out token ids until they expire.
type SessionRevocationStore interface {
	RevokeSession(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, tokenID string) (bool, error)
	DeleteExpiredRevocations(ctx context.Context, now time.Time) (int64, error)
}
