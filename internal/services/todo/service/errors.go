package service

import (
	stderrors "errors"
	"fmt"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/todo/storage"
)

var (
	// ErrEmailRegistered indicates a sign-up with an email another account holds.
	ErrEmailRegistered = apperrors.New(apperrors.CodeDuplicateEmail, "Email already registered")
	// ErrEmailInUse indicates a profile update to an email another account holds.
	ErrEmailInUse = apperrors.New(apperrors.CodeDuplicateEmail, "Email already in use")
	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = apperrors.New(apperrors.CodeInvalidCredentials, "Invalid credentials")
	// ErrUserNotFound indicates the session user no longer exists.
	ErrUserNotFound = apperrors.New(apperrors.CodeNotFound, "User not found")
	// ErrTaskNotFound indicates a missing task or one owned by someone else.
	ErrTaskNotFound = apperrors.New(apperrors.CodeNotFound, "Task not found")
	// ErrUnauthenticated indicates a call made without a user id.
	ErrUnauthenticated = apperrors.New(apperrors.CodeUnauthorized, "Unauthorized")
)

// translateNotFound swaps the storage sentinel for a caller-facing error and
// wraps everything else as an internal failure.
func translateNotFound(err error, notFound *apperrors.Error, op string) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, storage.ErrNotFound) {
		return notFound
	}
	return internal(op, err)
}

// internal keeps the cause for logs while the public message stays generic.
func internal(op string, err error) error {
	return apperrors.Wrap(apperrors.CodeUnknown, "", fmt.Errorf("%s: %w", op, err))
}
