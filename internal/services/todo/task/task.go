// Package task holds the task model and its validation rules.
package task

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/platform/id"
)

const maxTitleLength = 200

var (
	// ErrTitleRequired indicates a title that is empty after trimming.
	ErrTitleRequired = apperrors.New(apperrors.CodeValidation, "Task title is required")
	// ErrTitleTooLong indicates a title longer than 200 characters.
	ErrTitleTooLong = apperrors.New(apperrors.CodeValidation, "Title too long")
	// ErrOwnerRequired indicates a task without an owner id.
	ErrOwnerRequired = apperrors.New(apperrors.CodeValidation, "Task owner is required")
	// ErrEmptyPatch indicates a task update with no fields set.
	ErrEmptyPatch = apperrors.New(apperrors.CodeInvalidInput, "At least one field (title or completed) must be provided")
)

// Task is a to-do item. UserID is the owner and never changes after creation.
type Task struct {
	ID        string
	Title     string
	Completed bool
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Patch is a partial task update. Nil fields are left unchanged.
type Patch struct {
	Title     *string
	Completed *bool
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Completed == nil
}

// CreateTask validates the title and mints an incomplete task for ownerID.
func CreateTask(ownerID, title string, now func() time.Time, idGenerator func() (string, error)) (Task, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewSortableID
	}

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return Task{}, ErrOwnerRequired
	}
	title, err := NormalizeTitle(title)
	if err != nil {
		return Task{}, err
	}

	taskID, err := idGenerator()
	if err != nil {
		return Task{}, fmt.Errorf("generate task id: %w", err)
	}

	// Stored timestamps keep millisecond precision.
	createdAt := now().UTC().Truncate(time.Millisecond)
	return Task{
		ID:        taskID,
		Title:     title,
		Completed: false,
		UserID:    ownerID,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// NormalizeTitle trims and NFC-normalizes a title and enforces 1-200 characters.
func NormalizeTitle(title string) (string, error) {
	title = norm.NFC.String(strings.TrimSpace(title))
	length := utf8.RuneCountInString(title)
	if length == 0 {
		return "", ErrTitleRequired
	}
	if length > maxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// NormalizePatch validates supplied fields, then requires at least one.
func NormalizePatch(patch Patch) (Patch, error) {
	if patch.IsEmpty() {
		return Patch{}, ErrEmptyPatch
	}
	out := Patch{Completed: patch.Completed}
	if patch.Title != nil {
		title, err := NormalizeTitle(*patch.Title)
		if err != nil {
			return Patch{}, err
		}
		out.Title = &title
	}
	return out, nil
}

// Apply returns t with the patch applied. Ownership is never touched.
func (t Task) Apply(patch Patch, updatedAt time.Time) Task {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	t.UpdatedAt = updatedAt.UTC()
	return t
}
