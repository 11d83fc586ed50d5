package task

import (
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
)

func TestCreateTaskDefaults(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	created, err := CreateTask("user-1", "  Buy milk ", func() time.Time { return now }, func() (string, error) { return "task-1", nil })
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.ID != "task-1" || created.Title != "Buy milk" || created.UserID != "user-1" {
		t.Fatalf("unexpected task: %+v", created)
	}
	if created.Completed {
		t.Fatal("expected new task to be incomplete")
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("unexpected timestamps: %+v", created)
	}
}

func TestCreateTaskGeneratesSortableID(t *testing.T) {
	first, err := CreateTask("user-1", "a", nil, nil)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	second, err := CreateTask("user-1", "b", nil, nil)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if len(first.ID) != 26 || second.ID <= first.ID {
		t.Fatalf("expected increasing ulids, got %q then %q", first.ID, second.ID)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	if _, err := CreateTask(" ", "title", nil, nil); !errors.Is(err, ErrOwnerRequired) {
		t.Fatalf("expected owner error, got %v", err)
	}
	if _, err := CreateTask("user-1", "", nil, nil); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected title required, got %v", err)
	}
	if _, err := CreateTask("user-1", "x", nil, func() (string, error) { return "", errors.New("entropy") }); err == nil {
		t.Fatal("expected id generation error")
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "single char", input: "x", want: "x"},
		{name: "trimmed", input: "\tcall mom\n", want: "call mom"},
		{name: "empty", input: "", wantErr: ErrTitleRequired},
		{name: "whitespace", input: "   ", wantErr: ErrTitleRequired},
		{name: "max", input: strings.Repeat("t", 200), want: strings.Repeat("t", 200)},
		{name: "too long", input: strings.Repeat("t", 201), wantErr: ErrTitleTooLong},
		{name: "multibyte at max", input: strings.Repeat("日", 200), want: strings.Repeat("日", 200)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeTitle(tc.input)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNormalizePatch(t *testing.T) {
	_, err := NormalizePatch(Patch{})
	if !errors.Is(err, ErrEmptyPatch) {
		t.Fatalf("expected empty patch error, got %v", err)
	}
	if apperrors.GetCode(err) != apperrors.CodeInvalidInput {
		t.Fatalf("expected invalid input code, got %s", apperrors.GetCode(err))
	}

	done := false
	patch, err := NormalizePatch(Patch{Completed: &done})
	if err != nil {
		t.Fatalf("completed=false must count as a field: %v", err)
	}
	if patch.Completed == nil || *patch.Completed {
		t.Fatal("expected completed=false to survive")
	}

	empty := ""
	if _, err := NormalizePatch(Patch{Title: &empty}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected title error, got %v", err)
	}

	title := " Walk dog "
	patch, err = NormalizePatch(Patch{Title: &title})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if *patch.Title != "Walk dog" {
		t.Fatalf("title = %q", *patch.Title)
	}
}

func TestApplyPatchKeepsOwner(t *testing.T) {
	base := Task{ID: "task-1", Title: "Buy milk", UserID: "user-1"}
	done := true
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	updated := base.Apply(Patch{Completed: &done}, at)
	if !updated.Completed || updated.Title != "Buy milk" || updated.UserID != "user-1" {
		t.Fatalf("unexpected task: %+v", updated)
	}
	if !updated.UpdatedAt.Equal(at) {
		t.Fatalf("updated at = %v", updated.UpdatedAt)
	}
}

func TestCreateTaskTruncatesToMillis(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 295928376, time.UTC)
	created, err := CreateTask("user-1", "Buy milk", func() time.Time { return now }, nil)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	want := time.Date(2026, 3, 1, 8, 0, 0, 295000000, time.UTC)
	if !created.CreatedAt.Equal(want) || !created.UpdatedAt.Equal(want) {
		t.Fatalf("timestamps = %v / %v, want %v", created.CreatedAt, created.UpdatedAt, want)
	}
}
