package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	apperrors "github.com/louisbranch/taskboard/internal/platform/errors"
	"github.com/louisbranch/taskboard/internal/services/todo/storage"
	"github.com/louisbranch/taskboard/internal/services/todo/task"
)

func newTaskFixture(t *testing.T) (*TaskService, *fakeTaskStore) {
	t.Helper()
	store := newFakeTaskStore()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	clock := func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	svc, err := NewTaskService(store, clock, sequenceIDs("task"))
	if err != nil {
		t.Fatalf("new task service: %v", err)
	}
	return svc, store
}

func TestNewTaskServiceRequiresStore(t *testing.T) {
	if _, err := NewTaskService(nil, nil, nil); err == nil {
		t.Fatal("expected error for nil store")
	}
}

func TestCreateTask(t *testing.T) {
	svc, _ := newTaskFixture(t)

	created, err := svc.CreateTask(context.Background(), "user-1", "  Buy milk ")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if created.Title != "Buy milk" || created.Completed || created.UserID != "user-1" {
		t.Fatalf("unexpected task: %+v", created)
	}

	_, err = svc.CreateTask(context.Background(), "user-1", "   ")
	assertMessage(t, err, apperrors.CodeValidation, "Task title is required")

	_, err = svc.CreateTask(context.Background(), "user-1", strings.Repeat("x", 201))
	assertMessage(t, err, apperrors.CodeValidation, "Title too long")

	if _, err := svc.CreateTask(context.Background(), "", "x"); apperrors.GetCode(err) != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestCreateTaskStoreFailure(t *testing.T) {
	svc, store := newTaskFixture(t)
	store.insertErr = errors.New("disk full")
	if _, err := svc.CreateTask(context.Background(), "user-1", "x"); apperrors.HTTPStatus(err) != 500 {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestListTasksIsOwnerScopedAndOrdered(t *testing.T) {
	svc, _ := newTaskFixture(t)
	ctx := context.Background()

	empty, err := svc.ListTasks(ctx, "user-1")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}

	for _, title := range []string{"one", "two", "three"} {
		if _, err := svc.CreateTask(ctx, "user-1", title); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}
	if _, err := svc.CreateTask(ctx, "user-2", "theirs"); err != nil {
		t.Fatalf("create task: %v", err)
	}

	tasks, err := svc.ListTasks(ctx, "user-1")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}
	for idx, want := range []string{"one", "two", "three"} {
		if tasks[idx].Title != want || tasks[idx].UserID != "user-1" {
			t.Fatalf("tasks[%d] = %+v, want title %q", idx, tasks[idx], want)
		}
	}
}

func TestListTasksStoreFailure(t *testing.T) {
	svc, store := newTaskFixture(t)
	store.listErr = errors.New("locked")
	if _, err := svc.ListTasks(context.Background(), "user-1"); apperrors.HTTPStatus(err) != 500 {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestUpdateTask(t *testing.T) {
	svc, _ := newTaskFixture(t)
	ctx := context.Background()
	created, err := svc.CreateTask(ctx, "user-1", "Buy milk")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	done := true
	updated, err := svc.UpdateTask(ctx, "user-1", created.ID, task.Patch{Completed: &done})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if !updated.Completed || updated.Title != "Buy milk" {
		t.Fatalf("unexpected task: %+v", updated)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated at to advance: %v -> %v", created.UpdatedAt, updated.UpdatedAt)
	}
}

func TestUpdateTaskEmptyPatchSkipsStore(t *testing.T) {
	svc, store := newTaskFixture(t)

	_, err := svc.UpdateTask(context.Background(), "user-1", "task-1", task.Patch{})
	assertMessage(t, err, apperrors.CodeInvalidInput, "At least one field (title or completed) must be provided")
	if store.gets != 0 || store.updates != 0 {
		t.Fatalf("expected no store access, got gets=%d updates=%d", store.gets, store.updates)
	}
}

func TestUpdateTaskRejectsForeignOwner(t *testing.T) {
	svc, store := newTaskFixture(t)
	ctx := context.Background()
	created, err := svc.CreateTask(ctx, "user-1", "Buy milk")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	done := true
	_, err = svc.UpdateTask(ctx, "user-2", created.ID, task.Patch{Completed: &done})
	assertMessage(t, err, apperrors.CodeNotFound, "Task not found")
	if store.updates != 0 {
		t.Fatalf("expected no update, got %d", store.updates)
	}
	if store.tasks[created.ID].Completed {
		t.Fatal("foreign owner mutated the task")
	}
}

func TestUpdateTaskInvalidTitle(t *testing.T) {
	svc, _ := newTaskFixture(t)
	empty := " "
	_, err := svc.UpdateTask(context.Background(), "user-1", "missing", task.Patch{Title: &empty})
	assertMessage(t, err, apperrors.CodeValidation, "Task title is required")
}

func TestDeleteTask(t *testing.T) {
	svc, _ := newTaskFixture(t)
	ctx := context.Background()
	created, err := svc.CreateTask(ctx, "user-1", "Buy milk")
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	err = svc.DeleteTask(ctx, "user-2", created.ID)
	assertMessage(t, err, apperrors.CodeNotFound, "Task not found")

	if err := svc.DeleteTask(ctx, "user-1", created.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	err = svc.DeleteTask(ctx, "user-1", created.ID)
	assertMessage(t, err, apperrors.CodeNotFound, "Task not found")

	tasks, err := svc.ListTasks(ctx, "user-1")
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no tasks, got %+v", tasks)
	}
}

var _ storage.TaskStore = (*fakeTaskStore)(nil)
