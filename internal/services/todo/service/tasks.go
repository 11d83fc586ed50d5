package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	platformotel "github.com/louisbranch/taskboard/internal/platform/otel"
	"github.com/louisbranch/taskboard/internal/services/todo/storage"
	"github.com/louisbranch/taskboard/internal/services/todo/task"
)

// TaskService implements owner-scoped task operations.
type TaskService struct {
	tasks       storage.TaskStore
	clock       func() time.Time
	idGenerator func() (string, error)
	tracer      trace.Tracer
}

// NewTaskService builds a TaskService. clock and idGenerator may be nil.
func NewTaskService(tasks storage.TaskStore, clock func() time.Time, idGenerator func() (string, error)) (*TaskService, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task store is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &TaskService{
		tasks:       tasks,
		clock:       clock,
		idGenerator: idGenerator,
		tracer:      platformotel.Tracer(tracerName),
	}, nil
}

// CreateTask stores a new incomplete task for ownerID.
func (s *TaskService) CreateTask(ctx context.Context, ownerID, title string) (task.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.CreateTask", trace.WithAttributes(attribute.String("user.id", ownerID)))
	defer span.End()

	if ownerID == "" {
		return task.Task{}, ErrUnauthenticated
	}
	created, err := task.CreateTask(ownerID, title, s.clock, s.idGenerator)
	if err != nil {
		return task.Task{}, err
	}
	if err := s.tasks.InsertTask(ctx, created); err != nil {
		return task.Task{}, internal("insert task", err)
	}
	return created, nil
}

// ListTasks returns the owner's tasks in creation order. Never nil.
func (s *TaskService) ListTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.ListTasks", trace.WithAttributes(attribute.String("user.id", ownerID)))
	defer span.End()

	if ownerID == "" {
		return nil, ErrUnauthenticated
	}
	tasks, err := s.tasks.ListTasksByOwner(ctx, ownerID)
	if err != nil {
		return nil, internal("list tasks", err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// UpdateTask validates the patch, confirms ownership, then applies it.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID string, patch task.Patch) (task.Task, error) {
	ctx, span := s.tracer.Start(ctx, "TaskService.UpdateTask", trace.WithAttributes(
		attribute.String("user.id", ownerID),
		attribute.String("task.id", taskID),
	))
	defer span.End()

	if ownerID == "" {
		return task.Task{}, ErrUnauthenticated
	}
	normalized, err := task.NormalizePatch(patch)
	if err != nil {
		return task.Task{}, err
	}
	if taskID == "" {
		return task.Task{}, ErrTaskNotFound
	}
	if _, err := s.tasks.GetTask(ctx, taskID, ownerID); err != nil {
		return task.Task{}, translateNotFound(err, ErrTaskNotFound, "get task")
	}

	updated, err := s.tasks.UpdateTask(ctx, taskID, ownerID, normalized, s.clock())
	if err != nil {
		// Deleted between the ownership check and the update.
		return task.Task{}, translateNotFound(err, ErrTaskNotFound, "update task")
	}
	return updated, nil
}

// DeleteTask removes an owned task. Deleting twice reports not found.
func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID string) error {
	ctx, span := s.tracer.Start(ctx, "TaskService.DeleteTask", trace.WithAttributes(
		attribute.String("user.id", ownerID),
		attribute.String("task.id", taskID),
	))
	defer span.End()

	if ownerID == "" {
		return ErrUnauthenticated
	}
	if taskID == "" {
		return ErrTaskNotFound
	}
	if _, err := s.tasks.GetTask(ctx, taskID, ownerID); err != nil {
		return translateNotFound(err, ErrTaskNotFound, "get task")
	}
	if err := s.tasks.DeleteTask(ctx, taskID, ownerID); err != nil {
		return translateNotFound(err, ErrTaskNotFound, "delete task")
	}
	return nil
}
