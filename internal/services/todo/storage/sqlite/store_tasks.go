package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/taskboard/internal/services/todo/storage"
	"github.com/louisbranch/taskboard/internal/services/todo/task"
)

const taskColumns = `id, user_id, title, completed, created_at, updated_at`

func scanTask(row rowScanner) (task.Task, error) {
	var t task.Task
	var completed int
	var createdAt, updatedAt int64
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &completed, &createdAt, &updatedAt); err != nil {
		return task.Task{}, err
	}
	t.Completed = completed != 0
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

func requireTaskKeys(taskID, ownerID string) error {
	if strings.TrimSpace(taskID) == "" {
		return fmt.Errorf("task id is required")
	}
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("owner id is required")
	}
	return nil
}

// InsertTask stores a new task.
func (s *Store) InsertTask(ctx context.Context, t task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireTaskKeys(t.ID, t.UserID); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.UserID,
		t.Title,
		boolToInt(t.Completed),
		toMillis(t.CreatedAt),
		toMillis(t.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// ListTasksByOwner returns the owner's tasks in insertion order.
func (s *Store) ListTasksByOwner(ctx context.Context, ownerID string) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("owner id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at, id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]task.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetTask returns a task only when ownerID owns it.
func (s *Store) GetTask(ctx context.Context, taskID, ownerID string) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	if err := requireTaskKeys(taskID, ownerID); err != nil {
		return task.Task{}, err
	}

	t, err := scanTask(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, taskID, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, storage.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask applies a partial update to an owned task and returns the result.
func (s *Store) UpdateTask(ctx context.Context, taskID, ownerID string, patch task.Patch, updatedAt time.Time) (task.Task, error) {
	if err := ctx.Err(); err != nil {
		return task.Task{}, err
	}
	if err := requireTaskKeys(taskID, ownerID); err != nil {
		return task.Task{}, err
	}

	var title sql.NullString
	if patch.Title != nil {
		title = sql.NullString{String: *patch.Title, Valid: true}
	}
	var completed sql.NullInt64
	if patch.Completed != nil {
		completed = sql.NullInt64{Int64: int64(boolToInt(*patch.Completed)), Valid: true}
	}

	t, err := scanTask(s.sqlDB.QueryRowContext(ctx, `
UPDATE tasks
SET title = COALESCE(?1, title),
    completed = COALESCE(?2, completed),
    updated_at = ?3
WHERE id = ?4 AND user_id = ?5
RETURNING `+taskColumns,
		title,
		completed,
		toMillis(updatedAt),
		taskID,
		ownerID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, storage.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// DeleteTask removes an owned task.
func (s *Store) DeleteTask(ctx context.Context, taskID, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireTaskKeys(taskID, ownerID); err != nil {
		return err
	}

	result, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}
