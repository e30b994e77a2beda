package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Task is a single todo item owned by one user.
type Task struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskUpdate carries optional field changes; nil means leave unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
}

// TaskStore manages task persistence.
type TaskStore struct {
	q querier
}

// Create adds a new task for the user.
func (ts *TaskStore) Create(ctx context.Context, userID, title, description string) (*Task, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id cannot be empty")
	}
	if title == "" {
		return nil, fmt.Errorf("task title cannot be empty")
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err := ts.q.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, 0, ?, ?)
	`, task.ID, task.UserID, task.Title, task.Description, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return task, nil
}

// GetByID returns the task if it exists and belongs to the user, nil otherwise.
func (ts *TaskStore) GetByID(ctx context.Context, id, userID string) (*Task, error) {
	rows, err := ts.q.QueryContext(ctx, `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("select task: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanTask(rows)
}

// ListByUser lists the user's tasks, oldest first. Completed tasks are
// included only when includeCompleted is set.
func (ts *TaskStore) ListByUser(ctx context.Context, userID string, includeCompleted bool) ([]Task, error) {
	query := `
		SELECT id, user_id, title, description, completed, created_at, updated_at
		FROM tasks
		WHERE user_id = ?
	`
	if !includeCompleted {
		query += ` AND completed = 0`
	}
	query += ` ORDER BY rowid`

	rows, err := ts.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("select tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

// SetCompleted marks the task completed or uncompleted.
func (ts *TaskStore) SetCompleted(ctx context.Context, id, userID string, completed bool) (*Task, error) {
	res, err := ts.q.ExecContext(ctx, `
		UPDATE tasks SET completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, boolToInt(completed), formatTime(time.Now().UTC()), id, userID)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if n, _ := res.RowsAffected(); n == 0 {
		return nil, nil
	}
	return ts.GetByID(ctx, id, userID)
}

// Update applies the non-nil fields of upd to the task.
func (ts *TaskStore) Update(ctx context.Context, id, userID string, upd TaskUpdate) (*Task, error) {
	task, err := ts.GetByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, nil
	}

	if upd.Title != nil {
		if *upd.Title == "" {
			return nil, fmt.Errorf("task title cannot be empty")
		}
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	task.UpdatedAt = time.Now().UTC()

	_, err = ts.q.ExecContext(ctx, `
		UPDATE tasks SET title = ?, description = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, task.Title, task.Description, formatTime(task.UpdatedAt), id, userID)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	return task, nil
}

// Delete removes the task if owned by the user.
func (ts *TaskStore) Delete(ctx context.Context, id, userID string) (bool, error) {
	res, err := ts.q.ExecContext(ctx, `
		DELETE FROM tasks WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanTask(rows *sql.Rows) (*Task, error) {
	var task Task
	var completed int
	var createdAt, updatedAt string

	if err := rows.Scan(&task.ID, &task.UserID, &task.Title, &task.Description,
		&completed, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.Completed = completed != 0
	task.CreatedAt = parseTime(createdAt)
	task.UpdatedAt = parseTime(updatedAt)

	return &task, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
