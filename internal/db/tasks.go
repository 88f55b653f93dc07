package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateTask records a pending task row.
func (db *DB) CreateTask(ctx context.Context, id uuid.UUID, kind string, payload []byte) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO tasks (id, kind, payload, status) VALUES ($1, $2, $3, $4)`,
		id, kind, payload, TaskPending,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// MarkTaskRunning transitions a task to running.
func (db *DB) MarkTaskRunning(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE tasks SET status = $1, started_at = NOW() WHERE id = $2`,
		TaskRunning, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark task running: %w", err)
	}
	return nil
}

// CompleteTask records a task result. A non-empty errMsg marks the task
// failed; otherwise it is completed.
func (db *DB) CompleteTask(ctx context.Context, id uuid.UUID, result []byte, errMsg string) error {
	status := TaskCompleted
	if errMsg != "" {
		status = TaskFailed
	}
	_, err := db.pool.Exec(ctx,
		`UPDATE tasks SET status = $1, result = $2, error = NULLIF($3, ''), finished_at = NOW()
		 WHERE id = $4`,
		status, result, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID. Returns (nil, nil) when not found.
func (db *DB) GetTask(ctx context.Context, id uuid.UUID) (*Task, error) {
	var t Task
	var errMsg *string
	err := db.pool.QueryRow(ctx,
		`SELECT id, kind, payload, status, result, error, created_at, started_at, finished_at
		 FROM tasks WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Kind, &t.Payload, &t.Status, &t.Result, &errMsg,
		&t.CreatedAt, &t.StartedAt, &t.FinishedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	if errMsg != nil {
		t.Error = *errMsg
	}
	return &t, nil
}
