package task

import (
	"context"
	"errors"
	"time"
)

// Status is the lifecycle state of an analysis task.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Task tracks one background analysis run. ResultID is set only once the
// run has completed.
type Task struct {
	ID        string
	Status    Status
	Message   string
	ResultID  string
	Error     string
	Retryable bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists tasks and the results of completed tasks.
type Store interface {
	Create(ctx context.Context, t Task) error
	Get(ctx context.Context, taskID string) (Task, error)
	// Complete stores the result payload and marks the task completed in one step.
	Complete(ctx context.Context, taskID, resultID string, result []byte) error
	Fail(ctx context.Context, taskID, message string, retryable bool) error
	Result(ctx context.Context, resultID string) ([]byte, error)
}

var (
	ErrNotFound      = errors.New("task not found")
	ErrAlreadyExists = errors.New("task already exists")
	ErrNotProcessing = errors.New("task is not processing")
)

// Messages reported alongside each status.
const (
	MessageProcessing = "Your analysis is still being processed. Please check back in a few moments."
	MessageCompleted  = "Analysis complete"
)
