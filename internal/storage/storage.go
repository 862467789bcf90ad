package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("not found")

// DefaultKey is where the editor keeps its serialized files.
const DefaultKey = "editor-files"

// Execution is one logged run on the execution service.
type Execution struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Language      string    `json:"language"`
	Output        string    `json:"output"`
	Error         string    `json:"error,omitempty"`
	ExecutionTime float64   `json:"execution_time"`
	Timestamp     time.Time `json:"timestamp"`
}

// Store is the persistence interface for editor state and execution history.
type Store interface {
	// GetBlob returns the value stored under key, or ErrNotFound.
	GetBlob(ctx context.Context, key string) (string, error)

	// PutBlob overwrites the value stored under key.
	PutBlob(ctx context.Context, key, value string) error

	// RecordExecution appends to the execution log. The ID field must be set
	// by the caller; a zero Timestamp is replaced by the current time.
	RecordExecution(ctx context.Context, e *Execution) error

	// ListExecutions returns the most recent executions, newest first.
	ListExecutions(ctx context.Context, limit int) ([]Execution, error)

	// Close releases resources.
	Close() error
}
