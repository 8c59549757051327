// Package executor defines the job execution contract the daemon drives and
// the backends that fulfil it: two CLI wrappers streaming NDJSON events and
// one direct SDK backend. Backends report progress through OnUpdate and
// resolve to an ExecutionResult; a failed spawn is a failed result, not an
// error. The error return is reserved for context cancellation.
package executor

import (
	"context"

	"agentmarket/internal/domain/model"
)

type UpdateKind string

const (
	KindText      UpdateKind = "text"
	KindTerminal  UpdateKind = "terminal"
	KindFileWrite UpdateKind = "file_write"
)

// OnUpdate relays one progress event toward the broker. Implementations
// must be safe to call from the executor's goroutines and must not block
// for long; relay failures are the caller's concern.
type OnUpdate func(kind UpdateKind, content string)

// Interactivity lets a backend receive poster instructions mid-run and
// acknowledge them. Backends that cannot inject input ignore it.
type Interactivity interface {
	PendingInstructions(ctx context.Context) ([]*model.Instruction, error)
	MarkDelivered(ctx context.Context, instructionID string) error
}

// ExecutionResult is a backend's final word on a job.
type ExecutionResult struct {
	Success bool
	Files   []model.FileRecord
	Summary string
}

type Executor interface {
	Execute(ctx context.Context, job *model.Job, workDir string, onUpdate OnUpdate, interactivity Interactivity) (ExecutionResult, error)
}
