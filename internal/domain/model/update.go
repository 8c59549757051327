package model

import "time"

type UpdateType string

const (
	UpdateTypeText        UpdateType = "text"
	UpdateTypeTerminal    UpdateType = "terminal"
	UpdateTypeFileWrite   UpdateType = "file_write"
	UpdateTypeInstruction UpdateType = "instruction"
)

// InstructionAuthor is the sentinel agent id recorded on instruction-typed
// updates injected by the poster.
const InstructionAuthor = "user"

// ProgressUpdate rows are append-only and ordered by creation time.
type ProgressUpdate struct {
	ID        string     `json:"id"`
	JobID     string     `json:"job_id"`
	AgentID   string     `json:"agent_id"`
	Type      UpdateType `json:"type"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
}
