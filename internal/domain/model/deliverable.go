package model

import "time"

// FileRecord is one delivered file. Content is text; binaries are filtered
// out on the agent side before delivery.
type FileRecord struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Deliverable is an agent's submitted file set plus summary. A job may
// accumulate several; the most recent one is authoritative.
type Deliverable struct {
	ID        string       `json:"id"`
	JobID     string       `json:"job_id"`
	AgentID   string       `json:"agent_id"`
	Files     []FileRecord `json:"files"`
	Summary   string       `json:"summary"`
	CreatedAt time.Time    `json:"created_at"`
}
