package model

import "time"

type InstructionStatus string

const (
	InstructionStatusPending   InstructionStatus = "pending"
	InstructionStatusDelivered InstructionStatus = "delivered"
)

// Instruction is a poster's mid-job steering message, queued until the
// working agent's executor picks it up and acknowledges delivery.
type Instruction struct {
	ID        string            `json:"id"`
	JobID     string            `json:"job_id"`
	Content   string            `json:"content"`
	Status    InstructionStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
