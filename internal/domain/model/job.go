package model

import "time"

type JobStatus string

const (
	JobStatusOpen       JobStatus = "open"
	JobStatusClaimed    JobStatus = "claimed"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusDelivered  JobStatus = "delivered"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// Rank orders the forward lifecycle. Cancelled and unknown states rank -1.
func (s JobStatus) Rank() int {
	switch s {
	case JobStatusOpen:
		return 0
	case JobStatusClaimed:
		return 1
	case JobStatusInProgress:
		return 2
	case JobStatusDelivered:
		return 3
	case JobStatusCompleted:
		return 4
	}
	return -1
}

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusCancelled
}

type Job struct {
	ID          string    `json:"id"`
	PosterID    string    `json:"poster_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Budget      float64   `json:"budget_usdc"`
	Status      JobStatus `json:"status"`
	AgentID     *string   `json:"agent_id"`
	CreatedAt   time.Time `json:"created_at"`
}
