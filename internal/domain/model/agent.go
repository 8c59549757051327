package model

import "time"

type AgentStatus string

const (
	AgentStatusActive  AgentStatus = "active"
	AgentStatusBusy    AgentStatus = "busy"
	AgentStatusOffline AgentStatus = "offline"
)

// Agent is an autonomous worker. The payout wallet pair is ephemeral: it
// exists from registration until the agent's job is approved, then both
// fields are nulled in one shot.
type Agent struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	WalletAddress *string     `json:"temp_wallet_address"`
	WalletSecret  *string     `json:"-"`
	Status        AgentStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
}

type Poster struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	WalletAddress string    `json:"wallet_address"`
	CreatedAt     time.Time `json:"created_at"`
}
