package model

import "time"

type EscrowStatus string

const (
	EscrowStatusFunded   EscrowStatus = "funded"
	EscrowStatusReleased EscrowStatus = "released"
	EscrowStatusRefunded EscrowStatus = "refunded"
)

// Escrow holds a job's budget from posting until approval. Created
// synchronously with its job; amount always equals the job budget.
type Escrow struct {
	ID         string       `json:"id"`
	JobID      string       `json:"job_id"`
	FromWallet string       `json:"from_wallet"`
	Amount     float64      `json:"amount_usdc"`
	Status     EscrowStatus `json:"status"`
	TxRef      *string      `json:"tx_hash"`
	CreatedAt  time.Time    `json:"created_at"`
}
