package postgres

import (
	"context"
	"fmt"

	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"
	"agentmarket/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.AgentRepository = (*AgentRepo)(nil)

type AgentRepo struct {
	pool *pgxpool.Pool
}

func NewAgentRepo(pool *pgxpool.Pool) *AgentRepo {
	return &AgentRepo{pool: pool}
}

func (r *AgentRepo) Save(ctx context.Context, a *model.Agent) error {
	const sql = `
INSERT INTO agents (id, name, temp_wallet_address, temp_wallet_secret, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE
  SET name                = EXCLUDED.name,
      temp_wallet_address = EXCLUDED.temp_wallet_address,
      temp_wallet_secret  = EXCLUDED.temp_wallet_secret,
      status              = EXCLUDED.status;
`
	_, err := r.pool.Exec(ctx, sql, a.ID, a.Name, a.WalletAddress, a.WalletSecret, a.Status, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("Save agent: %w", err)
	}
	return nil
}

func (r *AgentRepo) FindByID(ctx context.Context, id string) (*model.Agent, error) {
	const sql = `
SELECT id, name, temp_wallet_address, temp_wallet_secret, status, created_at
  FROM agents
 WHERE id = $1;
`
	var a model.Agent
	var status string
	err := r.pool.QueryRow(ctx, sql, id).Scan(
		&a.ID, &a.Name, &a.WalletAddress, &a.WalletSecret, &status, &a.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID agent: %w", err)
	}
	a.Status = model.AgentStatus(status)
	return &a, nil
}

func (r *AgentRepo) UpdateStatus(ctx context.Context, id string, status model.AgentStatus) error {
	const sql = `UPDATE agents SET status = $2 WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, sql, id, status)
	if err != nil {
		return fmt.Errorf("UpdateStatus agent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AgentRepo) DestroyWallet(ctx context.Context, id string) error {
	const sql = `
UPDATE agents
   SET temp_wallet_address = NULL,
       temp_wallet_secret  = NULL
 WHERE id = $1;
`
	ct, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("DestroyWallet agent: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
