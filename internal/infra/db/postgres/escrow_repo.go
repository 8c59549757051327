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

var _ repository.EscrowRepository = (*EscrowRepo)(nil)

type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

func (r *EscrowRepo) Save(ctx context.Context, e *model.Escrow) error {
	const sql = `
INSERT INTO escrow (id, job_id, from_wallet, amount_usdc, status, tx_ref, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7);
`
	_, err := r.pool.Exec(ctx, sql, e.ID, e.JobID, e.FromWallet, e.Amount, e.Status, e.TxRef, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("Save escrow: %w", err)
	}
	return nil
}

func (r *EscrowRepo) FindByJob(ctx context.Context, jobID string) (*model.Escrow, error) {
	const sql = `
SELECT id, job_id, from_wallet, amount_usdc, status, tx_ref, created_at
  FROM escrow
 WHERE job_id = $1;
`
	var e model.Escrow
	var status string
	err := r.pool.QueryRow(ctx, sql, jobID).Scan(
		&e.ID, &e.JobID, &e.FromWallet, &e.Amount, &status, &e.TxRef, &e.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByJob escrow: %w", err)
	}
	e.Status = model.EscrowStatus(status)
	return &e, nil
}

func (r *EscrowRepo) Release(ctx context.Context, id, txRef string) error {
	const sql = `UPDATE escrow SET status = 'released', tx_ref = $2 WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, sql, id, txRef)
	if err != nil {
		return fmt.Errorf("Release escrow: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EscrowRepo) Refund(ctx context.Context, id string) error {
	const sql = `UPDATE escrow SET status = 'refunded' WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("Refund escrow: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *EscrowRepo) DeleteByJob(ctx context.Context, jobID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM escrow WHERE job_id = $1;`, jobID); err != nil {
		return fmt.Errorf("DeleteByJob escrow: %w", err)
	}
	return nil
}
