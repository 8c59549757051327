package postgres

import (
	"context"
	"fmt"

	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"
	"agentmarket/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.InstructionRepository = (*InstructionRepo)(nil)

type InstructionRepo struct {
	pool *pgxpool.Pool
}

func NewInstructionRepo(pool *pgxpool.Pool) *InstructionRepo {
	return &InstructionRepo{pool: pool}
}

func (r *InstructionRepo) Save(ctx context.Context, in *model.Instruction) error {
	const sql = `
INSERT INTO job_instructions (id, job_id, content, status, created_at)
VALUES ($1, $2, $3, $4, $5);
`
	if _, err := r.pool.Exec(ctx, sql, in.ID, in.JobID, in.Content, in.Status, in.CreatedAt); err != nil {
		return fmt.Errorf("Save instruction: %w", err)
	}
	return nil
}

func (r *InstructionRepo) ListPending(ctx context.Context, jobID string) ([]*model.Instruction, error) {
	const sql = `
SELECT id, job_id, content, status, created_at
  FROM job_instructions
 WHERE job_id = $1 AND status = 'pending'
 ORDER BY id ASC;
`
	rows, err := r.pool.Query(ctx, sql, jobID)
	if err != nil {
		return nil, fmt.Errorf("ListPending instructions: %w", err)
	}
	defer rows.Close()
	var out []*model.Instruction
	for rows.Next() {
		var in model.Instruction
		var status string
		if err := rows.Scan(&in.ID, &in.JobID, &in.Content, &status, &in.CreatedAt); err != nil {
			return nil, err
		}
		in.Status = model.InstructionStatus(status)
		out = append(out, &in)
	}
	return out, rows.Err()
}

func (r *InstructionRepo) MarkDelivered(ctx context.Context, id string) error {
	const sql = `UPDATE job_instructions SET status = 'delivered' WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, sql, id)
	if err != nil {
		return fmt.Errorf("MarkDelivered instruction: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *InstructionRepo) DeleteByJob(ctx context.Context, jobID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM job_instructions WHERE job_id = $1;`, jobID); err != nil {
		return fmt.Errorf("DeleteByJob instructions: %w", err)
	}
	return nil
}
