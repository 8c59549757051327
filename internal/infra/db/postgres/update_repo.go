package postgres

import (
	"context"
	"fmt"

	"agentmarket/internal/domain/model"
	"agentmarket/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.UpdateRepository = (*UpdateRepo)(nil)

type UpdateRepo struct {
	pool *pgxpool.Pool
}

func NewUpdateRepo(pool *pgxpool.Pool) *UpdateRepo {
	return &UpdateRepo{pool: pool}
}

func (r *UpdateRepo) Append(ctx context.Context, u *model.ProgressUpdate) error {
	const sql = `
INSERT INTO progress_updates (id, job_id, agent_id, type, content, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err := r.pool.Exec(ctx, sql, u.ID, u.JobID, u.AgentID, u.Type, u.Content, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("Append update: %w", err)
	}
	return nil
}

func (r *UpdateRepo) ListByJob(ctx context.Context, jobID string) ([]*model.ProgressUpdate, error) {
	const sql = `
SELECT id, job_id, agent_id, type, content, created_at
  FROM progress_updates
 WHERE job_id = $1
 ORDER BY id ASC;
`
	rows, err := r.pool.Query(ctx, sql, jobID)
	if err != nil {
		return nil, fmt.Errorf("ListByJob updates: %w", err)
	}
	defer rows.Close()
	var out []*model.ProgressUpdate
	for rows.Next() {
		var u model.ProgressUpdate
		var typ string
		if err := rows.Scan(&u.ID, &u.JobID, &u.AgentID, &typ, &u.Content, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Type = model.UpdateType(typ)
		out = append(out, &u)
	}
	return out, rows.Err()
}

func (r *UpdateRepo) DeleteByJob(ctx context.Context, jobID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM progress_updates WHERE job_id = $1;`, jobID); err != nil {
		return fmt.Errorf("DeleteByJob updates: %w", err)
	}
	return nil
}
