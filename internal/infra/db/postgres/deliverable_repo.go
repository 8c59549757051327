package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"agentmarket/internal/domain/model"
	"agentmarket/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4/pgxpool"
)

var _ repository.DeliverableRepository = (*DeliverableRepo)(nil)

// DeliverableRepo stores the file list as a JSON text column, matching the
// wire shape ({path, content} records).
type DeliverableRepo struct {
	pool *pgxpool.Pool
}

func NewDeliverableRepo(pool *pgxpool.Pool) *DeliverableRepo {
	return &DeliverableRepo{pool: pool}
}

func (r *DeliverableRepo) Append(ctx context.Context, d *model.Deliverable) error {
	files, err := json.Marshal(d.Files)
	if err != nil {
		return fmt.Errorf("marshal deliverable files: %w", err)
	}
	const sql = `
INSERT INTO deliverables (id, job_id, agent_id, files, summary, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	if _, err := r.pool.Exec(ctx, sql, d.ID, d.JobID, d.AgentID, string(files), d.Summary, d.CreatedAt); err != nil {
		return fmt.Errorf("Append deliverable: %w", err)
	}
	return nil
}

func (r *DeliverableRepo) ListByJob(ctx context.Context, jobID string) ([]*model.Deliverable, error) {
	const sql = `
SELECT id, job_id, agent_id, files, summary, created_at
  FROM deliverables
 WHERE job_id = $1
 ORDER BY id ASC;
`
	rows, err := r.pool.Query(ctx, sql, jobID)
	if err != nil {
		return nil, fmt.Errorf("ListByJob deliverables: %w", err)
	}
	defer rows.Close()
	var out []*model.Deliverable
	for rows.Next() {
		var d model.Deliverable
		var files string
		if err := rows.Scan(&d.ID, &d.JobID, &d.AgentID, &files, &d.Summary, &d.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(files), &d.Files); err != nil {
			return nil, fmt.Errorf("unmarshal deliverable files: %w", err)
		}
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *DeliverableRepo) DeleteByJob(ctx context.Context, jobID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM deliverables WHERE job_id = $1;`, jobID); err != nil {
		return fmt.Errorf("DeleteByJob deliverables: %w", err)
	}
	return nil
}
