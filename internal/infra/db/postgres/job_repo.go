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

var _ repository.JobRepository = (*JobRepo)(nil)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

const jobColumns = `id, poster_id, title, description, budget_usdc, status, agent_id, created_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	var j model.Job
	var status string
	err := row.Scan(&j.ID, &j.PosterID, &j.Title, &j.Description, &j.Budget, &status, &j.AgentID, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = model.JobStatus(status)
	return &j, nil
}

func (r *JobRepo) Save(ctx context.Context, j *model.Job) error {
	const sql = `
INSERT INTO jobs (id, poster_id, title, description, budget_usdc, status, agent_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE
  SET title       = EXCLUDED.title,
      description = EXCLUDED.description,
      budget_usdc = EXCLUDED.budget_usdc,
      status      = EXCLUDED.status,
      agent_id    = EXCLUDED.agent_id;
`
	_, err := r.pool.Exec(ctx, sql,
		j.ID, j.PosterID, j.Title, j.Description, j.Budget, j.Status, j.AgentID, j.CreatedAt)
	if err != nil {
		return fmt.Errorf("Save job: %w", err)
	}
	return nil
}

func (r *JobRepo) FindByID(ctx context.Context, id string) (*model.Job, error) {
	j, err := scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1;`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID job: %w", err)
	}
	return j, nil
}

func (r *JobRepo) ListAvailable(ctx context.Context) ([]*model.Job, error) {
	// ulid ids sort by creation time, so ordering by id keeps oldest-first.
	const sql = `SELECT ` + jobColumns + ` FROM jobs WHERE status = 'open' ORDER BY id ASC;`
	return r.list(ctx, sql)
}

func (r *JobRepo) ListByPoster(ctx context.Context, posterID string) ([]*model.Job, error) {
	const sql = `SELECT ` + jobColumns + ` FROM jobs WHERE poster_id = $1 ORDER BY id DESC;`
	return r.list(ctx, sql, posterID)
}

func (r *JobRepo) list(ctx context.Context, sql string, args ...interface{}) ([]*model.Job, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()
	var out []*model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Claim is the single contended write of the system. The conditional UPDATE
// is atomic: exactly one concurrent caller flips open -> claimed, everyone
// else sees zero rows affected and gets ErrConflict.
func (r *JobRepo) Claim(ctx context.Context, jobID, agentID string) error {
	const sql = `
UPDATE jobs
   SET status   = 'claimed',
       agent_id = $2
 WHERE id = $1
   AND status = 'open';
`
	ct, err := r.pool.Exec(ctx, sql, jobID, agentID)
	if err != nil {
		return fmt.Errorf("Claim job: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	// Distinguish a lost race from a missing job.
	if _, err := r.FindByID(ctx, jobID); err != nil {
		return err
	}
	return domain.ErrConflict
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id string, status model.JobStatus) error {
	const sql = `UPDATE jobs SET status = $2 WHERE id = $1;`
	ct, err := r.pool.Exec(ctx, sql, id, status)
	if err != nil {
		return fmt.Errorf("UpdateStatus job: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *JobRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("Delete job: %w", err)
	}
	return nil
}
