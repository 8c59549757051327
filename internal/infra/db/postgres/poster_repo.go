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

var _ repository.PosterRepository = (*PosterRepo)(nil)

type PosterRepo struct {
	pool *pgxpool.Pool
}

func NewPosterRepo(pool *pgxpool.Pool) *PosterRepo {
	return &PosterRepo{pool: pool}
}

func (r *PosterRepo) Save(ctx context.Context, p *model.Poster) error {
	const sql = `
INSERT INTO posters (id, name, wallet_address, created_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE
  SET name           = EXCLUDED.name,
      wallet_address = EXCLUDED.wallet_address;
`
	_, err := r.pool.Exec(ctx, sql, p.ID, p.Name, p.WalletAddress, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("Save poster: %w", err)
	}
	return nil
}

func (r *PosterRepo) FindByID(ctx context.Context, id string) (*model.Poster, error) {
	const sql = `
SELECT id, name, wallet_address, created_at
  FROM posters
 WHERE id = $1;
`
	var p model.Poster
	if err := r.pool.QueryRow(ctx, sql, id).Scan(&p.ID, &p.Name, &p.WalletAddress, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("FindByID poster: %w", err)
	}
	return &p, nil
}
