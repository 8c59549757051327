package repository

import (
	"context"

	"agentmarket/internal/domain/model"
)

type PosterRepository interface {
	Save(ctx context.Context, p *model.Poster) error
	FindByID(ctx context.Context, id string) (*model.Poster, error)
}
