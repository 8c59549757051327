package usecase

import (
	"context"
	"time"

	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"
	"agentmarket/internal/domain/ports/repository"
)

// PosterUseCase manages job posters.
type PosterUseCase struct {
	repo repository.PosterRepository
}

func NewPosterUseCase(repo repository.PosterRepository) *PosterUseCase {
	return &PosterUseCase{repo: repo}
}

// Register creates a poster with an externally supplied wallet address.
func (uc *PosterUseCase) Register(ctx context.Context, name, walletAddress string) (*model.Poster, error) {
	if name == "" || walletAddress == "" {
		return nil, domain.ErrInvalidArgument
	}
	p := &model.Poster{
		ID:            newID(),
		Name:          name,
		WalletAddress: walletAddress,
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *PosterUseCase) Get(ctx context.Context, id string) (*model.Poster, error) {
	return uc.repo.FindByID(ctx, id)
}
