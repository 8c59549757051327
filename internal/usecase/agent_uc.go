package usecase

import (
	"context"
	"time"

	"agentmarket/internal/domain"
	"agentmarket/internal/domain/model"
	"agentmarket/internal/domain/ports/repository"
)

// AgentUseCase manages agent registration and lookup.
type AgentUseCase struct {
	repo    repository.AgentRepository
	wallets WalletGenerator
}

func NewAgentUseCase(repo repository.AgentRepository, wallets WalletGenerator) *AgentUseCase {
	return &AgentUseCase{repo: repo, wallets: wallets}
}

// Register creates an agent with a fresh ephemeral payout wallet. The
// secret is persisted server-side but never leaves the store via the API.
func (uc *AgentUseCase) Register(ctx context.Context, name string) (*model.Agent, error) {
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	address, secret, err := uc.wallets.Generate()
	if err != nil {
		return nil, err
	}
	a := &model.Agent{
		ID:            newID(),
		Name:          name,
		WalletAddress: &address,
		WalletSecret:  &secret,
		Status:        model.AgentStatusActive,
		CreatedAt:     time.Now().UTC(),
	}
	if err := uc.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (uc *AgentUseCase) Get(ctx context.Context, id string) (*model.Agent, error) {
	return uc.repo.FindByID(ctx, id)
}
