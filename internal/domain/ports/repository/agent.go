package repository

import (
	"context"

	"agentmarket/internal/domain/model"
)

type AgentRepository interface {
	Save(ctx context.Context, a *model.Agent) error
	FindByID(ctx context.Context, id string) (*model.Agent, error)
	UpdateStatus(ctx context.Context, id string, status model.AgentStatus) error
	// DestroyWallet nulls the ephemeral payout pair. Called exactly once, at approval.
	DestroyWallet(ctx context.Context, id string) error
}
